package cli

import (
	"roadmap-admin/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeData(cmd, app, app.config())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List the keys accepted by config set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeData(cmd, app, store.KnownKeys())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one key to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.SetConfigValue(app.ConfigFile, args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{"path": path, "key": args[0], "value": args[1]})
		},
	})
	return cmd
}
