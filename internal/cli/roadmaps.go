package cli

import (
	"errors"
	"strings"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/form"
	"roadmap-admin/internal/model"

	"github.com/spf13/cobra"
)

func newRoadmapsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "roadmaps",
		Aliases: []string{"roadmap"},
		Short:   "Roadmap commands",
	}
	cmd.AddCommand(newRoadmapsListCmd(app))
	cmd.AddCommand(newRoadmapsCreateCmd(app))
	cmd.AddCommand(newRoadmapsUpdateCmd(app))
	cmd.AddCommand(newRoadmapsDeleteCmd(app))
	return cmd
}

func newRoadmapsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List roadmaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := app.coordinator(cmd, nil)
			if err := coord.LoadRoadmaps(cmdContext(cmd)); err != nil {
				return writeErr(cmd, reported(err))
			}
			return writeData(cmd, app, roadmapList(coord.Snapshot().Roadmaps))
		},
	}
}

type roadmapFlags struct {
	title       string
	description string
	start       string
	end         string
	status      string
}

func (f *roadmapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Roadmap title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD, empty for none)")
	cmd.Flags().StringVar(&f.end, "end", "", "End date (YYYY-MM-DD, empty for none)")
	cmd.Flags().StringVar(&f.status, "status", string(model.RoadmapActive), "Status (active|inactive)")
}

// apply copies the flags into the form. With onlyChanged, flags left at their defaults
// keep the form's current values.
func (f *roadmapFlags) apply(cmd *cobra.Command, rf *form.RoadmapForm, onlyChanged bool) error {
	fields := []struct {
		flag, key, value string
	}{
		{"title", form.FieldTitle, f.title},
		{"description", form.FieldDescription, f.description},
		{"start", form.FieldStartDate, f.start},
		{"end", form.FieldEndDate, f.end},
		{"status", form.FieldStatus, f.status},
	}
	for _, fl := range fields {
		if onlyChanged && !cmd.Flags().Changed(fl.flag) {
			continue
		}
		if err := rf.SetField(fl.key, strings.TrimSpace(fl.value)); err != nil {
			return err
		}
	}
	return rf.Draft().Validate()
}

func newRoadmapsCreateCmd(app *App) *cobra.Command {
	var flags roadmapFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := app.coordinator(cmd, nil)
			rf := form.NewRoadmapForm(coord.UserID())
			if err := flags.apply(cmd, rf, false); err != nil {
				return writeErr(cmd, err)
			}
			if err := coord.SubmitRoadmapForm(cmdContext(cmd), rf); err != nil {
				return writeErr(cmd, reported(err))
			}
			return writeData(cmd, app, roadmapList(coord.Snapshot().Roadmaps))
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newRoadmapsUpdateCmd(app *App) *cobra.Command {
	var flags roadmapFlags
	cmd := &cobra.Command{
		Use:   "update <roadmap-id>",
		Short: "Update a roadmap (unset flags keep their current values)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			coord := app.coordinator(cmd, nil)
			if err := coord.LoadRoadmaps(ctx); err != nil {
				return writeErr(cmd, reported(err))
			}
			id := model.ID(strings.TrimSpace(args[0]))
			rm, ok := findRoadmap(coord.Snapshot().Roadmaps, id)
			if !ok {
				return writeErr(cmd, errNotFound("roadmap", id.String()))
			}

			rf := form.NewRoadmapForm(coord.UserID())
			rf.BeginEdit(rm)
			if err := flags.apply(cmd, rf, true); err != nil {
				return writeErr(cmd, err)
			}
			if err := coord.SubmitRoadmapForm(ctx, rf); err != nil {
				return writeErr(cmd, reported(err))
			}
			updated, _ := findRoadmap(coord.Snapshot().Roadmaps, id)
			return writeData(cmd, app, updated)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRoadmapsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <roadmap-id>",
		Short: "Delete a roadmap with all its events and submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := app.coordinator(cmd, nil)
			id := model.ID(strings.TrimSpace(args[0]))
			if err := coord.DeleteRoadmap(cmdContext(cmd), id); err != nil {
				if errors.Is(err, admin.ErrNotConfirmed) {
					return writeErr(cmd, err)
				}
				return writeErr(cmd, reported(err))
			}
			return writeData(cmd, app, map[string]any{"deleted": id})
		},
	}
}

func findRoadmap(items []model.Roadmap, id model.ID) (model.Roadmap, bool) {
	for _, rm := range items {
		if rm.ID == id {
			return rm, true
		}
	}
	return model.Roadmap{}, false
}
