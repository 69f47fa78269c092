package cli

import (
	"errors"
	"strconv"
	"strings"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/form"
	"roadmap-admin/internal/model"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Event commands",
	}
	cmd.AddCommand(newEventsCreateCmd(app))
	cmd.AddCommand(newEventsDeleteCmd(app))
	return cmd
}

func newEventsCreateCmd(app *App) *cobra.Command {
	var (
		roadmapID   string
		title       string
		description string
		points      int
		image       string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event in a roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := app.coordinator(cmd, nil)
			ef := form.NewEventForm()
			for key, value := range map[string]string{
				form.FieldRoadmapID:   roadmapID,
				form.FieldTitle:       title,
				form.FieldDescription: description,
				form.FieldPoints:      strconv.Itoa(points),
				form.FieldImage:       strings.TrimSpace(image),
			} {
				if err := ef.SetField(key, value); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := ef.Draft().Validate(); err != nil {
				return writeErr(cmd, err)
			}
			if err := coord.SubmitEventForm(cmdContext(cmd), ef); err != nil {
				return writeErr(cmd, reported(err))
			}
			rm, ok := findRoadmap(coord.Snapshot().Roadmaps, model.ID(strings.TrimSpace(roadmapID)))
			if !ok {
				return writeData(cmd, app, map[string]any{"roadmap_id": roadmapID})
			}
			return writeData(cmd, app, rm)
		},
	}
	cmd.Flags().StringVar(&roadmapID, "roadmap", "", "Roadmap id")
	cmd.Flags().StringVar(&title, "title", "", "Event title")
	cmd.Flags().StringVar(&description, "description", "", "Event description")
	cmd.Flags().IntVar(&points, "points", 0, "Points awarded on approval")
	cmd.Flags().StringVar(&image, "image", "", "Optional image file to upload")
	_ = cmd.MarkFlagRequired("roadmap")
	return cmd
}

func newEventsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event with all its submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := app.coordinator(cmd, nil)
			id := model.ID(strings.TrimSpace(args[0]))
			if err := coord.DeleteEvent(cmdContext(cmd), id); err != nil {
				if errors.Is(err, admin.ErrNotConfirmed) {
					return writeErr(cmd, err)
				}
				return writeErr(cmd, reported(err))
			}
			return writeData(cmd, app, map[string]any{"deleted": id})
		},
	}
}
