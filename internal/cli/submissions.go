package cli

import (
	"context"
	"fmt"
	"strings"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/export"
	"roadmap-admin/internal/model"

	"github.com/spf13/cobra"
)

func newSubmissionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "submissions",
		Aliases: []string{"subs"},
		Short:   "Submission commands",
	}
	cmd.AddCommand(newSubmissionsListCmd(app))
	cmd.AddCommand(newSubmissionsReviewCmd(app))
	cmd.AddCommand(newSubmissionsExportCmd(app))
	return cmd
}

type submissionFilter struct {
	event   string
	pending bool
	page    int
}

func (f *submissionFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.event, "event", "", "Only submissions of this event id")
	cmd.Flags().BoolVar(&f.pending, "pending", false, "Only pending submissions (needs --event)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-based)")
}

func (f submissionFilter) state() *admin.State {
	return &admin.State{
		ActiveTab:       admin.TabSubmissions,
		SelectedEventID: model.ID(strings.TrimSpace(f.event)),
		PendingOnly:     f.pending,
		CurrentPage:     f.page,
	}
}

// fetchPage loads the page f selects through a fresh coordinator.
func fetchPage(cmd *cobra.Command, app *App, f submissionFilter) (*admin.Coordinator, error) {
	coord := app.coordinator(cmd, f.state())
	if err := coord.Refresh(cmdContext(cmd)); err != nil {
		return nil, reported(err)
	}
	return coord, nil
}

func newSubmissionsListCmd(app *App) *cobra.Command {
	var f submissionFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := fetchPage(cmd, app, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, pageOf(coord.Snapshot().Submissions))
		},
	}
	f.register(cmd)
	return cmd
}

func newSubmissionsReviewCmd(app *App) *cobra.Command {
	var (
		approve bool
		reject  bool
	)
	cmd := &cobra.Command{
		Use:   "review <event-id> <student-id>",
		Short: "Approve or reject a pending submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if approve == reject {
				return writeErr(cmd, fmt.Errorf("pass exactly one of --approve or --reject"))
			}
			decision := model.SubmissionApproved
			if reject {
				decision = model.SubmissionRejected
			}
			eventID := model.ID(strings.TrimSpace(args[0]))
			studentID := model.ID(strings.TrimSpace(args[1]))

			ctx := cmdContext(cmd)
			coord, err := fetchPage(cmd, app, submissionFilter{event: eventID.String(), pending: true, page: 1})
			if err != nil {
				return writeErr(cmd, err)
			}
			sub, err := findPending(ctx, coord, studentID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := coord.ReviewSubmission(ctx, sub, decision); err != nil {
				return writeErr(cmd, reported(err))
			}
			return writeData(cmd, app, pageOf(coord.Snapshot().Submissions))
		},
	}
	cmd.Flags().BoolVar(&approve, "approve", false, "Approve the submission")
	cmd.Flags().BoolVar(&reject, "reject", false, "Reject the submission")
	return cmd
}

// findPending walks the pending pages of the coordinator's event until it finds the
// student's submission.
func findPending(ctx context.Context, coord *admin.Coordinator, studentID model.ID) (model.Submission, error) {
	for {
		view := coord.Snapshot().Submissions
		for _, s := range view.Items {
			if s.StudentID == studentID {
				return s, nil
			}
		}
		next := view.Pagination.CurrentPage + 1
		if next > view.Pagination.TotalPages {
			return model.Submission{}, errNotFound("pending submission", studentID.String())
		}
		if err := coord.SetCurrentPage(ctx, next); err != nil {
			return model.Submission{}, reported(err)
		}
	}
}

func newSubmissionsExportCmd(app *App) *cobra.Command {
	var (
		f   submissionFilter
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one page of submissions to CSV or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := fetchPage(cmd, app, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap := coord.Snapshot()
			page := export.Page{
				Items:      snap.Submissions.Items,
				Pagination: snap.Submissions.Pagination,
				Filter:     snap.Submissions.FilterLabel(),
			}
			if err := export.WriteFile(out, page); err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, map[string]any{
				"path":       out,
				"count":      len(page.Items),
				"pagination": page.Pagination,
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Output file (.csv or .pdf)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
