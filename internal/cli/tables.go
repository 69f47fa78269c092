package cli

import (
	"strconv"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/export"
	"roadmap-admin/internal/model"
)

type roadmapList []model.Roadmap

func (l roadmapList) TableHeaders() []string {
	return []string{"ID", "Title", "Status", "Dates", "Events", "Created By"}
}

func (l roadmapList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, rm := range l {
		by := rm.CreatedByName
		if by == "" {
			by = rm.CreatedBy.String()
		}
		rows = append(rows, []string{rm.ID.String(), rm.Title, string(rm.Status), rm.DateRange(), strconv.Itoa(rm.EventCount), by})
	}
	return rows
}

// submissionPage is one fetched page plus its cursor.
type submissionPage struct {
	Submissions []model.Submission `json:"submissions"`
	Pagination  model.Pagination   `json:"pagination"`
}

func pageOf(v admin.SubmissionsView) submissionPage {
	items := v.Items
	if items == nil {
		items = []model.Submission{}
	}
	return submissionPage{Submissions: items, Pagination: v.Pagination}
}

func (p submissionPage) TableHeaders() []string {
	return append([]string{"Student ID", "Event ID"}, export.SubmissionHeaders...)
}

func (p submissionPage) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Submissions))
	for _, s := range p.Submissions {
		rows = append(rows, append([]string{s.StudentID.String(), s.EventID.String()}, export.SubmissionRow(s)...))
	}
	return rows
}
