// Package admin keeps the console's view state in step with the remote API: which tab is
// showing, which submissions filter and page are selected, and the last data fetched for
// each.
package admin

import (
	"fmt"
	"strings"

	"roadmap-admin/internal/api"
	"roadmap-admin/internal/model"
)

type Tab int

const (
	TabRoadmaps Tab = iota
	TabEvents
	TabSubmissions
	TabReview
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabRoadmaps, TabEvents, TabSubmissions, TabReview}

func (t Tab) String() string {
	switch t {
	case TabRoadmaps:
		return "roadmaps"
	case TabEvents:
		return "events"
	case TabSubmissions:
		return "submissions"
	case TabReview:
		return "review"
	default:
		return fmt.Sprintf("tab(%d)", int(t))
	}
}

// Label is the tab's display name.
func (t Tab) Label() string {
	s := t.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "roadmaps", "":
		return TabRoadmaps, nil
	case "events":
		return TabEvents, nil
	case "submissions":
		return TabSubmissions, nil
	case "review":
		return TabReview, nil
	default:
		return TabRoadmaps, fmt.Errorf("unknown tab %q", s)
	}
}

// State is the view selection. It is a value; transitions produce a new State.
type State struct {
	ActiveTab       Tab
	SelectedEventID model.ID
	PendingOnly     bool
	CurrentPage     int
}

func InitialState() State {
	return State{ActiveTab: TabRoadmaps, CurrentPage: 1}
}

// Query is the submissions request this state selects.
func (s State) Query(limit int) api.SubmissionQuery {
	return api.NewSubmissionQuery(s.SelectedEventID, s.PendingOnly, s.CurrentPage, limit)
}

// Selects reports whether q uses this state's event and pending filter. The page is not
// compared.
func (s State) Selects(q api.SubmissionQuery) bool {
	want := s.Query(q.Limit)
	return want.Kind == q.Kind && want.EventID == q.EventID
}

// FilterLabel describes the submissions filter, e.g. "event 12, pending only". It is
// empty when every submission is selected.
func (s State) FilterLabel() string {
	var parts []string
	if !s.SelectedEventID.IsZero() {
		parts = append(parts, "event "+s.SelectedEventID.String())
	}
	if s.PendingOnly {
		parts = append(parts, "pending only")
	}
	return strings.Join(parts, ", ")
}

func (s State) withFilterOf(o State) State {
	s.SelectedEventID = o.SelectedEventID
	s.PendingOnly = o.PendingOnly
	s.CurrentPage = o.CurrentPage
	return s
}

func (s State) normalized() State {
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
	s.SelectedEventID = model.ID(strings.TrimSpace(string(s.SelectedEventID)))
	return s
}
