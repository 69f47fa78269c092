package admin

import (
	"errors"
	"strings"

	"roadmap-admin/internal/model"
)

var (
	// ErrPageOutOfRange rejects a page outside 1..total_pages of the last committed fetch.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrNotConfirmed is returned when the user declines a destructive action.
	ErrNotConfirmed = errors.New("not confirmed")
	// ErrNotReviewable is returned for a review of a non-pending submission or with a
	// decision other than approved/rejected.
	ErrNotReviewable = errors.New("submission is not reviewable")
)

// Action is one view transition request.
type Action interface {
	isAction()
}

type SetActiveTab struct{ Tab Tab }
type SelectEvent struct{ EventID model.ID }
type SetPendingOnly struct{ PendingOnly bool }
type SetPage struct{ Page int }

// Refresh re-fetches whatever the active tab shows.
type Refresh struct{}

func (SetActiveTab) isAction()   {}
func (SelectEvent) isAction()    {}
func (SetPendingOnly) isAction() {}
func (SetPage) isAction()        {}
func (Refresh) isAction()        {}

type Fetch int

const (
	FetchNone Fetch = iota
	FetchRoadmaps
	FetchSubmissions
)

func (f Fetch) String() string {
	switch f {
	case FetchRoadmaps:
		return "roadmaps"
	case FetchSubmissions:
		return "submissions"
	default:
		return "none"
	}
}

// Transition is the outcome of Reduce. When Rejected is set, State equals the input state
// and Fetch is FetchNone.
type Transition struct {
	State    State
	Fetch    Fetch
	Rejected error
}

// ChangesFilter reports whether a touches the submissions filter fields.
func ChangesFilter(a Action) bool {
	switch a.(type) {
	case SelectEvent, SetPendingOnly, SetPage:
		return true
	default:
		return false
	}
}

func fetchFor(t Tab) Fetch {
	switch t {
	case TabRoadmaps:
		return FetchRoadmaps
	case TabSubmissions:
		return FetchSubmissions
	default:
		return FetchNone
	}
}

// Reduce computes the next state for a. totalPages comes from the pagination of the last
// committed submissions fetch.
func Reduce(s State, a Action, totalPages int) Transition {
	s = s.normalized()
	if totalPages < 1 {
		totalPages = 1
	}

	switch a := a.(type) {
	case SetActiveTab:
		s.ActiveTab = a.Tab
		return Transition{State: s, Fetch: fetchFor(a.Tab)}

	case SelectEvent:
		s.SelectedEventID = model.ID(strings.TrimSpace(string(a.EventID)))
		s.CurrentPage = 1
		return Transition{State: s, Fetch: FetchSubmissions}

	case SetPendingOnly:
		s.PendingOnly = a.PendingOnly
		s.CurrentPage = 1
		return Transition{State: s, Fetch: FetchSubmissions}

	case SetPage:
		if a.Page < 1 || a.Page > totalPages {
			return Transition{State: s, Rejected: ErrPageOutOfRange}
		}
		s.CurrentPage = a.Page
		return Transition{State: s, Fetch: FetchSubmissions}

	case Refresh:
		return Transition{State: s, Fetch: fetchFor(s.ActiveTab)}
	}
	return Transition{State: s}
}
