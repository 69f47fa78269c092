package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/api"
	"roadmap-admin/internal/model"
	"roadmap-admin/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type stubAPI struct {
	mu       sync.Mutex
	roadmaps []model.Roadmap
	created  []api.CreateRoadmapRequest
	updated  []api.UpdateRoadmapRequest
}

func (s *stubAPI) ListRoadmaps(context.Context) ([]model.Roadmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Roadmap(nil), s.roadmaps...), nil
}

func (s *stubAPI) CreateRoadmap(_ context.Context, req api.CreateRoadmapRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, req)
	s.roadmaps = append(s.roadmaps, model.Roadmap{ID: "9", Title: req.Title, Status: req.Status})
	return nil
}

func (s *stubAPI) UpdateRoadmap(_ context.Context, req api.UpdateRoadmapRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, req)
	return nil
}

func (s *stubAPI) DeleteRoadmap(context.Context, model.ID) error             { return nil }
func (s *stubAPI) CreateEvent(context.Context, api.CreateEventRequest) error { return nil }
func (s *stubAPI) DeleteEvent(context.Context, model.ID) error               { return nil }
func (s *stubAPI) ReviewSubmission(context.Context, api.ReviewRequest) error { return nil }

func (s *stubAPI) ListSubmissions(context.Context, api.SubmissionQuery) (api.SubmissionPage, error) {
	return api.SubmissionPage{Pagination: model.DefaultPagination()}, nil
}

func newTestModel(t *testing.T, stub *stubAPI) appModel {
	t.Helper()
	coord := admin.NewCoordinator(stub, admin.Options{})
	m := newAppModel(context.Background(), coord, nil)
	m.resize(100, 30)
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func step(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return am, cmd
}

func TestRoadmapFormCreateResetsAndLeavesForm(t *testing.T) {
	t.Parallel()

	stub := &stubAPI{}
	m := newTestModel(t, stub)

	m, _ = step(t, m, runes("n"))
	if m.focus != focusForm {
		t.Fatalf("expected form focus after n")
	}
	m, _ = step(t, m, runes("Q3 plan"))
	if got := m.roadmapForm.Draft().Title; got != "Q3 plan" {
		t.Fatalf("draft title: got %q", got)
	}

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("expected submit command")
	}
	if !m.submitting {
		t.Fatalf("expected submitting flag")
	}
	m, _ = step(t, m, cmd())

	if m.focus != focusNav || m.submitting {
		t.Fatalf("expected nav focus after success, got focus=%v submitting=%v", m.focus, m.submitting)
	}
	if got := m.roadmapForm.Draft().Title; got != "" {
		t.Fatalf("form not reset: %q", got)
	}
	if len(stub.created) != 1 || stub.created[0].Title != "Q3 plan" || stub.created[0].UserID != "admin" {
		t.Fatalf("unexpected create calls: %#v", stub.created)
	}
}

func TestRoadmapFormValidationBlocksSubmit(t *testing.T) {
	t.Parallel()

	stub := &stubAPI{}
	m := newTestModel(t, stub)
	m, _ = step(t, m, runes("n"))
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatalf("expected no command for an invalid draft")
	}
	if !strings.Contains(m.formErr, "Title is required") {
		t.Fatalf("formErr: %q", m.formErr)
	}
	if len(stub.created) != 0 {
		t.Fatalf("no request expected")
	}
}

func TestRoadmapEditRoundTripsLongFields(t *testing.T) {
	t.Parallel()

	start := "2024-01-01"
	title := strings.Repeat("t", 250)
	lines := make([]string, 120)
	for i := range lines {
		lines[i] = fmt.Sprintf("- step %03d: read the chapter", i)
	}
	desc := strings.Join(lines, "\n")
	stub := &stubAPI{roadmaps: []model.Roadmap{{ID: "1", Title: title, Description: desc, Status: model.RoadmapInactive, StartDate: &start}}}
	m := newTestModel(t, stub)
	m, _ = step(t, m, m.run("load", m.coord.LoadRoadmaps)())
	m, _ = step(t, m, snapshotMsg(m.coord.Snapshot()))

	m, _ = step(t, m, runes("e"))
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("expected submit command, formErr=%q", m.formErr)
	}
	m, _ = step(t, m, cmd())

	if len(stub.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(stub.updated))
	}
	got := stub.updated[0]
	if got.RoadmapID != "1" || got.Title != title || got.Description != desc || got.Status != model.RoadmapInactive {
		t.Fatalf("unchanged edit did not round-trip:\n got title len=%d desc len=%d status=%q\nwant title len=%d desc len=%d",
			len(got.Title), len(got.Description), got.Status, len(title), len(desc))
	}
	if got.StartDate == nil || *got.StartDate != start || got.EndDate != nil {
		t.Fatalf("dates: got %v / %v", got.StartDate, got.EndDate)
	}

	// Touching the title alone leaves the description as loaded.
	m, _ = step(t, m, runes("e"))
	m, _ = step(t, m, runes("!"))
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("expected submit command, formErr=%q", m.formErr)
	}
	_, _ = step(t, m, cmd())
	got = stub.updated[1]
	if got.Title != title+"!" || got.Description != desc {
		t.Fatalf("second edit: title suffix %q, desc len=%d", got.Title[len(got.Title)-2:], len(got.Description))
	}
}

func TestEscCancelsEditAndRestoresCreateMode(t *testing.T) {
	t.Parallel()

	start := "2024-01-01"
	stub := &stubAPI{roadmaps: []model.Roadmap{{ID: "1", Title: "Backend", Status: model.RoadmapActive, StartDate: &start}}}
	m := newTestModel(t, stub)
	m, _ = step(t, m, m.run("load", m.coord.LoadRoadmaps)())
	m, _ = step(t, m, snapshotMsg(m.coord.Snapshot()))

	m, _ = step(t, m, runes("e"))
	if m.roadmapForm.Editing() == nil || m.rmInputs.title.Value() != "Backend" || m.rmInputs.start.Value() != start {
		t.Fatalf("edit did not load the roadmap: %#v", m.roadmapForm.Draft())
	}
	if !strings.Contains(m.View(), "Edit Roadmap") {
		t.Fatalf("expected edit title in view")
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.roadmapForm.Editing() != nil || m.focus != focusNav || m.rmInputs.title.Value() != "" {
		t.Fatalf("esc should cancel the edit")
	}
}

func TestConfirmModalRepliesOnce(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubAPI{})
	reply := make(chan bool, 1)
	m, _ = step(t, m, confirmRequestMsg{prompt: admin.PromptDeleteRoadmap, reply: reply})
	if m.modal != modalConfirm {
		t.Fatalf("expected confirm modal")
	}
	if !strings.Contains(m.View(), "Are you sure") {
		t.Fatalf("prompt not rendered")
	}

	other := make(chan bool, 1)
	m, _ = step(t, m, confirmRequestMsg{prompt: "again?", reply: other})
	if got := <-other; got {
		t.Fatalf("second request should be declined")
	}

	m, _ = step(t, m, runes("y"))
	if got := <-reply; !got {
		t.Fatalf("expected yes")
	}
	if m.modal != modalNone || m.confirm != nil {
		t.Fatalf("modal should close")
	}
}

func TestToastClearsOnlyForLatestNotice(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubAPI{})
	m, _ = step(t, m, noticeMsg(admin.Notice{Level: admin.LevelError, Message: "Failed to fetch roadmaps"}))
	m, _ = step(t, m, noticeMsg(admin.Notice{Level: admin.LevelSuccess, Message: "Roadmap created successfully"}))
	if !strings.Contains(m.View(), "Roadmap created successfully") {
		t.Fatalf("toast not shown")
	}
	m, _ = step(t, m, clearToastMsg{seq: 1})
	if m.toast == nil {
		t.Fatalf("stale clear removed the newer toast")
	}
	m, _ = step(t, m, clearToastMsg{seq: 2})
	if m.toast != nil {
		t.Fatalf("expected toast cleared")
	}
}

func TestRenderPager(t *testing.T) {
	t.Parallel()

	if got := renderPager(model.Pagination{CurrentPage: 1, TotalPages: 1}); got != "" {
		t.Fatalf("single page should hide the pager, got %q", got)
	}
	got := renderPager(model.Pagination{CurrentPage: 2, TotalPages: 7, TotalCount: 140})
	for _, want := range []string{"Prev", "Next", "5", "page 2 of 7"} {
		if !strings.Contains(got, want) {
			t.Fatalf("pager missing %q: %q", want, got)
		}
	}
	if strings.Contains(got, " 6 ") {
		t.Fatalf("pager should list only the first five pages: %q", got)
	}
}

func TestUIStateRoundTrip(t *testing.T) {
	t.Parallel()

	st := admin.State{ActiveTab: admin.TabSubmissions, SelectedEventID: "42", PendingOnly: true, CurrentPage: 3}
	if got := stateFromUI(uiFromState(st)); got != st {
		t.Fatalf("round trip: got %#v want %#v", got, st)
	}

	got := stateFromUI(store.UIState{ActiveTab: "bogus", Page: 0})
	if got != admin.InitialState() {
		t.Fatalf("bad stored state should fall back to defaults, got %#v", got)
	}
}

func TestSubmissionsHeaderNamesTheFetchedFilter(t *testing.T) {
	t.Parallel()

	loadedA := admin.SubmissionsView{
		Query:      api.NewSubmissionQuery("A", false, 1, 20),
		Pagination: model.Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: 4},
		Loaded:     true,
	}
	tests := []struct {
		name    string
		st      admin.State
		view    admin.SubmissionsView
		loading bool
		want    []string
		absent  string
	}{
		{
			name:   "in step",
			st:     admin.State{ActiveTab: admin.TabSubmissions, SelectedEventID: "A", CurrentPage: 1},
			view:   loadedA,
			want:   []string{"Showing: event A", "Total: 4"},
			absent: "Selected:",
		},
		{
			name:    "filter fetch in flight",
			st:      admin.State{ActiveTab: admin.TabSubmissions, SelectedEventID: "B", PendingOnly: true, CurrentPage: 1},
			view:    loadedA,
			loading: true,
			want:    []string{"Showing: event A", "Selected: event B, pending only, page 1 (loading…)"},
		},
		{
			name: "filter fetch failed",
			st:   admin.State{ActiveTab: admin.TabSubmissions, SelectedEventID: "B", CurrentPage: 1},
			view: loadedA,
			want: []string{"Showing: event A", "Selected: event B, page 1 (not loaded"},
		},
		{
			name: "nothing fetched yet",
			st:   admin.State{ActiveTab: admin.TabSubmissions, CurrentPage: 1},
			view: admin.SubmissionsView{Pagination: model.DefaultPagination()},
			want: []string{"Showing: all events", "Selected: all events, page 1"},
		},
	}
	for _, tt := range tests {
		got := submissionsHeader(tt.st, tt.view, 20, tt.loading)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Fatalf("%s: header %q lacks %q", tt.name, got, w)
			}
		}
		if tt.absent != "" && strings.Contains(got, tt.absent) {
			t.Fatalf("%s: header %q should not contain %q", tt.name, got, tt.absent)
		}
	}
}
