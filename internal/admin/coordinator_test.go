package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"roadmap-admin/internal/api"
	"roadmap-admin/internal/form"
	"roadmap-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeAPI records every call and serves submissions from an in-memory list.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	roadmaps    []model.Roadmap
	submissions []model.Submission
	queries     []api.SubmissionQuery
	reviews     []api.ReviewRequest
	creates     []api.CreateRoadmapRequest
	updates     []api.UpdateRoadmapRequest
	deleted     []string

	failOps map[string]error
	// gate, when set for an endpoint, blocks ListSubmissions until it is closed.
	gate map[string]chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failOps: map[string]error{}, gate: map[string]chan struct{}{}}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failOps[call]
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListRoadmaps(context.Context) ([]model.Roadmap, error) {
	if err := f.record("ListRoadmaps"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Roadmap(nil), f.roadmaps...), nil
}

func (f *fakeAPI) CreateRoadmap(_ context.Context, req api.CreateRoadmapRequest) error {
	if err := f.record("CreateRoadmap"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	f.roadmaps = append(f.roadmaps, model.Roadmap{ID: model.ID(fmt.Sprint(len(f.roadmaps) + 1)), Title: req.Title, Status: req.Status})
	return nil
}

func (f *fakeAPI) UpdateRoadmap(_ context.Context, req api.UpdateRoadmapRequest) error {
	if err := f.record("UpdateRoadmap"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	return nil
}

func (f *fakeAPI) DeleteRoadmap(_ context.Context, id model.ID) error {
	return f.recordDelete("DeleteRoadmap", id)
}

func (f *fakeAPI) CreateEvent(context.Context, api.CreateEventRequest) error {
	return f.record("CreateEvent")
}

func (f *fakeAPI) DeleteEvent(_ context.Context, id model.ID) error {
	return f.recordDelete("DeleteEvent", id)
}

func (f *fakeAPI) recordDelete(call string, id model.ID) error {
	if err := f.record(call); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, call+" "+id.String())
	return nil
}

func (f *fakeAPI) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeAPI) ListSubmissions(ctx context.Context, q api.SubmissionQuery) (api.SubmissionPage, error) {
	if err := f.record("ListSubmissions"); err != nil {
		return api.SubmissionPage{}, err
	}
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gate[q.Endpoint()]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var match []model.Submission
	for _, s := range f.submissions {
		if q.Kind != api.QueryGlobal && s.EventID != q.EventID {
			continue
		}
		if q.Kind == api.QueryEventPending && s.Status != model.SubmissionPending {
			continue
		}
		match = append(match, s)
	}
	total := len(match)
	pages := (total + q.Limit - 1) / q.Limit
	if pages < 1 {
		pages = 1
	}
	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return api.SubmissionPage{
		Submissions: append([]model.Submission{}, match[start:end]...),
		Pagination:  model.Pagination{CurrentPage: q.Page, TotalPages: pages, TotalCount: total},
	}, nil
}

func (f *fakeAPI) ReviewSubmission(_ context.Context, req api.ReviewRequest) error {
	if err := f.record("ReviewSubmission"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, req)
	for i, s := range f.submissions {
		if s.EventID == req.EventID && s.StudentID == req.StudentID {
			f.submissions[i].Status = req.Status
		}
	}
	return nil
}

func (f *fakeAPI) lastQuery(t *testing.T) api.SubmissionQuery {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.queries)
	return f.queries[len(f.queries)-1]
}

func seedSubmissions(f *fakeAPI, event model.ID, n int, status model.SubmissionStatus) {
	for i := 0; i < n; i++ {
		f.submissions = append(f.submissions, model.Submission{
			StudentID: model.ID(fmt.Sprintf("%s-s%d", event, i)),
			EventID:   event,
			RoadmapID: "r1",
			Status:    status,
		})
	}
}

func newTestCoordinator(f *fakeAPI, confirm Confirmer) (*Coordinator, *Notices) {
	notes := &Notices{}
	c := NewCoordinator(f, Options{Notifier: notes, Confirmer: confirm, UserID: "admin"})
	return c, notes
}

func TestCoordinator_PageWithinRangeFetchesThatPage(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 45, model.SubmissionPending)
	c, _ := newTestCoordinator(f, nil)
	ctx := context.Background()

	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	assert.Equal(t, 3, c.Snapshot().Submissions.Pagination.TotalPages)

	require.NoError(t, c.SetCurrentPage(ctx, 3))
	q := f.lastQuery(t)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, "/admin/submissions?limit=20&page=3", q.Endpoint())

	snap := c.Snapshot()
	assert.Equal(t, 3, snap.State.CurrentPage)
	assert.Len(t, snap.Submissions.Items, 5)
	assert.Equal(t, q, snap.Submissions.Query)
}

func TestCoordinator_PageOutOfRangeIsRejectedLocally(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 45, model.SubmissionPending)
	c, notes := newTestCoordinator(f, nil)
	ctx := context.Background()
	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	before := f.Calls()
	state := c.State()

	for _, p := range []int{0, 4, -1} {
		err := c.SetCurrentPage(ctx, p)
		require.ErrorIs(t, err, ErrPageOutOfRange)
	}
	assert.Equal(t, before, f.Calls())
	assert.Equal(t, state, c.State())
	assert.Empty(t, notes.All())
}

func TestCoordinator_PageRangeBeforeAnyFetch(t *testing.T) {
	f := newFakeAPI()
	c, _ := newTestCoordinator(f, nil)

	require.ErrorIs(t, c.SetCurrentPage(context.Background(), 2), ErrPageOutOfRange)
	require.NoError(t, c.SetCurrentPage(context.Background(), 1))
	assert.Equal(t, []string{"ListSubmissions"}, f.Calls())
}

func TestCoordinator_EventChangeResetsPage(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 45, model.SubmissionPending)
	seedSubmissions(f, "e2", 3, model.SubmissionApproved)
	c, _ := newTestCoordinator(f, nil)
	ctx := context.Background()

	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	require.NoError(t, c.SetCurrentPage(ctx, 2))
	require.NoError(t, c.SetPendingOnly(ctx, true))
	require.NoError(t, c.SetCurrentPage(ctx, 2))

	require.NoError(t, c.SetSelectedEventID(ctx, "e2"))
	q := f.lastQuery(t)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, model.ID("e2"), q.EventID)
	assert.Equal(t, api.QueryEventPending, q.Kind, "pending only is kept across event changes")
	assert.Equal(t, 1, c.State().CurrentPage)
}

func TestCoordinator_QueryShapes(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 2, model.SubmissionPending)
	seedSubmissions(f, "e1", 1, model.SubmissionApproved)
	c, _ := newTestCoordinator(f, nil)
	ctx := context.Background()

	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	assert.Equal(t, "/admin/submissions?limit=20&page=1", f.lastQuery(t).Endpoint())

	require.NoError(t, c.SetPendingOnly(ctx, true))
	assert.Equal(t, "/admin/submissions?limit=20&page=1", f.lastQuery(t).Endpoint())

	require.NoError(t, c.SetSelectedEventID(ctx, "e1"))
	assert.Equal(t, "/event/submissions/pending?event_id=e1&limit=20&page=1", f.lastQuery(t).Endpoint())
	assert.Len(t, c.Snapshot().Submissions.Items, 2)

	require.NoError(t, c.SetPendingOnly(ctx, false))
	assert.Equal(t, "/event/submissions?event_id=e1&limit=20&page=1", f.lastQuery(t).Endpoint())
	assert.Len(t, c.Snapshot().Submissions.Items, 3)
}

func TestCoordinator_TabSwitchFetchesOnlyDataTabs(t *testing.T) {
	f := newFakeAPI()
	f.roadmaps = []model.Roadmap{{ID: "1", Title: "A"}}
	c, _ := newTestCoordinator(f, nil)
	ctx := context.Background()

	require.NoError(t, c.SetActiveTab(ctx, TabRoadmaps))
	require.NoError(t, c.SetActiveTab(ctx, TabEvents))
	require.NoError(t, c.SetActiveTab(ctx, TabReview))
	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	assert.Equal(t, []string{"ListRoadmaps", "ListSubmissions"}, f.Calls())
	assert.Len(t, c.Snapshot().Roadmaps, 1, "switching away keeps the roadmap store")
}

func TestCoordinator_RoadmapCreateResetsFormAndRefetches(t *testing.T) {
	f := newFakeAPI()
	c, notes := newTestCoordinator(f, nil)
	ctx := context.Background()

	rf := form.NewRoadmapForm(c.UserID())
	require.NoError(t, rf.SetField(form.FieldTitle, "T"))
	require.NoError(t, c.SubmitRoadmapForm(ctx, rf))

	assert.Equal(t, []string{"CreateRoadmap", "ListRoadmaps"}, f.Calls())
	assert.Equal(t, form.EmptyRoadmapDraft(), rf.Draft())
	assert.Equal(t, "admin", f.creates[0].UserID)
	require.Len(t, c.Snapshot().Roadmaps, 1)
	assert.Equal(t, "T", c.Snapshot().Roadmaps[0].Title)
	assert.Equal(t, []Notice{{Level: LevelSuccess, Message: "Roadmap created successfully"}}, notes.All())
}

func TestCoordinator_FailedSubmitKeepsDraftAndNotifies(t *testing.T) {
	f := newFakeAPI()
	f.failOps["UpdateRoadmap"] = &api.Error{Kind: api.KindApplication, Op: "update roadmap", Message: "Title taken"}
	c, notes := newTestCoordinator(f, nil)

	rf := form.NewRoadmapForm("admin")
	rf.BeginEdit(model.Roadmap{ID: "4", Title: "Old", Status: model.RoadmapActive})
	require.NoError(t, rf.SetField(form.FieldTitle, "New"))
	draft := rf.Draft()

	require.Error(t, c.SubmitRoadmapForm(context.Background(), rf))
	assert.Equal(t, draft, rf.Draft())
	assert.NotNil(t, rf.Editing())
	assert.Equal(t, []string{"UpdateRoadmap"}, f.Calls())
	assert.Equal(t, []Notice{{Level: LevelError, Message: "Title taken"}}, notes.All())
}

func TestCoordinator_ApprovedSubmissionLeavesPendingView(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 2, model.SubmissionPending)
	c, notes := newTestCoordinator(f, nil)
	ctx := context.Background()

	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	require.NoError(t, c.SetSelectedEventID(ctx, "e1"))
	require.NoError(t, c.SetPendingOnly(ctx, true))
	items := c.Snapshot().Submissions.Items
	require.Len(t, items, 2)

	target := items[0]
	require.NoError(t, c.ReviewSubmission(ctx, target, model.SubmissionApproved))
	assert.Equal(t, "admin", f.reviews[0].CurrentUser)
	assert.Equal(t, model.SubmissionApproved, f.reviews[0].Status)

	for _, s := range c.Snapshot().Submissions.Items {
		assert.NotEqual(t, target.Key(), s.Key())
	}
	assert.Equal(t, "Submission approved successfully", notes.All()[0].Message)
	assert.Equal(t, api.QueryEventPending, f.lastQuery(t).Kind)
}

func TestCoordinator_ReviewOfNonPendingIsRejected(t *testing.T) {
	f := newFakeAPI()
	c, notes := newTestCoordinator(f, nil)

	err := c.ReviewSubmission(context.Background(), model.Submission{Status: model.SubmissionApproved}, model.SubmissionRejected)
	require.ErrorIs(t, err, ErrNotReviewable)
	err = c.ReviewSubmission(context.Background(), model.Submission{Status: model.SubmissionPending}, model.SubmissionPending)
	require.ErrorIs(t, err, ErrNotReviewable)
	assert.Empty(t, f.Calls())
	assert.Empty(t, notes.All())
}

func TestCoordinator_DeclinedDeleteIssuesNoCall(t *testing.T) {
	f := newFakeAPI()
	var prompts []string
	confirm := ConfirmFunc(func(_ context.Context, prompt string) bool {
		prompts = append(prompts, prompt)
		return false
	})
	c, notes := newTestCoordinator(f, confirm)

	require.ErrorIs(t, c.DeleteRoadmap(context.Background(), "1"), ErrNotConfirmed)
	require.ErrorIs(t, c.DeleteEvent(context.Background(), "2"), ErrNotConfirmed)
	assert.Empty(t, f.Calls())
	assert.Empty(t, f.Deleted())
	assert.Empty(t, notes.All())
	assert.Equal(t, []string{PromptDeleteRoadmap, PromptDeleteEvent}, prompts)
}

func TestCoordinator_ConfirmedDeleteSendsOneCallWithID(t *testing.T) {
	f := newFakeAPI()
	var prompts []string
	confirm := ConfirmFunc(func(_ context.Context, prompt string) bool {
		prompts = append(prompts, prompt)
		return true
	})
	c, _ := newTestCoordinator(f, confirm)
	ctx := context.Background()

	require.NoError(t, c.DeleteRoadmap(ctx, "rm-7"))
	assert.Equal(t, []string{"DeleteRoadmap rm-7"}, f.Deleted())

	require.NoError(t, c.DeleteEvent(ctx, "ev-3"))
	assert.Equal(t, []string{"DeleteRoadmap rm-7", "DeleteEvent ev-3"}, f.Deleted())
	assert.Equal(t, []string{PromptDeleteRoadmap, PromptDeleteEvent}, prompts)
}

func TestCoordinator_DeleteEventRefreshesActiveView(t *testing.T) {
	f := newFakeAPI()
	c, notes := newTestCoordinator(f, AlwaysConfirm)
	ctx := context.Background()

	require.NoError(t, c.DeleteEvent(ctx, "9"))
	assert.Equal(t, []string{"DeleteEvent", "ListRoadmaps"}, f.Calls())

	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	require.NoError(t, c.DeleteEvent(ctx, "9"))
	calls := f.Calls()
	assert.Equal(t, []string{"DeleteEvent", "ListSubmissions"}, calls[len(calls)-2:])
	assert.Equal(t, "Event deleted successfully", notes.All()[0].Message)
}

func TestCoordinator_DeleteRoadmapFailureLeavesStore(t *testing.T) {
	f := newFakeAPI()
	f.roadmaps = []model.Roadmap{{ID: "1", Title: "Keep"}}
	c, notes := newTestCoordinator(f, AlwaysConfirm)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	f.failOps["DeleteRoadmap"] = &api.Error{Kind: api.KindTransport, Op: "delete roadmap", Err: errors.New("dial tcp: refused")}
	require.Error(t, c.DeleteRoadmap(ctx, "1"))
	assert.Len(t, c.Snapshot().Roadmaps, 1)
	assert.Equal(t, []Notice{{Level: LevelError, Message: "Failed to delete roadmap"}}, notes.All())
}

func TestCoordinator_FailedFilterFetchRestoresFilter(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 3, model.SubmissionPending)
	c, notes := newTestCoordinator(f, nil)
	ctx := context.Background()
	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	before := c.Snapshot()

	f.failOps["ListSubmissions"] = errors.New("connection reset")
	require.Error(t, c.SetSelectedEventID(ctx, "e1"))

	after := c.Snapshot()
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Submissions, after.Submissions)
	assert.Equal(t, "Failed to fetch submissions", notes.All()[0].Message)
	assert.False(t, after.Loading)
}

func TestCoordinator_StaleResponseIsDropped(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 2, model.SubmissionPending)
	seedSubmissions(f, "e2", 1, model.SubmissionPending)
	c, _ := newTestCoordinator(f, nil)
	ctx := context.Background()

	slow := make(chan struct{})
	f.gate["/event/submissions?event_id=e1&limit=20&page=1"] = slow

	done := make(chan error, 1)
	go func() { done <- c.SetSelectedEventID(ctx, "e1") }()

	require.Eventually(t, func() bool { return len(f.Calls()) == 1 }, timeout, tick)
	require.NoError(t, c.SetSelectedEventID(ctx, "e2"))
	close(slow)
	require.NoError(t, <-done)

	snap := c.Snapshot()
	assert.Equal(t, model.ID("e2"), snap.State.SelectedEventID)
	assert.Equal(t, model.ID("e2"), snap.Submissions.Query.EventID)
	require.Len(t, snap.Submissions.Items, 1)
	assert.Equal(t, model.ID("e2"), snap.Submissions.Items[0].EventID)
}

func TestCoordinator_SubscribersSeeLoading(t *testing.T) {
	f := newFakeAPI()
	c, _ := newTestCoordinator(f, nil)

	var mu sync.Mutex
	var loading []bool
	unsubscribe := c.Subscribe(func(s Snapshot) {
		mu.Lock()
		loading = append(loading, s.Loading)
		mu.Unlock()
	})
	require.NoError(t, c.Refresh(context.Background()))
	unsubscribe()
	require.NoError(t, c.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, loading, true)
	assert.False(t, loading[len(loading)-1])
}

func TestCoordinator_SnapshotsArriveInCaptureOrder(t *testing.T) {
	f := newFakeAPI()
	f.roadmaps = []model.Roadmap{{ID: "r1", Title: "Go"}}
	seedSubmissions(f, "e1", 1, model.SubmissionPending)
	gate := make(chan struct{})
	f.gate[api.NewSubmissionQuery("", false, 1, DefaultPageSize).Endpoint()] = gate
	c, _ := newTestCoordinator(f, nil)
	ctx := context.Background()

	// The first snapshot carrying the roadmap list stalls its delivery until resume closes.
	var (
		mu      sync.Mutex
		got     []Snapshot
		stalled atomic.Bool
	)
	paused := make(chan struct{})
	resume := make(chan struct{})
	c.Subscribe(func(s Snapshot) {
		if len(s.Roadmaps) == 1 && stalled.CompareAndSwap(false, true) {
			close(paused)
			<-resume
		}
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})

	subsDone := make(chan error, 1)
	go func() { subsDone <- c.SetActiveTab(ctx, TabSubmissions) }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.queries) == 1
	}, timeout, tick)

	roadmapsDone := make(chan error, 1)
	go func() { roadmapsDone <- c.LoadRoadmaps(ctx) }()
	select {
	case <-paused:
	case <-time.After(timeout):
		t.Fatal("roadmap snapshot never delivered")
	}

	close(gate)
	time.Sleep(20 * time.Millisecond)
	close(resume)
	require.NoError(t, <-roadmapsDone)
	require.NoError(t, <-subsDone)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i].Seq, got[i-1].Seq, "snapshot %d delivered out of order", i)
	}
	last := got[len(got)-1]
	assert.False(t, last.Loading)
	assert.True(t, last.Submissions.Loaded)
	assert.Len(t, last.Submissions.Items, 1)
	assert.Len(t, last.Roadmaps, 1)
	assert.Equal(t, c.Snapshot().Seq, last.Seq)
}

func TestCoordinator_PageChangeRejectedWhileFilterFetchPending(t *testing.T) {
	f := newFakeAPI()
	seedSubmissions(f, "e1", 45, model.SubmissionPending)
	seedSubmissions(f, "e2", 3, model.SubmissionPending)
	c, _ := newTestCoordinator(f, nil)
	ctx := context.Background()
	require.NoError(t, c.SetActiveTab(ctx, TabSubmissions))
	require.NoError(t, c.SetSelectedEventID(ctx, "e1"))
	require.Equal(t, 3, c.Snapshot().Submissions.Pagination.TotalPages)

	gate := make(chan struct{})
	f.mu.Lock()
	f.gate[api.NewSubmissionQuery("e2", false, 1, DefaultPageSize).Endpoint()] = gate
	f.mu.Unlock()
	done := make(chan error, 1)
	go func() { done <- c.SetSelectedEventID(ctx, "e2") }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.queries[len(f.queries)-1].EventID == "e2"
	}, timeout, tick)

	before := len(f.Calls())
	require.ErrorIs(t, c.SetCurrentPage(ctx, 2), ErrPageOutOfRange, "e1's page count does not apply to e2")
	assert.Len(t, f.Calls(), before)
	assert.Equal(t, 1, c.State().CurrentPage)

	close(gate)
	require.NoError(t, <-done)
	require.ErrorIs(t, c.SetCurrentPage(ctx, 2), ErrPageOutOfRange)
	require.NoError(t, c.SetCurrentPage(ctx, 1))
}
