package admin

import (
	"context"
	"sync"

	"roadmap-admin/internal/api"
	"roadmap-admin/internal/form"
	"roadmap-admin/internal/model"

	"go.uber.org/zap"
)

// API is the part of *api.Client the coordinator drives.
type API interface {
	ListRoadmaps(ctx context.Context) ([]model.Roadmap, error)
	CreateRoadmap(ctx context.Context, req api.CreateRoadmapRequest) error
	UpdateRoadmap(ctx context.Context, req api.UpdateRoadmapRequest) error
	DeleteRoadmap(ctx context.Context, id model.ID) error
	CreateEvent(ctx context.Context, req api.CreateEventRequest) error
	DeleteEvent(ctx context.Context, id model.ID) error
	ListSubmissions(ctx context.Context, q api.SubmissionQuery) (api.SubmissionPage, error)
	ReviewSubmission(ctx context.Context, req api.ReviewRequest) error
}

// Snapshot is everything a renderer needs to draw the console.
type Snapshot struct {
	State       State
	Roadmaps    []model.Roadmap
	Submissions SubmissionsView
	// Loading is true while any request is outstanding.
	Loading bool
	// Seq increases with every broadcast; a renderer keeps the highest it has seen.
	Seq uint64
}

type Options struct {
	// PageSize is the submissions page size; 20 when zero.
	PageSize int
	// UserID is sent as the acting user on create and review.
	UserID    string
	Notifier  Notifier
	Confirmer Confirmer
	Logger    *zap.Logger
	// Initial is the starting view selection; InitialState() when zero.
	Initial *State
}

const DefaultPageSize = 20

// Coordinator owns the view state and both stores. Methods block until their requests
// finish and may be called from several goroutines; the lock is never held across a
// request.
type Coordinator struct {
	api       API
	notifier  Notifier
	confirmer Confirmer
	log       *zap.Logger
	pageSize  int
	userID    string

	roadmaps    *RoadmapStore
	submissions *SubmissionStore

	// deliverMu keeps broadcasts in capture order.
	deliverMu sync.Mutex

	mu       sync.Mutex
	seq      uint64
	state    State
	stateGen uint64
	inflight int
	subs     map[int]func(Snapshot)
	nextSub  int
}

func NewCoordinator(client API, opts Options) *Coordinator {
	c := &Coordinator{
		api:         client,
		notifier:    opts.Notifier,
		confirmer:   opts.Confirmer,
		log:         opts.Logger,
		pageSize:    opts.PageSize,
		userID:      opts.UserID,
		roadmaps:    NewRoadmapStore(),
		submissions: NewSubmissionStore(),
		state:       InitialState(),
		subs:        map[int]func(Snapshot){},
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(Notice) {})
	}
	if c.confirmer == nil {
		c.confirmer = NeverConfirm
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.userID == "" {
		c.userID = "admin"
	}
	if opts.Initial != nil {
		c.state = opts.Initial.normalized()
	}
	return c
}

func (c *Coordinator) PageSize() int  { return c.pageSize }
func (c *Coordinator) UserID() string { return c.userID }

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		State:       c.state,
		Roadmaps:    c.roadmaps.Current(),
		Submissions: c.submissions.Current(),
		Loading:     c.inflight > 0,
		Seq:         c.seq,
	}
}

// Subscribe registers fn to receive a snapshot after every change. fn runs on the
// goroutine that made the change and must not call back into the coordinator. Snapshots
// arrive in the order they were taken.
func (c *Coordinator) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) broadcast() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	c.seq++
	snap := c.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Coordinator) SetActiveTab(ctx context.Context, tab Tab) error {
	return c.dispatch(ctx, SetActiveTab{Tab: tab})
}

func (c *Coordinator) SetSelectedEventID(ctx context.Context, id model.ID) error {
	return c.dispatch(ctx, SelectEvent{EventID: id})
}

func (c *Coordinator) SetPendingOnly(ctx context.Context, pendingOnly bool) error {
	return c.dispatch(ctx, SetPendingOnly{PendingOnly: pendingOnly})
}

func (c *Coordinator) SetCurrentPage(ctx context.Context, page int) error {
	return c.dispatch(ctx, SetPage{Page: page})
}

func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.dispatch(ctx, Refresh{})
}

// LoadRoadmaps fetches the roadmap list without touching the view state. The dashboard
// uses it at startup so the event form's roadmap picker is populated on any tab.
func (c *Coordinator) LoadRoadmaps(ctx context.Context) error {
	return c.fetchRoadmaps(ctx)
}

func (c *Coordinator) dispatch(ctx context.Context, a Action) error {
	c.mu.Lock()
	prev := c.state
	tr := Reduce(prev, a, c.pageBoundLocked(prev))
	if tr.Rejected != nil {
		c.mu.Unlock()
		c.log.Debug("transition rejected", zap.Any("action", a), zap.Error(tr.Rejected))
		return tr.Rejected
	}
	c.state = tr.State
	c.stateGen++
	gen := c.stateGen
	c.mu.Unlock()

	c.log.Debug("transition",
		zap.String("tab", tr.State.ActiveTab.String()),
		zap.String("event_id", tr.State.SelectedEventID.String()),
		zap.Bool("pending_only", tr.State.PendingOnly),
		zap.Int("page", tr.State.CurrentPage),
		zap.Stringer("fetch", tr.Fetch),
	)
	c.broadcast()

	err := c.fetch(ctx, tr.Fetch, tr.State)
	if err != nil && ChangesFilter(a) {
		c.mu.Lock()
		if c.stateGen == gen {
			c.state = c.state.withFilterOf(prev)
		}
		c.mu.Unlock()
		c.broadcast()
	}
	return err
}

// pageBoundLocked is the page count s may page within. Until the stored page belongs to
// s's event and pending filter no page change is allowed.
func (c *Coordinator) pageBoundLocked(s State) int {
	view := c.submissions.Current()
	if view.Loaded && !s.Selects(view.Query) {
		return 0
	}
	return view.Pagination.TotalPages
}

func (c *Coordinator) begin() {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
	c.broadcast()
}

func (c *Coordinator) end() {
	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
}

func (c *Coordinator) fetch(ctx context.Context, f Fetch, s State) error {
	switch f {
	case FetchRoadmaps:
		return c.fetchRoadmaps(ctx)
	case FetchSubmissions:
		return c.fetchSubmissions(ctx, s.Query(c.pageSize))
	default:
		return nil
	}
}

func (c *Coordinator) fetchRoadmaps(ctx context.Context) error {
	gen := c.roadmaps.Begin()
	c.begin()
	items, err := c.api.ListRoadmaps(ctx)
	c.end()
	if err != nil {
		c.fail(err, "fetch roadmaps")
		return err
	}
	if !c.roadmaps.Commit(gen, items) {
		c.log.Debug("dropped stale roadmaps response", zap.Uint64("generation", gen))
	}
	c.broadcast()
	return nil
}

func (c *Coordinator) fetchSubmissions(ctx context.Context, q api.SubmissionQuery) error {
	gen := c.submissions.Begin()
	c.begin()
	page, err := c.api.ListSubmissions(ctx, q)
	c.end()
	if err != nil {
		c.fail(err, "fetch submissions")
		return err
	}
	if !c.submissions.Commit(gen, page, q) {
		c.log.Debug("dropped stale submissions response",
			zap.Uint64("generation", gen),
			zap.String("endpoint", q.Endpoint()),
		)
	}
	c.broadcast()
	return nil
}

func (c *Coordinator) fail(err error, op string) {
	c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
	c.notifier.Notify(Notice{Level: LevelError, Message: api.Notice(err, op)})
	c.broadcast()
}

func (c *Coordinator) succeed(msg string) {
	c.notifier.Notify(Notice{Level: LevelSuccess, Message: msg})
}

// mutate runs one write request with the loading indicator raised.
func (c *Coordinator) mutate(ctx context.Context, op string, call func(context.Context) error) error {
	c.begin()
	err := call(ctx)
	c.end()
	if err != nil {
		c.fail(err, op)
		return err
	}
	return nil
}

// refresh re-fetches after a successful write. Failures are notified by the fetch itself.
func (c *Coordinator) refresh(ctx context.Context, f Fetch) {
	_ = c.fetch(ctx, f, c.State())
}

// DeleteRoadmap asks for confirmation, deletes and reloads the roadmap list.
func (c *Coordinator) DeleteRoadmap(ctx context.Context, id model.ID) error {
	if !c.confirmer.Confirm(ctx, PromptDeleteRoadmap) {
		return ErrNotConfirmed
	}
	err := c.mutate(ctx, "delete roadmap", func(ctx context.Context) error {
		return c.api.DeleteRoadmap(ctx, id)
	})
	if err != nil {
		return err
	}
	c.succeed(msgRoadmapDeleted)
	c.refresh(ctx, FetchRoadmaps)
	return nil
}

// DeleteEvent asks for confirmation and deletes. The submissions view is reloaded when it
// is showing, otherwise the roadmap list (its event counts changed).
func (c *Coordinator) DeleteEvent(ctx context.Context, id model.ID) error {
	if !c.confirmer.Confirm(ctx, PromptDeleteEvent) {
		return ErrNotConfirmed
	}
	err := c.mutate(ctx, "delete event", func(ctx context.Context) error {
		return c.api.DeleteEvent(ctx, id)
	})
	if err != nil {
		return err
	}
	c.succeed(msgEventDeleted)
	if c.State().ActiveTab == TabSubmissions {
		c.refresh(ctx, FetchSubmissions)
	} else {
		c.refresh(ctx, FetchRoadmaps)
	}
	return nil
}

// ReviewSubmission records decision for a pending submission and reloads the current
// submissions page.
func (c *Coordinator) ReviewSubmission(ctx context.Context, sub model.Submission, decision model.SubmissionStatus) error {
	if sub.Status != model.SubmissionPending || !decision.IsDecision() {
		return ErrNotReviewable
	}
	req := api.ReviewRequest{
		EventID:     sub.EventID,
		StudentID:   sub.StudentID,
		RoadmapID:   sub.RoadmapID,
		Status:      decision,
		CurrentUser: c.userID,
	}
	err := c.mutate(ctx, "review submission", func(ctx context.Context) error {
		return c.api.ReviewSubmission(ctx, req)
	})
	if err != nil {
		return err
	}
	c.succeed("Submission " + string(decision) + " successfully")
	c.refresh(ctx, FetchSubmissions)
	return nil
}

// SubmitRoadmapForm creates or updates through f and reloads the roadmap list.
func (c *Coordinator) SubmitRoadmapForm(ctx context.Context, f *form.RoadmapForm) error {
	op, msg := f.Op(), msgRoadmapCreated
	if f.Editing() != nil {
		msg = msgRoadmapUpdated
	}
	err := c.mutate(ctx, op, func(ctx context.Context) error {
		return f.Submit(ctx, c.api)
	})
	if err != nil {
		return err
	}
	c.succeed(msg)
	c.refresh(ctx, FetchRoadmaps)
	return nil
}

func (c *Coordinator) SubmitEventForm(ctx context.Context, f *form.EventForm) error {
	err := c.mutate(ctx, "create event", func(ctx context.Context) error {
		return f.Submit(ctx, c.api)
	})
	if err != nil {
		return err
	}
	c.succeed(msgEventCreated)
	c.refresh(ctx, FetchRoadmaps)
	return nil
}
