package admin

import (
	"strings"
	"sync"

	"roadmap-admin/internal/api"
	"roadmap-admin/internal/model"
)

// generations hands out request generations and remembers the newest committed one.
type generations struct {
	issued    uint64
	committed uint64
}

func (g *generations) begin() uint64 {
	g.issued++
	return g.issued
}

func (g *generations) accept(gen uint64) bool {
	if gen < g.committed {
		return false
	}
	g.committed = gen
	return true
}

// RoadmapStore holds the last fetched roadmap list.
type RoadmapStore struct {
	mu    sync.Mutex
	gens  generations
	items []model.Roadmap
}

func NewRoadmapStore() *RoadmapStore {
	return &RoadmapStore{items: []model.Roadmap{}}
}

// Begin reserves a generation for a fetch about to be issued.
func (s *RoadmapStore) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens.begin()
}

// Commit replaces the contents unless a newer fetch has already committed.
func (s *RoadmapStore) Commit(gen uint64, items []model.Roadmap) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.accept(gen) {
		return false
	}
	s.items = cloneRoadmaps(items)
	return true
}

// Replace swaps the contents wholesale.
func (s *RoadmapStore) Replace(items []model.Roadmap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneRoadmaps(items)
}

func (s *RoadmapStore) Current() []model.Roadmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRoadmaps(s.items)
}

// SubmissionsView is one page of submissions together with the query that produced it.
type SubmissionsView struct {
	Items      []model.Submission
	Pagination model.Pagination
	Query      api.SubmissionQuery
	// Loaded is false until the first fetch commits.
	Loaded bool
}

// FilterLabel describes the filter the stored page was fetched with, in the same words as
// State.FilterLabel.
func (v SubmissionsView) FilterLabel() string {
	var parts []string
	if !v.Query.EventID.IsZero() {
		parts = append(parts, "event "+v.Query.EventID.String())
	}
	if v.Query.Kind == api.QueryEventPending {
		parts = append(parts, "pending only")
	}
	return strings.Join(parts, ", ")
}

type SubmissionStore struct {
	mu   sync.Mutex
	gens generations
	view SubmissionsView
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{view: SubmissionsView{
		Items:      []model.Submission{},
		Pagination: model.DefaultPagination(),
	}}
}

func (s *SubmissionStore) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens.begin()
}

func (s *SubmissionStore) Commit(gen uint64, page api.SubmissionPage, q api.SubmissionQuery) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gens.accept(gen) {
		return false
	}
	s.replaceLocked(page, q)
	return true
}

// Replace sets items, pagination and query together.
func (s *SubmissionStore) Replace(page api.SubmissionPage, q api.SubmissionQuery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(page, q)
}

func (s *SubmissionStore) replaceLocked(page api.SubmissionPage, q api.SubmissionQuery) {
	s.view = SubmissionsView{
		Items:      cloneSubmissions(page.Submissions),
		Pagination: page.Pagination,
		Query:      q,
		Loaded:     true,
	}
}

func (s *SubmissionStore) Current() SubmissionsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Items = cloneSubmissions(v.Items)
	return v
}

func cloneRoadmaps(in []model.Roadmap) []model.Roadmap {
	out := make([]model.Roadmap, len(in))
	copy(out, in)
	return out
}

func cloneSubmissions(in []model.Submission) []model.Submission {
	out := make([]model.Submission, len(in))
	copy(out, in)
	return out
}
