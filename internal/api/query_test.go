package api

import (
	"testing"

	"roadmap-admin/internal/model"
)

func TestNewSubmissionQuery_SelectsKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		eventID     model.ID
		pendingOnly bool
		want        QueryKind
		wantPath    string
	}{
		{
			name:     "no event filter",
			want:     QueryGlobal,
			wantPath: "/admin/submissions?limit=20&page=3",
		},
		{
			name:        "no event filter ignores pending only",
			pendingOnly: true,
			want:        QueryGlobal,
			wantPath:    "/admin/submissions?limit=20&page=3",
		},
		{
			name:     "event filter",
			eventID:  "42",
			want:     QueryEventAll,
			wantPath: "/event/submissions?event_id=42&limit=20&page=3",
		},
		{
			name:        "event filter pending only",
			eventID:     "42",
			pendingOnly: true,
			want:        QueryEventPending,
			wantPath:    "/event/submissions/pending?event_id=42&limit=20&page=3",
		},
		{
			name:     "blank event id counts as no filter",
			eventID:  "  ",
			want:     QueryGlobal,
			wantPath: "/admin/submissions?limit=20&page=3",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := NewSubmissionQuery(tt.eventID, tt.pendingOnly, 3, 20)
			if q.Kind != tt.want {
				t.Fatalf("kind: got %v want %v", q.Kind, tt.want)
			}
			if got := q.Endpoint(); got != tt.wantPath {
				t.Fatalf("endpoint:\n got: %s\nwant: %s", got, tt.wantPath)
			}
		})
	}
}

func TestSubmissionQuery_KindsAreMutuallyExclusive(t *testing.T) {
	t.Parallel()

	seen := map[string]QueryKind{}
	for _, ev := range []model.ID{"", "7"} {
		for _, pending := range []bool{false, true} {
			q := NewSubmissionQuery(ev, pending, 1, 20)
			seen[q.Endpoint()] = q.Kind
		}
	}
	// (no event, pending) and (no event, all) collapse onto the global listing.
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct request shapes, got %d: %#v", len(seen), seen)
	}
	kinds := map[QueryKind]bool{}
	for _, k := range seen {
		kinds[k] = true
	}
	for _, k := range []QueryKind{QueryGlobal, QueryEventAll, QueryEventPending} {
		if !kinds[k] {
			t.Fatalf("kind %v not reachable", k)
		}
	}
}
