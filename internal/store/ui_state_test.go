package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ui_state.sqlite")
	s, err := OpenStateDB(ctx, path)
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer s.Close()

	// Empty table => default state.
	st0, err := s.LoadUIState(ctx)
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if st0 != DefaultUIState() {
		t.Fatalf("expected defaults; got %#v", st0)
	}

	want := UIState{Version: 1, ActiveTab: "submissions", EventID: "ev-7", PendingOnly: true, Page: 3}
	if err := s.SaveUIState(ctx, want); err != nil {
		t.Fatalf("SaveUIState: %v", err)
	}
	want.ActiveTab = "review"
	if err := s.SaveUIState(ctx, want); err != nil {
		t.Fatalf("SaveUIState (overwrite): %v", err)
	}
	_ = s.Close()

	s2, err := OpenStateDB(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.LoadUIState(ctx)
	if err != nil {
		t.Fatalf("LoadUIState (after save): %v", err)
	}
	got.UpdatedAt = ""
	if got != want {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestUIState_NilDBIsDefault(t *testing.T) {
	t.Parallel()

	var s *StateDB
	st, err := s.LoadUIState(context.Background())
	if err != nil || st != DefaultUIState() {
		t.Fatalf("nil db: got %#v, %v", st, err)
	}
	if err := s.SaveUIState(context.Background(), st); err != nil {
		t.Fatalf("nil db save: %v", err)
	}
}
