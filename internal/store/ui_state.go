package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const uiStateFileName = "ui_state.sqlite"

// UIState is the dashboard selection restored on relaunch.
//
// It is best effort: callers should tolerate missing or invalid data.
type UIState struct {
	Version int `db:"version" json:"version"`

	// ActiveTab is one of: roadmaps|events|submissions|review
	ActiveTab   string `db:"active_tab" json:"activeTab,omitempty"`
	EventID     string `db:"event_id" json:"eventId,omitempty"`
	PendingOnly bool   `db:"pending_only" json:"pendingOnly,omitempty"`
	Page        int    `db:"page" json:"page,omitempty"`

	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

func DefaultUIState() UIState {
	return UIState{Version: 1, ActiveTab: "roadmaps", Page: 1}
}

// StateDB is the small SQLite database holding UIState.
type StateDB struct {
	db  *sqlx.DB
	now func() time.Time
}

// DefaultStatePath is <config dir>/ui_state.sqlite.
func DefaultStatePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, uiStateFileName), nil
}

func OpenStateDB(ctx context.Context, path string) (*StateDB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("state db: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS ui_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL,
		active_tab TEXT NOT NULL DEFAULT 'roadmaps',
		event_id TEXT NOT NULL DEFAULT '',
		pending_only INTEGER NOT NULL DEFAULT 0,
		page INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL DEFAULT ''
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return &StateDB{db: db, now: time.Now}, nil
}

func (s *StateDB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadUIState returns the saved state, or defaults when nothing usable is stored.
func (s *StateDB) LoadUIState(ctx context.Context) (UIState, error) {
	if s == nil || s.db == nil {
		return DefaultUIState(), nil
	}
	var st UIState
	err := s.db.GetContext(ctx, &st, `SELECT version, active_tab, event_id, pending_only, page, updated_at FROM ui_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultUIState(), nil
	}
	if err != nil {
		return DefaultUIState(), err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if st.Page < 1 {
		st.Page = 1
	}
	if strings.TrimSpace(st.ActiveTab) == "" {
		st.ActiveTab = "roadmaps"
	}
	return st, nil
}

func (s *StateDB) SaveUIState(ctx context.Context, st UIState) error {
	if s == nil || s.db == nil {
		return nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if st.Page < 1 {
		st.Page = 1
	}
	st.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO ui_state (id, version, active_tab, event_id, pending_only, page, updated_at)
		VALUES (1, :version, :active_tab, :event_id, :pending_only, :page, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			active_tab = excluded.active_tab,
			event_id = excluded.event_id,
			pending_only = excluded.pending_only,
			page = excluded.page,
			updated_at = excluded.updated_at`, st)
	return err
}
