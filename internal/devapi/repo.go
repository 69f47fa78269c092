package devapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"roadmap-admin/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var (
	errNotFound        = errors.New("not found")
	errAlreadyReviewed = errors.New("submission already reviewed")
)

// Repo is the SQLite-backed storage of the dev backend.
type Repo struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenRepo opens (and migrates) the database at path. An empty path or ":memory:" yields a
// private in-memory database.
func OpenRepo(ctx context.Context, path string) (*Repo, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	} else {
		dsn = "file:" + dsn
	}
	// modernc.org/sqlite applies _pragma params on every new connection.
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dev db: %w", err)
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	r := &Repo{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS roadmaps (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_date TEXT,
			end_date TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			points INTEGER NOT NULL DEFAULT 0,
			image_name TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS submissions (
			student_id TEXT NOT NULL REFERENCES users(id),
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pending',
			submitted_at TEXT NOT NULL,
			points_earned INTEGER,
			reviewed_by TEXT,
			PRIMARY KEY (student_id, event_id)
		);`,
		`CREATE INDEX IF NOT EXISTS submissions_event_status ON submissions(event_id, status);`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate dev db: %w", err)
		}
	}
	return nil
}

// EnsureUser inserts the user if missing. Users stand in for both admins and students.
func (r *Repo) EnsureUser(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		name = id
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users(id, name) VALUES(?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name`, id, name)
	return err
}

type roadmapRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	StartDate     sql.NullString `db:"start_date"`
	EndDate       sql.NullString `db:"end_date"`
	Status        string         `db:"status"`
	CreatedBy     string         `db:"created_by"`
	CreatedByName sql.NullString `db:"created_by_name"`
	EventCount    int            `db:"event_count"`
}

func (row roadmapRow) toModel() model.Roadmap {
	rm := model.Roadmap{
		ID:            model.ID(row.ID),
		Title:         row.Title,
		Description:   row.Description,
		Status:        model.RoadmapStatus(row.Status),
		EventCount:    row.EventCount,
		CreatedBy:     model.ID(row.CreatedBy),
		CreatedByName: row.CreatedBy,
	}
	if row.CreatedByName.Valid {
		rm.CreatedByName = row.CreatedByName.String
	}
	if row.StartDate.Valid {
		v := row.StartDate.String
		rm.StartDate = &v
	}
	if row.EndDate.Valid {
		v := row.EndDate.String
		rm.EndDate = &v
	}
	return rm
}

func (r *Repo) ListRoadmaps(ctx context.Context) ([]model.Roadmap, error) {
	var rows []roadmapRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.title, r.description, r.start_date, r.end_date, r.status, r.created_by,
			u.name AS created_by_name,
			(SELECT COUNT(*) FROM events e WHERE e.roadmap_id = r.id) AS event_count
		FROM roadmaps r
		LEFT JOIN users u ON u.id = r.created_by
		ORDER BY r.created_at, r.rowid`)
	if err != nil {
		return nil, err
	}
	out := make([]model.Roadmap, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

type RoadmapInput struct {
	Title       string
	Description string
	StartDate   *string
	EndDate     *string
	Status      model.RoadmapStatus
}

func nullableDate(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return strings.TrimSpace(*s)
}

func (r *Repo) CreateRoadmap(ctx context.Context, in RoadmapInput, createdBy string) (model.ID, error) {
	id := "rm-" + uuid.NewString()[:8]
	if err := r.EnsureUser(ctx, createdBy, ""); err != nil {
		return "", err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO roadmaps(id, title, description, start_date, end_date, status, created_by, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.Description, nullableDate(in.StartDate), nullableDate(in.EndDate), string(in.Status), createdBy, r.now().Format(time.RFC3339Nano))
	if err != nil {
		return "", err
	}
	return model.ID(id), nil
}

func (r *Repo) UpdateRoadmap(ctx context.Context, id model.ID, in RoadmapInput) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE roadmaps SET title = ?, description = ?, start_date = ?, end_date = ?, status = ?
		WHERE id = ?`,
		in.Title, in.Description, nullableDate(in.StartDate), nullableDate(in.EndDate), string(in.Status), id.String())
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *Repo) DeleteRoadmap(ctx context.Context, id model.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roadmaps WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

type EventInput struct {
	RoadmapID   model.ID
	Title       string
	Description string
	Points      int
	ImageName   string
}

func (r *Repo) CreateEvent(ctx context.Context, in EventInput) (model.ID, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM roadmaps WHERE id = ?`, in.RoadmapID.String()); err != nil {
		return "", err
	}
	if exists == 0 {
		return "", errNotFound
	}
	id := "ev-" + uuid.NewString()[:8]
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events(id, roadmap_id, title, description, points, image_name, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id, in.RoadmapID.String(), in.Title, in.Description, in.Points, in.ImageName, r.now().Format(time.RFC3339Nano))
	if err != nil {
		return "", err
	}
	return model.ID(id), nil
}

func (r *Repo) DeleteEvent(ctx context.Context, id model.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// AddSubmission records a pending submission by studentID for eventID. Students submit
// through another surface; the dev backend exposes this for seeding and tests.
func (r *Repo) AddSubmission(ctx context.Context, studentID, studentName string, eventID model.ID, at time.Time) error {
	if err := r.EnsureUser(ctx, studentID, studentName); err != nil {
		return err
	}
	var roadmapID string
	if err := r.db.GetContext(ctx, &roadmapID, `SELECT roadmap_id FROM events WHERE id = ?`, eventID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errNotFound
		}
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO submissions(student_id, event_id, roadmap_id, status, submitted_at)
		VALUES(?, ?, ?, 'pending', ?)`,
		studentID, eventID.String(), roadmapID, at.UTC().Format(time.RFC3339))
	return err
}

type submissionRow struct {
	StudentID    string        `db:"student_id"`
	EventID      string        `db:"event_id"`
	RoadmapID    string        `db:"roadmap_id"`
	Status       string        `db:"status"`
	SubmittedAt  string        `db:"submitted_at"`
	PointsEarned sql.NullInt64 `db:"points_earned"`
	StudentName  string        `db:"student_name"`
	RoadmapTitle string        `db:"roadmap_title"`
	EventTitle   string        `db:"event_title"`
	Points       int           `db:"points"`
}

func (row submissionRow) toModel() model.Submission {
	s := model.Submission{
		StudentID:    model.ID(row.StudentID),
		EventID:      model.ID(row.EventID),
		RoadmapID:    model.ID(row.RoadmapID),
		Status:       model.SubmissionStatus(row.Status),
		StudentName:  row.StudentName,
		RoadmapTitle: row.RoadmapTitle,
		EventTitle:   row.EventTitle,
		Points:       row.Points,
	}
	if t, err := time.Parse(time.RFC3339, row.SubmittedAt); err == nil {
		s.SubmittedAt = model.Timestamp{Time: t}
	}
	if row.PointsEarned.Valid {
		v := int(row.PointsEarned.Int64)
		s.PointsEarned = &v
	}
	return s
}

// SubmissionFilter selects a page of submissions. An empty EventID lists all events;
// PendingOnly only applies together with an EventID, matching the public endpoints.
type SubmissionFilter struct {
	EventID     model.ID
	PendingOnly bool
	Page        int
	Limit       int
}

func (r *Repo) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]model.Submission, model.Pagination, error) {
	var where []string
	var args []any
	if !f.EventID.IsZero() {
		where = append(where, "s.event_id = ?")
		args = append(args, f.EventID.String())
		if f.PendingOnly {
			where = append(where, "s.status = 'pending'")
		}
	}
	cond := ""
	if len(where) > 0 {
		cond = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM submissions s `+cond, args...); err != nil {
		return nil, model.Pagination{}, err
	}
	pg := paginate(f.Page, f.Limit, total)

	var rows []submissionRow
	q := `
		SELECT s.student_id, s.event_id, s.roadmap_id, s.status, s.submitted_at, s.points_earned,
			COALESCE(u.name, s.student_id) AS student_name,
			r.title AS roadmap_title,
			e.title AS event_title,
			e.points AS points
		FROM submissions s
		JOIN events e ON e.id = s.event_id
		JOIN roadmaps r ON r.id = s.roadmap_id
		LEFT JOIN users u ON u.id = s.student_id
		` + cond + `
		ORDER BY s.submitted_at DESC, s.student_id, s.event_id
		LIMIT ? OFFSET ?`
	args = append(args, limitOrDefault(f.Limit), (pg.CurrentPage-1)*limitOrDefault(f.Limit))
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, model.Pagination{}, err
	}
	out := make([]model.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, pg, nil
}

// Review moves a pending submission to decision. Approved submissions earn the event's
// points; rejected ones earn zero.
func (r *Repo) Review(ctx context.Context, studentID, eventID model.ID, decision model.SubmissionStatus, reviewer string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var cur struct {
		Status string `db:"status"`
		Points int    `db:"points"`
	}
	err = tx.GetContext(ctx, &cur, `
		SELECT s.status, e.points FROM submissions s JOIN events e ON e.id = s.event_id
		WHERE s.student_id = ? AND s.event_id = ?`, studentID.String(), eventID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errNotFound
		}
		return err
	}
	if model.SubmissionStatus(cur.Status) != model.SubmissionPending {
		return errAlreadyReviewed
	}
	earned := 0
	if decision == model.SubmissionApproved {
		earned = cur.Points
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE submissions SET status = ?, points_earned = ?, reviewed_by = ?
		WHERE student_id = ? AND event_id = ?`,
		string(decision), earned, reviewer, studentID.String(), eventID.String()); err != nil {
		return err
	}
	return tx.Commit()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func limitOrDefault(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}

func paginate(page, limit, total int) model.Pagination {
	limit = limitOrDefault(limit)
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return model.Pagination{CurrentPage: page, TotalPages: pages, TotalCount: total}
}
