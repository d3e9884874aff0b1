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

	_ "modernc.org/sqlite"

	"tableflip.dev/barely/pkg/task"
)

const sqliteFile = "barely.db"

const schema = `
CREATE TABLE IF NOT EXISTS projects (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE COLLATE NOCASE,
  created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS columns (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS tasks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  project_id INTEGER REFERENCES projects(id) ON DELETE SET NULL,
  column_id INTEGER NOT NULL REFERENCES columns(id),
  status TEXT NOT NULL DEFAULT 'todo' CHECK(status IN ('todo', 'done', 'archived')),
  scope TEXT NOT NULL DEFAULT 'backlog' CHECK(scope IN ('backlog', 'week', 'today', 'archived')),
  created_at TEXT NOT NULL,
  completed_at TEXT,
  updated_at TEXT NOT NULL
);
`

const taskColumns = `id, title, description, project_id, column_id, status, scope, created_at, completed_at, updated_at`

// OpenSQLite opens (creating if needed) barely.db under dir.
func OpenSQLite(dir string) (Persistence, error) {
	if dir == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, sqliteFile))
	if err != nil {
		return nil, err
	}
	// One writer; keeps PRAGMA foreign_keys on the only connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &sqlStore{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	for _, c := range task.DefaultColumns() {
		if _, err := db.Exec(`INSERT OR IGNORE INTO columns (id, name, position) VALUES (?, ?, ?)`,
			c.ID, c.Name, c.Position); err != nil {
			return err
		}
	}
	return nil
}

type sqlStore struct {
	db  *sql.DB
	now func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t         task.Task
		projectID sql.NullInt64
		completed sql.NullString
		created   string
		updated   string
		status    string
		scope     string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &projectID, &t.ColumnID,
		&status, &scope, &created, &completed, &updated); err != nil {
		return nil, err
	}
	t.Status = task.Status(status)
	t.Scope = task.Scope(scope)
	if projectID.Valid {
		id := projectID.Int64
		t.ProjectID = &id
	}
	var err error
	if t.Created.Time, err = task.ParseTime(created); err != nil {
		return nil, fmt.Errorf("task %d created_at: %w", t.ID, err)
	}
	if t.Updated.Time, err = task.ParseTime(updated); err != nil {
		return nil, fmt.Errorf("task %d updated_at: %w", t.ID, err)
	}
	if completed.Valid && completed.String != "" {
		when, err := task.ParseTime(completed.String)
		if err != nil {
			return nil, fmt.Errorf("task %d completed_at: %w", t.ID, err)
		}
		t.Completed = &task.Timestamp{Time: when}
	}
	return &t, nil
}

func completedValue(t *task.Task) any {
	if t.Completed == nil || t.Completed.IsZero() {
		return nil
	}
	return task.FormatTime(t.Completed.Time)
}

func projectValue(t *task.Task) any {
	if t.ProjectID == nil {
		return nil
	}
	return *t.ProjectID
}

func (s *sqlStore) Task(ctx context.Context, id int64) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("task", id)
	}
	return t, err
}

func (s *sqlStore) Tasks(ctx context.Context, f Filter) ([]*task.Task, error) {
	var (
		where []string
		args  []any
	)
	if f.ProjectID != nil {
		where = append(where, "project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if f.Scope != "" {
		where = append(where, "scope = ?")
		args = append(args, string(f.Scope))
	}
	if f.ExcludeArchived {
		where = append(where, "scope != 'archived'")
	}
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	all := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, t)
	}
	return all, rows.Err()
}

func (s *sqlStore) Insert(ctx context.Context, t *task.Task) error {
	now := task.Stamp(s.now())
	if t.Created.IsZero() {
		t.Created = now
	}
	t.Updated = now
	res, err := s.db.ExecContext(ctx, `
INSERT INTO tasks (title, description, project_id, column_id, status, scope, created_at, completed_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, projectValue(t), t.ColumnID, string(t.Status), string(t.Scope),
		task.FormatTime(t.Created.Time), completedValue(t), task.FormatTime(t.Updated.Time))
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *sqlStore) Restore(ctx context.Context, t *task.Task) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, t.ID).Scan(&n); err != nil {
		return err
	}
	if t.ID <= 0 || n > 0 {
		return fmt.Errorf("task %d: %w", t.ID, ErrConflict)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tasks (`+taskColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, projectValue(t), t.ColumnID, string(t.Status), string(t.Scope),
		task.FormatTime(t.Created.Time), completedValue(t), task.FormatTime(t.Updated.Time))
	return err
}

func (s *sqlStore) Update(ctx context.Context, t *task.Task) error {
	updated := task.Stamp(s.now())
	res, err := s.db.ExecContext(ctx, `
UPDATE tasks
SET title = ?, description = ?, project_id = ?, column_id = ?, status = ?, scope = ?,
    completed_at = ?, updated_at = ?
WHERE id = ?`,
		t.Title, t.Description, projectValue(t), t.ColumnID, string(t.Status), string(t.Scope),
		completedValue(t), task.FormatTime(updated.Time), t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return notFound("task", t.ID)
	}
	t.Updated = updated
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return notFound("task", id)
	}
	return nil
}

func (s *sqlStore) Project(ctx context.Context, id int64) (*task.Project, error) {
	var (
		p       task.Project
		created string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, err
	}
	if p.Created.Time, err = task.ParseTime(created); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sqlStore) Projects(ctx context.Context) ([]*task.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	all := make([]*task.Project, 0)
	for rows.Next() {
		var (
			p       task.Project
			created string
		)
		if err := rows.Scan(&p.ID, &p.Name, &created); err != nil {
			return nil, err
		}
		if p.Created.Time, err = task.ParseTime(created); err != nil {
			return nil, err
		}
		all = append(all, &p)
	}
	return all, rows.Err()
}

func (s *sqlStore) InsertProject(ctx context.Context, p *task.Project) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return errors.New("store: project name required")
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM projects WHERE name = ?`, name).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("project %q: %w", name, ErrConflict)
	}
	if p.Created.IsZero() {
		p.Created = task.Stamp(s.now())
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO projects (name, created_at) VALUES (?, ?)`,
		name, task.FormatTime(p.Created.Time))
	if err != nil {
		return err
	}
	p.Name = name
	p.ID, err = res.LastInsertId()
	return err
}

func (s *sqlStore) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return notFound("project", id)
	}
	return nil
}

func (s *sqlStore) Column(ctx context.Context, id int64) (*task.Column, error) {
	var c task.Column
	err := s.db.QueryRowContext(ctx, `SELECT id, name, position FROM columns WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("column", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *sqlStore) Columns(ctx context.Context) ([]*task.Column, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, position FROM columns ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	all := make([]*task.Column, 0)
	for rows.Next() {
		var c task.Column
		if err := rows.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			return nil, err
		}
		all = append(all, &c)
	}
	return all, rows.Err()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
