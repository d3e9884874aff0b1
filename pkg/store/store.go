// Package store persists tasks, projects and columns.
package store

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/barely/pkg/task"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by Restore when the id is already taken.
	ErrConflict = errors.New("id already in use")
)

// Persistence defines the persistence contract for tasks and their
// projects and columns. Listings are ordered by ascending id.
type Persistence interface {
	Task(ctx context.Context, id int64) (*task.Task, error)
	Tasks(ctx context.Context, f Filter) ([]*task.Task, error)
	// Insert assigns a fresh id to t and stores it.
	Insert(ctx context.Context, t *task.Task) error
	// Restore stores t under its existing id.
	Restore(ctx context.Context, t *task.Task) error
	// Update overwrites an existing task and stamps its updated time.
	Update(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, id int64) error

	Project(ctx context.Context, id int64) (*task.Project, error)
	Projects(ctx context.Context) ([]*task.Project, error)
	InsertProject(ctx context.Context, p *task.Project) error
	// DeleteProject removes the project and detaches its tasks.
	DeleteProject(ctx context.Context, id int64) error

	Column(ctx context.Context, id int64) (*task.Column, error)
	Columns(ctx context.Context) ([]*task.Column, error)

	Close() error
}

// Filter narrows a task listing. Zero values mean no constraint.
type Filter struct {
	ProjectID       *int64
	Scope           task.Scope
	ExcludeArchived bool
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t *task.Task) bool {
	if f.ProjectID != nil && !t.InProject(*f.ProjectID) {
		return false
	}
	if f.Scope != "" && t.Scope != f.Scope {
		return false
	}
	if f.ExcludeArchived && t.IsArchived() {
		return false
	}
	return true
}

// Load opens the backend selected by cfg, loading the default config when
// cfg is nil.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	switch b := cfg.Backend(); b {
	case "", BackendDiskv:
		return OpenDiskv(cfg.BasePath())
	case BackendSQLite:
		return OpenSQLite(cfg.BasePath())
	default:
		return nil, fmt.Errorf("store: unknown backend %q", b)
	}
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
