// Package task holds the records the tracker persists: tasks, projects and
// workflow columns.
package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument marks input that can never be valid, whatever the
	// state of the store.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidScope is returned by ParseScope.
	ErrInvalidScope = fmt.Errorf("%w: scope", ErrInvalidArgument)
)

// Scope is a task's commitment level.
type Scope string

const (
	Backlog  Scope = "backlog"
	Week     Scope = "week"
	Today    Scope = "today"
	Archived Scope = "archived"
)

// ActiveScopes are the scopes a task can be pulled into, in commitment order.
var ActiveScopes = []Scope{Backlog, Week, Today}

// Active reports whether s is one of backlog, week or today.
func (s Scope) Active() bool {
	switch s {
	case Backlog, Week, Today:
		return true
	}
	return false
}

func (s Scope) String() string {
	return string(s)
}

// ParseScope parses an active scope name. Archived is not accepted, it is only
// reachable through completion.
func ParseScope(v string) (Scope, error) {
	s := Scope(strings.ToLower(strings.TrimSpace(v)))
	if !s.Active() {
		return "", fmt.Errorf("%w %q, must be one of backlog, week, today", ErrInvalidScope, v)
	}
	return s, nil
}

// Status is the completion state of a task.
type Status string

const (
	StatusTodo     Status = "todo"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

// Task is a single unit of work.
type Task struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	ProjectID   *int64     `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	ColumnID    int64      `json:"column_id" yaml:"column_id"`
	Status      Status     `json:"status" yaml:"status"`
	Scope       Scope      `json:"scope" yaml:"scope"`
	Created     Timestamp  `json:"created_at" yaml:"created_at"`
	Completed   *Timestamp `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Updated     Timestamp  `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy, so snapshots never alias live records.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.ProjectID != nil {
		id := *t.ProjectID
		cp.ProjectID = &id
	}
	if t.Completed != nil {
		c := *t.Completed
		cp.Completed = &c
	}
	return &cp
}

// InProject reports whether the task belongs to the given project.
func (t *Task) InProject(id int64) bool {
	return t.ProjectID != nil && *t.ProjectID == id
}

// IsArchived reports whether the task has left the active scopes.
func (t *Task) IsArchived() bool {
	return t.Scope == Archived
}

// Label is the short picker text for a task.
func (t *Task) Label() string {
	title := strings.TrimSpace(t.Title)
	if r := []rune(title); len(r) > 50 {
		title = string(r[:47]) + "..."
	}
	return title
}

func (t *Task) String() string {
	return fmt.Sprintf("%d %s [%s]", t.ID, t.Title, t.Scope)
}

// Project groups related tasks.
type Project struct {
	ID      int64     `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Created Timestamp `json:"created_at" yaml:"created_at"`
}

// Column is a workflow stage.
type Column struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Position int    `json:"position" yaml:"position"`
}

// DefaultColumns are seeded into a fresh store.
func DefaultColumns() []Column {
	return []Column{
		{ID: 1, Name: "Todo", Position: 0},
		{ID: 2, Name: "In Progress", Position: 1},
		{ID: 3, Name: "Done", Position: 2},
	}
}

// DefaultColumnID is the column new tasks land in.
const DefaultColumnID int64 = 1
