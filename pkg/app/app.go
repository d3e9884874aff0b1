// Package app is the session core: the ambient context, the candidate
// resolver, the scope transition engine and the undo ledger. It requests
// mutations from a store.Persistence and never renders anything.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"tableflip.dev/barely/pkg/store"
	"tableflip.dev/barely/pkg/task"
)

// Service provides the session operations over a Persistence. One Service is
// one session: its context and undo history live only as long as it does.
// It is not safe for concurrent use; each call runs to completion before the
// next begins.
type Service struct {
	Persistence store.Persistence
	Logger      *slog.Logger
	// Now is the clock used for completion timestamps.
	Now func() time.Time
	// PickerLimit caps candidate lists, at most MaxCandidates.
	PickerLimit int
	// UndoLimit caps the ledger, at most MaxUndo.
	UndoLimit int

	context Context
	ledger  *Ledger
}

var errNoPersistence = errors.New("app: no persistence configured")

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func (s *Service) now() task.Timestamp {
	if s.Now != nil {
		return task.Stamp(s.Now())
	}
	return task.Stamp(time.Now())
}

func (s *Service) history() *Ledger {
	if s.ledger == nil {
		s.ledger = NewLedger(s.UndoLimit)
	}
	return s.ledger
}

func (s *Service) check() error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	return nil
}

// History exposes the undo ledger, mostly for display of what undo would do.
func (s *Service) History() *Ledger {
	return s.history()
}

// SetContextProject narrows later commands to project p.
func (s *Service) SetContextProject(p task.Project) {
	s.context.SetProject(p)
	s.log().Debug("context project set", "project", p.ID, "name", p.Name)
}

// SetContextScope narrows later commands to scope sc, ScopeAll clears it.
func (s *Service) SetContextScope(sc task.Scope) error {
	if sc != ScopeAll && !sc.Active() {
		return invalidArgument("scope %q", sc)
	}
	s.context.SetScope(sc)
	s.log().Debug("context scope set", "scope", string(sc))
	return nil
}

func (s *Service) ClearContextProject() {
	s.context.ClearProject()
}

func (s *Service) ClearContextScope() {
	s.context.ClearScope()
}

// ClearContext resets both filters.
func (s *Service) ClearContext() {
	s.context.Clear()
}

// CurrentContext returns the active (project, scope) pair.
func (s *Service) CurrentContext() Context {
	return s.context.Current()
}

// Prompt is the REPL prompt for the current context.
func (s *Service) Prompt() string {
	return s.context.String()
}

// Draft describes a task to create.
type Draft struct {
	Title       string
	Description string
	ProjectID   *int64
	// ColumnID zero means task.DefaultColumnID.
	ColumnID int64
	// Scope empty means backlog. The ambient context is never consulted.
	Scope task.Scope
}

// Create stores a new task. New tasks enter backlog unless the caller names
// another active scope explicitly.
func (s *Service) Create(ctx context.Context, d Draft) (*task.Task, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, invalidArgument("task title cannot be empty")
	}
	scope := d.Scope
	if scope == "" {
		scope = task.Backlog
	}
	if !scope.Active() {
		return nil, invalidArgument("scope %q", scope)
	}
	column := d.ColumnID
	if column == 0 {
		column = task.DefaultColumnID
	}
	if _, err := s.Persistence.Column(ctx, column); err != nil {
		return nil, fmt.Errorf("app: column %d: %w", column, err)
	}
	if d.ProjectID != nil {
		if _, err := s.Persistence.Project(ctx, *d.ProjectID); err != nil {
			return nil, fmt.Errorf("app: project %d: %w", *d.ProjectID, err)
		}
	}
	t := &task.Task{
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		ProjectID:   d.ProjectID,
		ColumnID:    column,
		Status:      task.StatusTodo,
		Scope:       scope,
	}
	if err := s.Persistence.Insert(ctx, t); err != nil {
		return nil, err
	}
	s.record(OpCreate, []int64{t.ID}, nil)
	return t, nil
}

// Delete removes tasks permanently. The batch fails before any write if an
// id does not exist.
func (s *Service) Delete(ctx context.Context, ids []int64) ([]*task.Task, error) {
	tasks, err := s.fetchAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	before := snapshot(tasks)
	for i, t := range tasks {
		if err := s.Persistence.Delete(ctx, t.ID); err != nil {
			s.rollbackDeletes(ctx, before[:i])
			return nil, err
		}
	}
	s.record(OpDelete, idsOf(tasks), before)
	return tasks, nil
}

// Retitle changes a task's title.
func (s *Service) Retitle(ctx context.Context, id int64, title string) (*task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidArgument("task title cannot be empty")
	}
	tasks, err := s.fetchAll(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	t := tasks[0]
	before := snapshot(tasks)
	t.Title = title
	if err := s.Persistence.Update(ctx, t); err != nil {
		return nil, err
	}
	s.record(OpRetitle, []int64{id}, before)
	return t, nil
}

// Move places tasks into a workflow column.
func (s *Service) Move(ctx context.Context, ids []int64, columnID int64) ([]*task.Task, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if _, err := s.Persistence.Column(ctx, columnID); err != nil {
		return nil, fmt.Errorf("app: column %d: %w", columnID, err)
	}
	return s.mutate(ctx, OpColumnChange, ids, nil, func(t *task.Task) {
		t.ColumnID = columnID
	})
}

// Describe sets a task's description. It is not recorded for undo.
func (s *Service) Describe(ctx context.Context, id int64, text string) (*task.Task, error) {
	tasks, err := s.fetchAll(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	t := tasks[0]
	t.Description = strings.TrimSpace(text)
	if err := s.Persistence.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Assign attaches a task to a project, nil detaches it. It is not recorded
// for undo.
func (s *Service) Assign(ctx context.Context, id int64, projectID *int64) (*task.Task, error) {
	tasks, err := s.fetchAll(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if projectID != nil {
		if _, err := s.Persistence.Project(ctx, *projectID); err != nil {
			return nil, fmt.Errorf("app: project %d: %w", *projectID, err)
		}
	}
	t := tasks[0]
	t.ProjectID = projectID
	if err := s.Persistence.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListOptions tune Tasks.
type ListOptions struct {
	// IgnoreContext lists across all projects and scopes.
	IgnoreContext bool
	// Archived includes completed tasks.
	Archived bool
	// ProjectID overrides the context project.
	ProjectID *int64
	// Scope overrides the context scope.
	Scope task.Scope
}

// Tasks lists tasks narrowed by the ambient context unless overridden. A
// context project that no longer exists yields an empty list.
func (s *Service) Tasks(ctx context.Context, o ListOptions) ([]*task.Task, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	f := store.Filter{ExcludeArchived: !o.Archived}
	if !o.IgnoreContext {
		cur := s.CurrentContext()
		f.ProjectID = cur.ProjectID()
		f.Scope = cur.Scope
	}
	if o.ProjectID != nil {
		f.ProjectID = o.ProjectID
	}
	if o.Scope != "" {
		f.Scope = o.Scope
	}
	if f.Scope == task.Archived {
		f.ExcludeArchived = false
	}
	if f.ProjectID != nil {
		ok, err := s.projectExists(ctx, *f.ProjectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.log().Debug("context project no longer exists", "project", *f.ProjectID)
			return []*task.Task{}, nil
		}
	}
	return s.Persistence.Tasks(ctx, f)
}

// Task fetches one task by id regardless of context.
func (s *Service) Task(ctx context.Context, id int64) (*task.Task, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.Persistence.Task(ctx, id)
}

// CreateProject stores a new project.
func (s *Service) CreateProject(ctx context.Context, name string) (*task.Project, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("project name cannot be empty")
	}
	p := &task.Project{Name: name}
	if err := s.Persistence.InsertProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Projects lists projects by ascending id.
func (s *Service) Projects(ctx context.Context) ([]*task.Project, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.Persistence.Projects(ctx)
}

// DeleteProject removes a project; its tasks are kept without a project. A
// context still pointing at it simply matches nothing afterwards.
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Persistence.DeleteProject(ctx, id)
}

// FindProject looks a project up by id, exact name (case-insensitive), or
// as a last resort the best fuzzy match on name.
func (s *Service) FindProject(ctx context.Context, ref string) (*task.Project, error) {
	projects, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}
	ref = strings.TrimSpace(ref)
	if p, err := exactProject(projects, ref); !errors.Is(err, ErrNotFound) {
		return p, err
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	if matches := fuzzy.Find(ref, names); len(matches) > 0 {
		return projects[matches[0].Index], nil
	}
	return nil, fmt.Errorf("app: project %q: %w", ref, ErrNotFound)
}

// FindProjectExact is FindProject without the fuzzy fallback, for callers
// that destroy what they find.
func (s *Service) FindProjectExact(ctx context.Context, ref string) (*task.Project, error) {
	projects, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}
	return exactProject(projects, strings.TrimSpace(ref))
}

func exactProject(projects []*task.Project, ref string) (*task.Project, error) {
	if ref == "" {
		return nil, invalidArgument("project name cannot be empty")
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) || fmt.Sprint(p.ID) == ref {
			return p, nil
		}
	}
	return nil, fmt.Errorf("app: project %q: %w", ref, ErrNotFound)
}

// Columns lists workflow columns by position.
func (s *Service) Columns(ctx context.Context) ([]*task.Column, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.Persistence.Columns(ctx)
}

// FindColumn looks a column up by id or case-insensitive name.
func (s *Service) FindColumn(ctx context.Context, ref string) (*task.Column, error) {
	cols, err := s.Columns(ctx)
	if err != nil {
		return nil, err
	}
	ref = strings.TrimSpace(ref)
	for _, c := range cols {
		if strings.EqualFold(c.Name, ref) || fmt.Sprint(c.ID) == ref {
			return c, nil
		}
	}
	return nil, fmt.Errorf("app: column %q: %w", ref, ErrNotFound)
}

func (s *Service) projectExists(ctx context.Context, id int64) (bool, error) {
	if _, err := s.Persistence.Project(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// fetchAll loads every id, failing on the first missing one before anything
// is written. Duplicate ids collapse.
func (s *Service) fetchAll(ctx context.Context, ids []int64) ([]*task.Task, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, invalidArgument("no task ids given")
	}
	tasks := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		t, err := s.Persistence.Task(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("app: task %d: %w", id, ErrNotFound)
			}
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// mutate pre-validates ids, runs guard over every task, then applies change
// and persists each one. A failed write restores those already written.
func (s *Service) mutate(ctx context.Context, op Op, ids []int64, guard func(*task.Task) error, change func(*task.Task)) ([]*task.Task, error) {
	tasks, err := s.fetchAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		for _, t := range tasks {
			if err := guard(t); err != nil {
				return nil, err
			}
		}
	}
	before := snapshot(tasks)
	for i, t := range tasks {
		change(t)
		if err := s.Persistence.Update(ctx, t); err != nil {
			s.rollbackUpdates(ctx, before[:i])
			return nil, err
		}
	}
	s.record(op, idsOf(tasks), before)
	return tasks, nil
}

func (s *Service) rollbackUpdates(ctx context.Context, before []*task.Task) {
	for _, t := range before {
		if err := s.Persistence.Update(ctx, t.Clone()); err != nil {
			s.log().Error("rollback failed", "task", t.ID, "err", err)
		}
	}
}

func (s *Service) rollbackDeletes(ctx context.Context, before []*task.Task) {
	for _, t := range before {
		if err := s.Persistence.Restore(ctx, t.Clone()); err != nil {
			s.log().Error("rollback failed", "task", t.ID, "err", err)
		}
	}
}

func (s *Service) record(op Op, ids []int64, before []*task.Task) {
	e := s.history().Record(op, ids, before, s.now().Time)
	s.log().Debug("recorded", "op", op.String(), "tasks", ids, "entry", e.ID.String())
}

func snapshot(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func idsOf(tasks []*task.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
