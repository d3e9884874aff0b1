// Package mcp provides the Model Context Protocol server integration for barely.
package mcp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/task"
)

// Service serializes MCP calls onto one app.Service session. Tool handlers
// may run concurrently; the session may not.
type Service struct {
	mu      sync.Mutex
	session *app.Service
}

// ListTasksOptions narrow list_tasks.
type ListTasksOptions struct {
	All      bool
	Archived bool
	Project  string
	Scope    string
}

// AddTaskOptions captures the parameters used to create a task.
type AddTaskOptions struct {
	Title       string
	Description string
	Project     string
	Scope       string
}

// TaskDTO is a transport-friendly projection of a task.
type TaskDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Project     string `json:"project,omitempty"`
	ProjectID   *int64 `json:"projectId,omitempty"`
	ColumnID    int64  `json:"columnId"`
	Status      string `json:"status"`
	Scope       string `json:"scope"`
	Created     string `json:"created"`
	Completed   string `json:"completed,omitempty"`
}

// ContextDTO is the session context.
type ContextDTO struct {
	Project   string `json:"project,omitempty"`
	ProjectID *int64 `json:"projectId,omitempty"`
	Scope     string `json:"scope,omitempty"`
	Prompt    string `json:"prompt"`
}

// NewService wraps a session.
func NewService(session *app.Service) *Service {
	return &Service{session: session}
}

var errNoSession = errors.New("mcp: session is not configured")

func (s *Service) lock() (*app.Service, func(), error) {
	if s.session == nil {
		return nil, nil, errNoSession
	}
	s.mu.Lock()
	return s.session, s.mu.Unlock, nil
}

// ListTasks lists tasks in the session context unless opts override it.
func (s *Service) ListTasks(ctx context.Context, opts ListTasksOptions) ([]TaskDTO, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	o := app.ListOptions{IgnoreContext: opts.All, Archived: opts.Archived}
	if sc := strings.TrimSpace(opts.Scope); sc != "" {
		if strings.EqualFold(sc, string(task.Archived)) {
			o.Scope = task.Archived
		} else if o.Scope, err = task.ParseScope(sc); err != nil {
			return nil, err
		}
	}
	if ref := strings.TrimSpace(opts.Project); ref != "" {
		p, err := svc.FindProject(ctx, ref)
		if err != nil {
			return nil, err
		}
		o.ProjectID = &p.ID
	}
	tasks, err := svc.Tasks(ctx, o)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, svc, tasks), nil
}

// AddTask creates a task; it lands in backlog unless a scope is given.
func (s *Service) AddTask(ctx context.Context, opts AddTaskOptions) (*TaskDTO, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	d := app.Draft{Title: opts.Title, Description: opts.Description}
	if sc := strings.TrimSpace(opts.Scope); sc != "" {
		if d.Scope, err = task.ParseScope(sc); err != nil {
			return nil, err
		}
	}
	if ref := strings.TrimSpace(opts.Project); ref != "" {
		p, err := svc.FindProject(ctx, ref)
		if err != nil {
			return nil, err
		}
		d.ProjectID = &p.ID
	}
	t, err := svc.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(ctx, svc, t)
	return &dto, nil
}

// PullTasks moves tasks into scope as one undoable batch.
func (s *Service) PullTasks(ctx context.Context, ids []int64, scope string) ([]TaskDTO, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	target, err := task.ParseScope(scope)
	if err != nil {
		return nil, err
	}
	tasks, err := svc.Pull(ctx, ids, target)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, svc, tasks), nil
}

// CompleteTasks archives tasks as done.
func (s *Service) CompleteTasks(ctx context.Context, ids []int64) ([]TaskDTO, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	tasks, err := svc.Complete(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, svc, tasks), nil
}

// SetContext updates the session context. An empty project or scope leaves
// that part alone; "none" or "all" clears it.
func (s *Service) SetContext(ctx context.Context, project, scope string) (*ContextDTO, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	switch ref := strings.TrimSpace(project); {
	case ref == "":
	case strings.EqualFold(ref, "none"), strings.EqualFold(ref, "all"):
		svc.ClearContextProject()
	default:
		p, err := svc.FindProject(ctx, ref)
		if err != nil {
			return nil, err
		}
		svc.SetContextProject(*p)
	}

	switch sc := strings.TrimSpace(scope); {
	case sc == "":
	case strings.EqualFold(sc, "all"), strings.EqualFold(sc, "none"):
		svc.ClearContextScope()
	default:
		parsed, err := task.ParseScope(sc)
		if err != nil {
			return nil, err
		}
		if err := svc.SetContextScope(parsed); err != nil {
			return nil, err
		}
	}
	dto := contextDTO(svc)
	return &dto, nil
}

// GetContext returns the session context.
func (s *Service) GetContext() (*ContextDTO, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	dto := contextDTO(svc)
	return &dto, nil
}

// UndoLast reverses the most recent change in this session.
func (s *Service) UndoLast(ctx context.Context) (*app.Reversal, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return svc.Undo(ctx)
}

// TaskByID fetches one task regardless of context.
func (s *Service) TaskByID(ctx context.Context, id int64) (*TaskDTO, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, err := svc.Persistence.Task(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(ctx, svc, t)
	return &dto, nil
}

// ListProjects returns every project.
func (s *Service) ListProjects(ctx context.Context) ([]*task.Project, error) {
	svc, unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return svc.Projects(ctx)
}

func contextDTO(svc *app.Service) ContextDTO {
	cur := svc.CurrentContext()
	dto := ContextDTO{
		ProjectID: cur.ProjectID(),
		Scope:     string(cur.Scope),
		Prompt:    cur.String(),
	}
	if cur.Project != nil {
		dto.Project = cur.Project.Name
	}
	return dto
}

func (s *Service) toDTOs(ctx context.Context, svc *app.Service, tasks []*task.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.toDTO(ctx, svc, t))
	}
	return out
}

func (s *Service) toDTO(ctx context.Context, svc *app.Service, t *task.Task) TaskDTO {
	dto := TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		ColumnID:    t.ColumnID,
		Status:      string(t.Status),
		Scope:       string(t.Scope),
		Created:     t.Created.String(),
	}
	if t.Completed != nil {
		dto.Completed = t.Completed.String()
	}
	if t.ProjectID != nil {
		if p, err := svc.Persistence.Project(ctx, *t.ProjectID); err == nil {
			dto.Project = p.Name
		}
	}
	return dto
}
