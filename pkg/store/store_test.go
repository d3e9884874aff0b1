package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/barely/pkg/task"
)

type testConfig struct {
	path    string
	backend string
}

func (t testConfig) BasePath() string {
	return t.path
}

func (t testConfig) Backend() string {
	return t.backend
}

func backends(t *testing.T) map[string]Persistence {
	t.Helper()
	out := make(map[string]Persistence)
	for _, b := range []string{BackendDiskv, BackendSQLite} {
		p, err := Load(testConfig{path: t.TempDir(), backend: b})
		if err != nil {
			t.Fatalf("load %s: %v", b, err)
		}
		t.Cleanup(func() { _ = p.Close() })
		out[b] = p
	}
	return out
}

func newTask(title string, scope task.Scope) *task.Task {
	return &task.Task{
		Title:    title,
		ColumnID: task.DefaultColumnID,
		Status:   task.StatusTodo,
		Scope:    scope,
	}
}

func TestInsertAssignsAscendingIDs(t *testing.T) {
	ctx := context.Background()
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var ids []int64
			for _, title := range []string{"a", "b", "c"} {
				tk := newTask(title, task.Backlog)
				if err := p.Insert(ctx, tk); err != nil {
					t.Fatalf("insert: %v", err)
				}
				if tk.Created.IsZero() || tk.Updated.IsZero() {
					t.Fatalf("expected timestamps to be stamped")
				}
				ids = append(ids, tk.ID)
			}
			if !(ids[0] < ids[1] && ids[1] < ids[2]) {
				t.Fatalf("expected ascending ids, got %v", ids)
			}
			all, err := p.Tasks(ctx, Filter{})
			if err != nil {
				t.Fatalf("tasks: %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("expected 3 tasks, got %d", len(all))
			}
			for i, tk := range all {
				if tk.ID != ids[i] {
					t.Fatalf("position %d: got id %d, want %d", i, tk.ID, ids[i])
				}
			}
		})
	}
}

func TestTaskNotFound(t *testing.T) {
	ctx := context.Background()
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := p.Task(ctx, 42); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := p.Update(ctx, &task.Task{ID: 42}); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on update, got %v", err)
			}
			if err := p.Delete(ctx, 42); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on delete, got %v", err)
			}
		})
	}
}

func TestFilterByProjectAndScope(t *testing.T) {
	ctx := context.Background()
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			work := &task.Project{Name: "Work"}
			if err := p.InsertProject(ctx, work); err != nil {
				t.Fatalf("insert project: %v", err)
			}
			for i, scope := range []task.Scope{task.Today, task.Week, task.Today, task.Archived} {
				tk := newTask("t", scope)
				if i < 3 {
					tk.ProjectID = &work.ID
				}
				if err := p.Insert(ctx, tk); err != nil {
					t.Fatalf("insert: %v", err)
				}
			}
			got, err := p.Tasks(ctx, Filter{ProjectID: &work.ID, Scope: task.Today})
			if err != nil {
				t.Fatalf("tasks: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 tasks, got %d", len(got))
			}
			active, err := p.Tasks(ctx, Filter{ExcludeArchived: true})
			if err != nil {
				t.Fatalf("tasks: %v", err)
			}
			if len(active) != 3 {
				t.Fatalf("expected 3 active tasks, got %d", len(active))
			}
		})
	}
}

func TestRestorePreservesID(t *testing.T) {
	ctx := context.Background()
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tk := newTask("keep me", task.Week)
			if err := p.Insert(ctx, tk); err != nil {
				t.Fatalf("insert: %v", err)
			}
			snapshot := tk.Clone()
			if err := p.Restore(ctx, snapshot); !errors.Is(err, ErrConflict) {
				t.Fatalf("expected ErrConflict for live id, got %v", err)
			}
			if err := p.Delete(ctx, tk.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := p.Restore(ctx, snapshot); err != nil {
				t.Fatalf("restore: %v", err)
			}
			got, err := p.Task(ctx, tk.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Title != "keep me" || got.Scope != task.Week {
				t.Fatalf("unexpected restored task %+v", got)
			}
			next := newTask("next", task.Backlog)
			if err := p.Insert(ctx, next); err != nil {
				t.Fatalf("insert: %v", err)
			}
			if next.ID == tk.ID {
				t.Fatalf("insert reused restored id %d", next.ID)
			}
		})
	}
}

func TestCompletedTimestampRoundTrips(t *testing.T) {
	ctx := context.Background()
	when := task.Stamp(time.Date(2024, 5, 1, 8, 30, 0, 987654321, time.UTC))
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tk := newTask("done", task.Archived)
			tk.Status = task.StatusDone
			tk.Completed = &when
			if err := p.Insert(ctx, tk); err != nil {
				t.Fatalf("insert: %v", err)
			}
			got, err := p.Task(ctx, tk.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Completed == nil || !got.Completed.Equal(when.Time) {
				t.Fatalf("completed drifted: got %v want %v", got.Completed, when)
			}
		})
	}
}

func TestDeleteProjectDetachesTasks(t *testing.T) {
	ctx := context.Background()
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			pr := &task.Project{Name: "Home"}
			if err := p.InsertProject(ctx, pr); err != nil {
				t.Fatalf("insert project: %v", err)
			}
			if err := p.InsertProject(ctx, &task.Project{Name: "home"}); !errors.Is(err, ErrConflict) {
				t.Fatalf("expected duplicate name conflict, got %v", err)
			}
			tk := newTask("sweep", task.Backlog)
			tk.ProjectID = &pr.ID
			if err := p.Insert(ctx, tk); err != nil {
				t.Fatalf("insert: %v", err)
			}
			if err := p.DeleteProject(ctx, pr.ID); err != nil {
				t.Fatalf("delete project: %v", err)
			}
			got, err := p.Task(ctx, tk.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.ProjectID != nil {
				t.Fatalf("expected project cleared, got %d", *got.ProjectID)
			}
			if _, err := p.Project(ctx, pr.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected project gone, got %v", err)
			}
		})
	}
}

func TestDefaultColumnsSeeded(t *testing.T) {
	ctx := context.Background()
	for name, p := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cols, err := p.Columns(ctx)
			if err != nil {
				t.Fatalf("columns: %v", err)
			}
			if len(cols) != 3 || cols[0].Name != "Todo" || cols[2].Name != "Done" {
				t.Fatalf("unexpected columns %+v", cols)
			}
			if _, err := p.Column(ctx, 9); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	if _, err := Load(testConfig{path: t.TempDir(), backend: "bolt"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
