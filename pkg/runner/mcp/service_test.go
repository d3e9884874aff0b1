package mcp

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	p, err := store.OpenDiskv(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return NewService(&app.Service{Persistence: p})
}

func TestServiceAddTaskDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.AddTask(ctx, AddTaskOptions{Title: "write tests"})
	if err != nil {
		t.Fatalf("AddTask returned error: %v", err)
	}
	if dto.Scope != "backlog" || dto.Status != "todo" {
		t.Fatalf("unexpected defaults %+v", dto)
	}
	if dto.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	if _, err := svc.AddTask(ctx, AddTaskOptions{Title: "x", Scope: "archived"}); err == nil {
		t.Fatal("expected archived scope to be rejected")
	}
}

func TestServiceContextFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.session.CreateProject(ctx, "Work"); err != nil {
		t.Fatalf("create project: %v", err)
	}

	a, _ := svc.AddTask(ctx, AddTaskOptions{Title: "a", Project: "work", Scope: "today"})
	b, _ := svc.AddTask(ctx, AddTaskOptions{Title: "b", Project: "Work"})
	if _, err := svc.AddTask(ctx, AddTaskOptions{Title: "c", Scope: "today"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if a.Project != "Work" {
		t.Fatalf("expected project name in dto, got %q", a.Project)
	}

	cur, err := svc.SetContext(ctx, "Work", "today")
	if err != nil {
		t.Fatalf("SetContext: %v", err)
	}
	if cur.Prompt != "barely:[Work | today]> " {
		t.Fatalf("unexpected prompt %q", cur.Prompt)
	}

	tasks, err := svc.ListTasks(ctx, ListTasksOptions{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != a.ID {
		t.Fatalf("expected only task %d, got %+v", a.ID, tasks)
	}

	if _, err := svc.PullTasks(ctx, []int64{b.ID}, "today"); err != nil {
		t.Fatalf("PullTasks: %v", err)
	}
	tasks, _ = svc.ListTasks(ctx, ListTasksOptions{})
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after pull, got %d", len(tasks))
	}

	if _, err := svc.UndoLast(ctx); err != nil {
		t.Fatalf("UndoLast: %v", err)
	}
	got, _ := svc.TaskByID(ctx, b.ID)
	if got.Scope != "backlog" {
		t.Fatalf("expected pull undone, got %s", got.Scope)
	}

	cur, _ = svc.SetContext(ctx, "none", "all")
	if cur.Prompt != "barely> " {
		t.Fatalf("expected cleared context, got %q", cur.Prompt)
	}
}

func TestServiceCompleteTasks(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	a, _ := svc.AddTask(ctx, AddTaskOptions{Title: "a"})

	done, err := svc.CompleteTasks(ctx, []int64{a.ID})
	if err != nil {
		t.Fatalf("CompleteTasks: %v", err)
	}
	if done[0].Scope != "archived" || done[0].Completed == "" {
		t.Fatalf("unexpected completed task %+v", done[0])
	}
	if _, err := svc.PullTasks(ctx, []int64{a.ID}, "today"); !errors.Is(err, app.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.CompleteTasks(ctx, []int64{a.ID, 99}); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceRejectsUnknownScope(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	a, err := svc.AddTask(ctx, AddTaskOptions{Title: "a"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	calls := map[string]func() error{
		"pull": func() error { _, err := svc.PullTasks(ctx, []int64{a.ID}, "tomorrow"); return err },
		"add":  func() error { _, err := svc.AddTask(ctx, AddTaskOptions{Title: "b", Scope: "tomorrow"}); return err },
		"list": func() error { _, err := svc.ListTasks(ctx, ListTasksOptions{Scope: "tomorrow"}); return err },
		"context": func() error {
			_, err := svc.SetContext(ctx, "", "tomorrow")
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, app.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	got, _ := svc.TaskByID(ctx, a.ID)
	if got.Scope != "backlog" {
		t.Fatalf("expected task untouched, got %s", got.Scope)
	}
}

func TestServiceWithoutSession(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.GetContext(); !errors.Is(err, errNoSession) {
		t.Fatalf("expected errNoSession, got %v", err)
	}
}

func TestTemplateID(t *testing.T) {
	if id, err := templateID("12"); err != nil || id != 12 {
		t.Fatalf("got %d, %v", id, err)
	}
	if id, err := templateID([]string{"7"}); err != nil || id != 7 {
		t.Fatalf("got %d, %v", id, err)
	}
	if _, err := templateID(nil); err == nil {
		t.Fatal("expected error for missing id")
	}
}
