package main

import (
	"context"
	"fmt"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/store"
	"tableflip.dev/barely/pkg/task"
)

// Seeds the configured store with a small board to try the session on.
func main() {
	ctx := context.Background()
	p, err := store.Load(nil)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	svc := &app.Service{Persistence: p}
	work := project(ctx, svc, "Work")
	home := project(ctx, svc, "Home")

	demo := []struct {
		title   string
		scope   task.Scope
		project *task.Project
	}{
		{"standup notes", task.Today, work},
		{"review pull requests", task.Today, work},
		{"quarterly plan", task.Week, work},
		{"renew passport", task.Backlog, home},
		{"buy groceries", task.Today, home},
		{"read a book", task.Backlog, nil},
	}
	for _, d := range demo {
		draft := app.Draft{Title: d.title, Scope: d.scope}
		if d.project != nil {
			draft.ProjectID = &d.project.ID
		}
		if _, err := svc.Create(ctx, draft); err != nil {
			panic(err)
		}
	}

	tasks, err := svc.Tasks(ctx, app.ListOptions{IgnoreContext: true})
	if err != nil {
		panic(err)
	}
	for _, t := range tasks {
		fmt.Println(t.String())
	}
}

func project(ctx context.Context, svc *app.Service, name string) *task.Project {
	if p, err := svc.FindProject(ctx, name); err == nil && p.Name == name {
		return p
	}
	p, err := svc.CreateProject(ctx, name)
	if err != nil {
		panic(err)
	}
	return p
}
