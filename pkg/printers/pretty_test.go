package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/task"
)

func init() {
	color.NoColor = true
}

func TestCandidatesTruncationNotice(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Candidates(&app.Prompt{
		Target: app.TargetTask,
		Candidates: []app.Candidate{
			{Index: 1, ID: 4, Label: "write report", Scope: task.Week},
			{Index: 2, ID: 9, Label: "call bank", Scope: task.Today},
		},
		Total:     25,
		Truncated: true,
	})
	out := buf.String()
	for _, want := range []string{"Select tasks", "  1) [week] write report (#4)", "  2) [today] call bank (#9)", "showing 2 of 25"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTasksTable(t *testing.T) {
	var buf bytes.Buffer
	work := int64(1)
	pp := &PrettyPrint{Out: &buf, Projects: map[int64]string{1: "Work"}}
	pp.Tasks([]*task.Task{
		{ID: 3, Title: "ship", Scope: task.Today, ProjectID: &work},
		{ID: 5, Title: "old", Scope: task.Archived, Status: task.StatusDone},
	})
	out := buf.String()
	for _, want := range []string{"ID", "Work", "ship", "✓ old", "archived"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	pp.Tasks(nil)
	if !strings.Contains(buf.String(), "none") {
		t.Errorf("expected empty marker, got %q", buf.String())
	}
}

func TestDetail(t *testing.T) {
	var buf bytes.Buffer
	work := int64(1)
	done := task.Stamp(time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC))
	pp := &PrettyPrint{Out: &buf, Projects: map[int64]string{1: "Work"}}
	pp.Detail(&task.Task{
		ID:          7,
		Title:       "ship it",
		Description: "tag and push",
		ProjectID:   &work,
		Status:      task.StatusDone,
		Scope:       task.Archived,
		Created:     task.Stamp(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)),
		Completed:   &done,
	}, "Done")
	out := buf.String()
	for _, want := range []string{"#7 ship it", "Work", "Done", "tag and push", "2024-05-01T09:00:00Z", "completed:", "2024-05-02T09:00:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestContextAndChanged(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Context(app.Context{Project: &task.Project{ID: 1, Name: "Work"}})
	if got := buf.String(); !strings.Contains(got, "project: Work") || !strings.Contains(got, "all scopes") {
		t.Errorf("unexpected context output %q", got)
	}

	buf.Reset()
	pp.Changed("pulled", []*task.Task{{ID: 1}, {ID: 2}}, "to today")
	if got := strings.TrimSpace(buf.String()); got != "pulled 2 tasks [1, 2] to today" {
		t.Errorf("unexpected change line %q", got)
	}
}
