package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/task"
)

// PrettyPrint renders session output for a terminal.
type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
	// Projects maps project ids to names for the project column.
	Projects map[int64]string
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

var (
	bold  = color.New(color.Bold, color.Underline)
	faint = color.New(color.Faint)
	none  = color.New(color.Faint, color.Italic)
	idc   = color.New(color.FgHiYellow)
)

func scopeColor(s task.Scope) *color.Color {
	switch s {
	case task.Today:
		return color.New(color.FgHiGreen, color.Bold)
	case task.Week:
		return color.New(color.FgCyan)
	case task.Archived:
		return color.New(color.Faint, color.CrossedOut)
	}
	return color.New(color.FgWhite)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	_, _ = bold.Fprint(pp.out(), title)
	noun := "tasks"
	if count == 1 {
		noun = "task"
	}
	_, _ = faint.Fprintf(pp.out(), " - %d %s\n", count, noun)
}

// Tasks prints a table of tasks in the order given.
func (pp *PrettyPrint) Tasks(tasks []*task.Task) {
	if len(tasks) == 0 {
		_, _ = none.Fprint(pp.out(), " none\n\n")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow("ID", "SCOPE", "PROJECT", "TITLE")
	for _, t := range tasks {
		title := t.Title
		if t.Status == task.StatusDone {
			title = "✓ " + title
		}
		tbl.AddRow(
			idc.Sprint(t.ID),
			scopeColor(t.Scope).Sprint(t.Scope),
			pp.projectName(t.ProjectID),
			title,
		)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func (pp *PrettyPrint) projectName(id *int64) string {
	if id == nil {
		return "-"
	}
	if name, ok := pp.Projects[*id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", *id)
}

// ProjectList prints projects with their ids.
func (pp *PrettyPrint) ProjectList(projects []*task.Project) {
	if len(projects) == 0 {
		_, _ = none.Fprint(pp.out(), " no projects\n\n")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "NAME")
	for _, p := range projects {
		tbl.AddRow(idc.Sprint(p.ID), p.Name)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Detail prints every field of one task.
func (pp *PrettyPrint) Detail(t *task.Task, column string) {
	w := pp.out()
	_, _ = idc.Fprintf(w, "#%d ", t.ID)
	_, _ = bold.Fprintln(w, t.Title)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 72
	tbl.AddRow("scope:", scopeColor(t.Scope).Sprint(t.Scope))
	tbl.AddRow("status:", t.Status)
	tbl.AddRow("project:", pp.projectName(t.ProjectID))
	if column != "" {
		tbl.AddRow("column:", column)
	}
	tbl.AddRow("created:", t.Created)
	tbl.AddRow("updated:", t.Updated)
	if t.Completed != nil && !t.Completed.IsZero() {
		tbl.AddRow("completed:", t.Completed)
	}
	if t.Description != "" {
		tbl.AddRow("description:", t.Description)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

// Candidates prints a numbered picker prompt.
func (pp *PrettyPrint) Candidates(p *app.Prompt) {
	w := pp.out()
	_, _ = bold.Fprintf(w, "Select %s\n", plural(p.Target.String(), 2))
	for _, c := range p.Candidates {
		_, _ = fmt.Fprintf(w, "%3d) ", c.Index)
		if c.Scope != "" {
			_, _ = scopeColor(c.Scope).Fprintf(w, "[%s] ", c.Scope)
		}
		_, _ = fmt.Fprintf(w, "%s ", c.Label)
		_, _ = faint.Fprintf(w, "(#%d)\n", c.ID)
	}
	if p.Truncated {
		_, _ = faint.Fprintf(w, "showing %d of %d, pass ids to reach the rest\n", len(p.Candidates), p.Total)
	}
}

// Context prints the active filters.
func (pp *PrettyPrint) Context(c app.Context) {
	project := "all projects"
	if c.Project != nil {
		project = c.Project.Name
	}
	scope := "all scopes"
	if c.Scope != app.ScopeAll {
		scope = string(c.Scope)
	}
	_, _ = fmt.Fprintf(pp.out(), "project: %s\nscope:   %s\n", project, scope)
}

// Changed reports a mutation such as "pulled 2 tasks to today".
func (pp *PrettyPrint) Changed(verb string, tasks []*task.Task, suffix string) {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = fmt.Sprint(t.ID)
	}
	msg := fmt.Sprintf("%s %d %s [%s]", verb, len(tasks), plural("task", len(tasks)), strings.Join(ids, ", "))
	if suffix != "" {
		msg += " " + suffix
	}
	_, _ = fmt.Fprintln(pp.out(), msg)
}

func (pp *PrettyPrint) Reversal(r *app.Reversal) {
	_, _ = faint.Fprintln(pp.out(), r.String())
}

func (pp *PrettyPrint) Notice(format string, args ...any) {
	_, _ = none.Fprintf(pp.out(), format+"\n", args...)
}

func plural(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
