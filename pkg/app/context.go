package app

import (
	"strings"

	"tableflip.dev/barely/pkg/task"
)

// ScopeAll clears the scope filter when passed to SetScope.
const ScopeAll task.Scope = ""

// Context is the session's ambient filter. A nil Project or an empty Scope
// means no constraint. It only stores values, existence is checked when the
// filter is used.
type Context struct {
	Project *task.Project
	Scope   task.Scope
}

// SetProject sets the active project filter.
func (c *Context) SetProject(p task.Project) {
	c.Project = &p
}

// SetScope sets the active scope filter, ScopeAll clears it.
func (c *Context) SetScope(s task.Scope) {
	c.Scope = s
}

func (c *Context) ClearProject() {
	c.Project = nil
}

func (c *Context) ClearScope() {
	c.Scope = ScopeAll
}

// Clear resets both filters.
func (c *Context) Clear() {
	c.ClearProject()
	c.ClearScope()
}

// Current returns a copy of the filter pair.
func (c *Context) Current() Context {
	cur := Context{Scope: c.Scope}
	if c.Project != nil {
		p := *c.Project
		cur.Project = &p
	}
	return cur
}

// IsZero reports whether no filter is active.
func (c Context) IsZero() bool {
	return c.Project == nil && c.Scope == ScopeAll
}

// ProjectID is the active project id, or nil.
func (c Context) ProjectID() *int64 {
	if c.Project == nil {
		return nil
	}
	id := c.Project.ID
	return &id
}

// Labels are the display parts of the context: project name then scope.
func (c Context) Labels() []string {
	var parts []string
	if c.Project != nil {
		parts = append(parts, c.Project.Name)
	}
	if c.Scope != ScopeAll {
		parts = append(parts, string(c.Scope))
	}
	return parts
}

// String renders the REPL prompt for this context, e.g. "barely:[Work | today]> ".
func (c Context) String() string {
	parts := c.Labels()
	if len(parts) == 0 {
		return "barely> "
	}
	return "barely:[" + strings.Join(parts, " | ") + "]> "
}
