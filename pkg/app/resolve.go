package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tableflip.dev/barely/pkg/store"
	"tableflip.dev/barely/pkg/task"
)

// MaxCandidates caps a candidate list.
const MaxCandidates = 20

// Target is the kind of record a command acts on.
type Target int

const (
	TargetTask Target = iota
	TargetProject
	TargetColumn
)

func (t Target) String() string {
	switch t {
	case TargetTask:
		return "task"
	case TargetProject:
		return "project"
	case TargetColumn:
		return "column"
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// Candidate is one numbered line of a picker prompt.
type Candidate struct {
	// Index is the 1-based display position.
	Index int
	ID    int64
	Label string
	// Scope is set for task candidates.
	Scope task.Scope
}

// Prompt asks the user to pick among Candidates. Truncated is set when more
// than the cap matched; Total is the full match count.
type Prompt struct {
	Target     Target
	Candidates []Candidate
	Total      int
	Truncated  bool
}

// Resolution is either a set of ids or a prompt that needs an answer.
type Resolution struct {
	IDs    []int64
	Prompt *Prompt
}

// NeedsInput reports whether the caller must present Prompt.
func (r *Resolution) NeedsInput() bool {
	return r.Prompt != nil
}

// Asker presents a prompt and returns the user's raw answer.
type Asker func(p *Prompt) (string, error)

// Resolve validates explicit ids, or builds the candidate prompt from the
// ambient context when there are none. Explicit ids are never filtered by the
// context. An empty candidate set returns ErrNothingToSelect.
func (s *Service) Resolve(ctx context.Context, target Target, explicit []int64) (*Resolution, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if len(explicit) > 0 {
		ids := dedupe(explicit)
		for _, id := range ids {
			if err := s.exists(ctx, target, id); err != nil {
				return nil, err
			}
		}
		return &Resolution{IDs: ids}, nil
	}
	all, err := s.candidates(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNothingToSelect
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	p := &Prompt{Target: target, Total: len(all)}
	if limit := s.pickerLimit(); len(all) > limit {
		all = all[:limit]
		p.Truncated = true
	}
	for i := range all {
		all[i].Index = i + 1
	}
	p.Candidates = all
	return &Resolution{Prompt: p}, nil
}

// Select resolves target and, when a prompt is needed, asks for and parses
// the selection.
func (s *Service) Select(ctx context.Context, target Target, explicit []int64, ask Asker) ([]int64, error) {
	res, err := s.Resolve(ctx, target, explicit)
	if err != nil {
		return nil, err
	}
	if !res.NeedsInput() {
		return res.IDs, nil
	}
	if ask == nil {
		return nil, ErrCancelled
	}
	raw, err := ask(res.Prompt)
	if err != nil {
		return nil, err
	}
	return ParseSelection(raw, res.Prompt.Candidates)
}

// ParseSelection turns comma separated 1-based indices into candidate ids.
// Blank input is ErrCancelled. Any bad index fails the whole selection.
// Repeated indices collapse.
func ParseSelection(raw string, candidates []Candidate) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrCancelled
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, invalidArgument("invalid selection %q", part)
		}
		if n < 1 || n > len(candidates) {
			return nil, invalidArgument("selection %d out of range (1-%d)", n, len(candidates))
		}
		ids = append(ids, candidates[n-1].ID)
	}
	return dedupe(ids), nil
}

// ParseIDs parses comma or space separated ids such as "1,2 3".
func ParseIDs(args ...string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, invalidArgument("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Service) pickerLimit() int {
	if s.PickerLimit <= 0 || s.PickerLimit > MaxCandidates {
		return MaxCandidates
	}
	return s.PickerLimit
}

func (s *Service) exists(ctx context.Context, target Target, id int64) error {
	var err error
	switch target {
	case TargetTask:
		_, err = s.Persistence.Task(ctx, id)
	case TargetProject:
		_, err = s.Persistence.Project(ctx, id)
	case TargetColumn:
		_, err = s.Persistence.Column(ctx, id)
	default:
		return invalidArgument("target %s", target)
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("app: %s %d: %w", target, id, ErrNotFound)
	}
	return err
}

// candidates lists every record of target that passes the context filter.
// Projects and columns are not narrowed by the context.
func (s *Service) candidates(ctx context.Context, target Target) ([]Candidate, error) {
	switch target {
	case TargetTask:
		tasks, err := s.Tasks(ctx, ListOptions{})
		if err != nil {
			return nil, err
		}
		out := make([]Candidate, 0, len(tasks))
		for _, t := range tasks {
			if t.IsArchived() {
				continue
			}
			out = append(out, Candidate{ID: t.ID, Label: t.Label(), Scope: t.Scope})
		}
		return out, nil
	case TargetProject:
		projects, err := s.Persistence.Projects(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Candidate, 0, len(projects))
		for _, p := range projects {
			out = append(out, Candidate{ID: p.ID, Label: p.Name})
		}
		return out, nil
	case TargetColumn:
		cols, err := s.Persistence.Columns(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Candidate, 0, len(cols))
		for _, c := range cols {
			out = append(out, Candidate{ID: c.ID, Label: c.Name})
		}
		return out, nil
	}
	return nil, invalidArgument("target %s", target)
}
