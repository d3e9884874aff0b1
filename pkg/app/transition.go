package app

import (
	"context"

	"tableflip.dev/barely/pkg/task"
)

// Pull moves tasks into target. Any active scope may be pulled into from any
// other in one step. Archived tasks must be reactivated instead. All ids are
// validated before the first write, and the batch is one undo entry.
func (s *Service) Pull(ctx context.Context, ids []int64, target task.Scope) ([]*task.Task, error) {
	if !target.Active() {
		return nil, invalidArgument("scope %q, must be one of backlog, week, today", target)
	}
	guard := func(t *task.Task) error {
		if t.IsArchived() {
			return invalidTransition("task %d is archived, reopen it instead of pulling", t.ID)
		}
		return nil
	}
	tasks, err := s.mutate(ctx, OpScopeChange, ids, guard, func(t *task.Task) {
		t.Scope = target
	})
	if err != nil {
		return nil, err
	}
	s.log().Debug("pulled", "tasks", idsOf(tasks), "scope", string(target))
	return tasks, nil
}

// Complete marks tasks done and archives them with the current time as the
// completion timestamp.
func (s *Service) Complete(ctx context.Context, ids []int64) ([]*task.Task, error) {
	guard := func(t *task.Task) error {
		if t.IsArchived() {
			return invalidTransition("task %d is already completed", t.ID)
		}
		return nil
	}
	now := s.now()
	tasks, err := s.mutate(ctx, OpComplete, ids, guard, func(t *task.Task) {
		completed := now
		t.Status = task.StatusDone
		t.Scope = task.Archived
		t.Completed = &completed
	})
	if err != nil {
		return nil, err
	}
	s.log().Debug("completed", "tasks", idsOf(tasks))
	return tasks, nil
}

// Reactivate brings archived tasks back into an active scope and clears
// their completion timestamp.
func (s *Service) Reactivate(ctx context.Context, ids []int64, target task.Scope) ([]*task.Task, error) {
	if !target.Active() {
		return nil, invalidArgument("scope %q, must be one of backlog, week, today", target)
	}
	guard := func(t *task.Task) error {
		if !t.IsArchived() {
			return invalidTransition("task %d is not archived", t.ID)
		}
		return nil
	}
	tasks, err := s.mutate(ctx, OpScopeChange, ids, guard, func(t *task.Task) {
		t.Status = task.StatusTodo
		t.Scope = target
		t.Completed = nil
	})
	if err != nil {
		return nil, err
	}
	s.log().Debug("reactivated", "tasks", idsOf(tasks), "scope", string(target))
	return tasks, nil
}
