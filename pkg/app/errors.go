package app

import (
	"errors"
	"fmt"

	"tableflip.dev/barely/pkg/store"
	"tableflip.dev/barely/pkg/task"
)

var (
	// ErrNotFound marks a task, project or column id that does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidTransition is returned when a scope move is not allowed,
	// such as pulling an archived task.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidArgument is returned for bad scope values, selection indices
	// and empty titles.
	ErrInvalidArgument = task.ErrInvalidArgument
	// ErrEmptySelection means nothing happened: the user cancelled or there
	// was nothing to pick from. It is a normal negative result.
	ErrEmptySelection = errors.New("empty selection")
	// ErrCancelled is an empty selection caused by blank input.
	ErrCancelled = fmt.Errorf("%w: cancelled", ErrEmptySelection)
	// ErrNothingToSelect is an empty selection caused by an empty candidate set.
	ErrNothingToSelect = fmt.Errorf("%w: nothing to select", ErrEmptySelection)
	// ErrNoHistory is returned by Undo when the ledger is empty.
	ErrNoHistory = errors.New("nothing to undo")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("app: %s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

func invalidTransition(format string, args ...any) error {
	return fmt.Errorf("app: %s: %w", fmt.Sprintf(format, args...), ErrInvalidTransition)
}
