package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"tableflip.dev/barely/pkg/store"
	"tableflip.dev/barely/pkg/task"
)

// MaxUndo is the most entries a Ledger retains.
const MaxUndo = 10

// Op is the kind of a reversible operation.
type Op int

const (
	OpCreate Op = iota
	OpDelete
	OpComplete
	OpRetitle
	OpScopeChange
	OpColumnChange
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpComplete:
		return "complete"
	case OpRetitle:
		return "retitle"
	case OpScopeChange:
		return "scope-change"
	case OpColumnChange:
		return "column-change"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Entry is one reversible operation. Before holds the affected tasks as they
// were prior to the operation, empty for creates.
type Entry struct {
	ID     ulid.ULID
	Op     Op
	IDs    []int64
	Before []*task.Task
	At     time.Time
}

// Ledger is a bounded, most-recent-last history of reversible operations.
type Ledger struct {
	limit   int
	entries []Entry
}

// NewLedger returns a ledger keeping limit entries, clamped to [1, MaxUndo].
func NewLedger(limit int) *Ledger {
	if limit <= 0 || limit > MaxUndo {
		limit = MaxUndo
	}
	return &Ledger{limit: limit}
}

// Record appends an entry, evicting the oldest once over the limit. Each
// batch operation is a single entry.
func (l *Ledger) Record(op Op, ids []int64, before []*task.Task, at time.Time) Entry {
	e := Entry{
		ID:     ulid.Make(),
		Op:     op,
		IDs:    append([]int64(nil), ids...),
		Before: snapshot(before),
		At:     at,
	}
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append([]Entry(nil), l.entries[over:]...)
	}
	return e
}

// Pop removes and returns the most recent entry.
func (l *Ledger) Pop() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	last := len(l.entries) - 1
	e := l.entries[last]
	l.entries = l.entries[:last]
	return e, true
}

// Peek returns the most recent entry without removing it.
func (l *Ledger) Peek() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Reversal describes an undone operation.
type Reversal struct {
	Op  Op      `json:"op" yaml:"op"`
	IDs []int64 `json:"ids" yaml:"ids"`
	// Reassigned maps original ids to new ones for deleted tasks that could
	// not be restored under their original id.
	Reassigned map[int64]int64 `json:"reassigned,omitempty" yaml:"reassigned,omitempty"`
	At         time.Time       `json:"at" yaml:"at"`
}

func (r *Reversal) String() string {
	noun := "task"
	if len(r.IDs) != 1 {
		noun = "tasks"
	}
	msg := fmt.Sprintf("undid %s of %d %s %v", r.Op, len(r.IDs), noun, r.IDs)
	for from, to := range r.Reassigned {
		msg += fmt.Sprintf(", %d restored as %d", from, to)
	}
	return msg
}

// Undo reverses the most recent entry. The entry is discarded whether or not
// the reversal succeeds, and undoing never records a new entry.
func (s *Service) Undo(ctx context.Context) (*Reversal, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	e, ok := s.history().Pop()
	if !ok {
		return nil, ErrNoHistory
	}
	r := &Reversal{Op: e.Op, IDs: e.IDs, At: e.At}
	var err error
	switch e.Op {
	case OpCreate:
		err = s.undoCreate(ctx, e)
	case OpDelete:
		r.Reassigned, err = s.undoDelete(ctx, e)
	case OpComplete, OpScopeChange:
		err = s.restore(ctx, e, func(t, prior *task.Task) {
			t.Status = prior.Status
			t.Scope = prior.Scope
			t.Completed = prior.Clone().Completed
		})
	case OpRetitle:
		err = s.restore(ctx, e, func(t, prior *task.Task) {
			t.Title = prior.Title
		})
	case OpColumnChange:
		err = s.restore(ctx, e, func(t, prior *task.Task) {
			t.ColumnID = prior.ColumnID
		})
	default:
		err = fmt.Errorf("app: cannot undo %s", e.Op)
	}
	if err != nil {
		s.log().Debug("undo failed", "op", e.Op.String(), "entry", e.ID.String(), "err", err)
		return nil, fmt.Errorf("app: undo %s: %w", e.Op, err)
	}
	s.log().Debug("undone", "op", e.Op.String(), "tasks", e.IDs)
	return r, nil
}

func (s *Service) undoCreate(ctx context.Context, e Entry) error {
	if _, err := s.fetchAll(ctx, e.IDs); err != nil {
		return err
	}
	for _, id := range e.IDs {
		if err := s.Persistence.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) undoDelete(ctx context.Context, e Entry) (map[int64]int64, error) {
	var reassigned map[int64]int64
	for _, prior := range e.Before {
		t := prior.Clone()
		err := s.Persistence.Restore(ctx, t)
		if errors.Is(err, store.ErrConflict) {
			t.ID = 0
			err = s.Persistence.Insert(ctx, t)
			if err == nil {
				if reassigned == nil {
					reassigned = make(map[int64]int64)
				}
				reassigned[prior.ID] = t.ID
			}
		}
		if err != nil {
			return reassigned, err
		}
	}
	return reassigned, nil
}

// restore loads every task in the entry first, then copies fields back from
// the before snapshot.
func (s *Service) restore(ctx context.Context, e Entry, apply func(t, prior *task.Task)) error {
	tasks, err := s.fetchAll(ctx, e.IDs)
	if err != nil {
		return err
	}
	priors := make(map[int64]*task.Task, len(e.Before))
	for _, p := range e.Before {
		priors[p.ID] = p
	}
	for _, t := range tasks {
		prior, ok := priors[t.ID]
		if !ok {
			return fmt.Errorf("no snapshot for task %d", t.ID)
		}
		apply(t, prior)
		if err := s.Persistence.Update(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
