package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"tableflip.dev/barely/pkg/task"
)

func fiveCandidates() []Candidate {
	out := make([]Candidate, 5)
	for i := range out {
		out[i] = Candidate{Index: i + 1, ID: int64(10 * (i + 1)), Label: fmt.Sprintf("c%d", i+1)}
	}
	return out
}

func TestParseSelection(t *testing.T) {
	cands := fiveCandidates()
	tests := []struct {
		raw     string
		want    []int64
		wantErr error
	}{
		{raw: "2,4", want: []int64{20, 40}},
		{raw: " 1 , 5 ", want: []int64{10, 50}},
		{raw: "3,3", want: []int64{30}},
		{raw: "6", wantErr: ErrInvalidArgument},
		{raw: "0", wantErr: ErrInvalidArgument},
		{raw: "1,x", wantErr: ErrInvalidArgument},
		{raw: "1,,2", wantErr: ErrInvalidArgument},
		{raw: "", wantErr: ErrEmptySelection},
		{raw: "   ", wantErr: ErrEmptySelection},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			got, err := ParseSelection(tt.raw, cands)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v (%v)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSelectionNamesBadIndex(t *testing.T) {
	_, err := ParseSelection("6", fiveCandidates())
	if err == nil || !strings.Contains(err.Error(), "6") || !strings.Contains(err.Error(), "1-5") {
		t.Fatalf("expected error naming index and range, got %v", err)
	}
}

func TestParseIDs(t *testing.T) {
	got, err := ParseIDs("1,2", "3", " 4 , 5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := []int64{1, 2, 3, 4, 5}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for _, bad := range []string{"a", "-1", "0", "1,b"} {
		if _, err := ParseIDs(bad); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%q: expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}

func TestSelectBlankInputTouchesNothing(t *testing.T) {
	svc, mp := newService(t)
	for i := 0; i < 3; i++ {
		mustCreate(t, svc, fmt.Sprintf("t%d", i), task.Backlog, nil)
	}
	writes := mp.writeCount()
	before := svc.History().Len()

	_, err := svc.Select(context.Background(), TargetTask, nil, func(*Prompt) (string, error) {
		return "", nil
	})
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if mp.writeCount() != writes || svc.History().Len() != before {
		t.Fatal("expected store and ledger untouched")
	}
}

func TestSelectPicksIndices(t *testing.T) {
	svc, _ := newService(t)
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, mustCreate(t, svc, fmt.Sprintf("t%d", i), task.Week, nil).ID)
	}
	var shown *Prompt
	got, err := svc.Select(context.Background(), TargetTask, nil, func(p *Prompt) (string, error) {
		shown = p
		return "2,4", nil
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if want := []int64{ids[1], ids[3]}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if shown == nil || len(shown.Candidates) != 5 || shown.Truncated {
		t.Fatalf("unexpected prompt %+v", shown)
	}
	for i, c := range shown.Candidates {
		if c.Index != i+1 {
			t.Fatalf("candidate %d has index %d", i, c.Index)
		}
	}

	_, err = svc.Select(context.Background(), TargetTask, nil, func(*Prompt) (string, error) {
		return "6", nil
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestResolveExplicitIDsSkipPrompt(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	home, _ := svc.CreateProject(ctx, "Home")
	work, _ := svc.CreateProject(ctx, "Work")
	h := mustCreate(t, svc, "h", task.Backlog, home)
	svc.SetContextProject(*work)

	res, err := svc.Resolve(ctx, TargetTask, []int64{h.ID, h.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.NeedsInput() {
		t.Fatal("explicit ids must not prompt")
	}
	if !reflect.DeepEqual(res.IDs, []int64{h.ID}) {
		t.Fatalf("got %v", res.IDs)
	}
	if _, err := svc.Resolve(ctx, TargetTask, []int64{404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveTruncatesCandidates(t *testing.T) {
	svc, _ := newService(t)
	for i := 0; i < 25; i++ {
		mustCreate(t, svc, fmt.Sprintf("t%02d", i), task.Backlog, nil)
	}
	res, err := svc.Resolve(context.Background(), TargetTask, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	p := res.Prompt
	if len(p.Candidates) != MaxCandidates || p.Total != 25 || !p.Truncated {
		t.Fatalf("unexpected prompt: %d candidates, total %d, truncated %v", len(p.Candidates), p.Total, p.Truncated)
	}
	if p.Candidates[0].ID != 1 || p.Candidates[MaxCandidates-1].ID != MaxCandidates {
		t.Fatal("expected lowest ids first")
	}
}

func TestResolveEmptyCandidateSet(t *testing.T) {
	svc, _ := newService(t)
	tk := mustCreate(t, svc, "only", task.Today, nil)
	if _, err := svc.Complete(context.Background(), []int64{tk.ID}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err := svc.Resolve(context.Background(), TargetTask, nil)
	if !errors.Is(err, ErrNothingToSelect) || !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrNothingToSelect, got %v", err)
	}
}

func TestResolveHonorsContext(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	work, _ := svc.CreateProject(ctx, "Work")
	home, _ := svc.CreateProject(ctx, "Home")

	a := mustCreate(t, svc, "standup", task.Today, work)
	mustCreate(t, svc, "groceries", task.Today, home)
	b := mustCreate(t, svc, "review", task.Today, work)
	mustCreate(t, svc, "roadmap", task.Week, work)
	c := mustCreate(t, svc, "deploy", task.Today, work)
	done := mustCreate(t, svc, "retro", task.Today, work)
	mustCreate(t, svc, "unfiled", task.Today, nil)
	if _, err := svc.Complete(ctx, []int64{done.ID}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	svc.SetContextProject(*work)
	if err := svc.SetContextScope(task.Today); err != nil {
		t.Fatalf("scope: %v", err)
	}
	if got := svc.CurrentContext().String(); got != "barely:[Work | today]> " {
		t.Fatalf("unexpected prompt %q", got)
	}

	res, err := svc.Resolve(ctx, TargetTask, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got []int64
	for _, cand := range res.Prompt.Candidates {
		got = append(got, cand.ID)
	}
	if want := []int64{a.ID, b.ID, c.ID}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	list, err := svc.Tasks(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(list))
	}
}

func TestResolveWithDeletedContextProject(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	work, _ := svc.CreateProject(ctx, "Work")
	mustCreate(t, svc, "standup", task.Today, work)
	mustCreate(t, svc, "unfiled", task.Today, nil)

	svc.SetContextProject(*work)
	if err := svc.DeleteProject(ctx, work.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	if _, err := svc.Resolve(ctx, TargetTask, nil); !errors.Is(err, ErrNothingToSelect) {
		t.Fatalf("expected ErrNothingToSelect, got %v", err)
	}
	asked := false
	_, err := svc.Select(ctx, TargetTask, nil, func(*Prompt) (string, error) {
		asked = true
		return "1", nil
	})
	if !errors.Is(err, ErrNothingToSelect) || asked {
		t.Fatalf("expected empty selection without a prompt, got %v (asked=%v)", err, asked)
	}
	if got := svc.CurrentContext().String(); got != "barely:[Work]> " {
		t.Fatalf("expected stale context to stay visible, got %q", got)
	}
}

func TestResolveProjectsIgnoresContext(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	work, _ := svc.CreateProject(ctx, "Work")
	svc.CreateProject(ctx, "Home")
	svc.SetContextProject(*work)

	res, err := svc.Resolve(ctx, TargetProject, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Prompt.Candidates) != 2 {
		t.Fatalf("expected both projects, got %d", len(res.Prompt.Candidates))
	}
}

func TestLedgerClamp(t *testing.T) {
	if l := NewLedger(50); l.limit != MaxUndo {
		t.Fatalf("expected clamp to %d, got %d", MaxUndo, l.limit)
	}
	l := NewLedger(2)
	for i := int64(1); i <= 3; i++ {
		l.Record(OpCreate, []int64{i}, nil, time.Unix(i, 0))
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
	e, _ := l.Pop()
	if e.IDs[0] != 3 {
		t.Fatalf("expected most recent entry, got %v", e.IDs)
	}
	e, _ = l.Pop()
	if e.IDs[0] != 2 {
		t.Fatalf("expected oldest kept entry 2, got %v", e.IDs)
	}
	if _, ok := l.Pop(); ok {
		t.Fatal("expected empty ledger")
	}
}
