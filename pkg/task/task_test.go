package task

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseScope(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    Scope
		wantErr bool
	}{
		"backlog":      {in: "backlog", want: Backlog},
		"mixed case":   {in: " Today ", want: Today},
		"week":         {in: "week", want: Week},
		"archived":     {in: "archived", wantErr: true},
		"empty":        {in: "", wantErr: true},
		"unknown word": {in: "someday", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseScope(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidScope) || !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected invalid scope error for %q, got %v", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTimestampRoundTripIsExact(t *testing.T) {
	now := Stamp(time.Date(2024, 3, 9, 10, 11, 12, 123456789, time.UTC))
	completed := now
	in := Task{ID: 7, Title: "write", Scope: Archived, Completed: &completed, Created: now}

	b, err := json.Marshal(&in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Task
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Completed == nil || !out.Completed.Equal(now.Time) {
		t.Fatalf("completed timestamp drifted: %v", out.Completed)
	}
	if !out.Updated.IsZero() {
		t.Fatalf("expected zero updated, got %v", out.Updated)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	pid := int64(3)
	done := Stamp(time.Now())
	orig := &Task{ID: 1, ProjectID: &pid, Completed: &done}
	cp := orig.Clone()
	*cp.ProjectID = 9
	cp.Completed.Time = time.Time{}
	if *orig.ProjectID != 3 {
		t.Fatal("project id aliased")
	}
	if orig.Completed.IsZero() {
		t.Fatal("completed timestamp aliased")
	}
}

func TestLabelTruncates(t *testing.T) {
	long := &Task{Title: "0123456789012345678901234567890123456789012345678901234"}
	if got := long.Label(); len([]rune(got)) != 50 {
		t.Fatalf("expected 50 runes, got %d (%q)", len([]rune(got)), got)
	}
}
