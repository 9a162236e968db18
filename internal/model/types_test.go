package model

import (
	"testing"
	"time"
)

func TestCollectionStatusValid(t *testing.T) {
	tests := []struct {
		status CollectionStatus
		want   bool
	}{
		{CollectionSuccess, true},
		{CollectionPartial, true},
		{CollectionFailed, true},
		{"SUCCESS", false}, // Case-sensitive
		{"running", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("CollectionStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskStatusCanTransition(t *testing.T) {
	tests := []struct {
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{TaskPending, TaskInProgress, true},
		{TaskPending, TaskCompleted, true},
		{TaskPending, TaskSkipped, true},
		{TaskPending, TaskPending, false},
		{TaskInProgress, TaskPending, true},
		{TaskInProgress, TaskCompleted, true},
		{TaskInProgress, TaskSkipped, true},
		{TaskCompleted, TaskPending, false},
		{TaskCompleted, TaskInProgress, false},
		{TaskSkipped, TaskCompleted, false},
		{TaskPending, "archived", false},
		{"archived", TaskPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("%q.CanTransition(%q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	for _, s := range []TaskStatus{TaskCompleted, TaskSkipped} {
		if !s.Terminal() {
			t.Errorf("%q.Terminal() = false, want true", s)
		}
	}
	for _, s := range []TaskStatus{TaskPending, TaskInProgress} {
		if s.Terminal() {
			t.Errorf("%q.Terminal() = true, want false", s)
		}
	}
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	in := time.Date(2024, 11, 8, 21, 30, 0, 0, loc)

	got := Date(in)

	want := time.Date(2024, 11, 8, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date() = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("Date().Location() = %v, want UTC", got.Location())
	}
}

func TestPtr(t *testing.T) {
	p := Ptr(42.5)
	if p == nil || *p != 42.5 {
		t.Errorf("Ptr(42.5) = %v, want pointer to 42.5", p)
	}

	// Each call returns a distinct pointer.
	if Ptr(1) == Ptr(1) {
		t.Error("Ptr returned the same pointer twice")
	}
}
