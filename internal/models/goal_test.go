package models

import (
	"testing"
)

func TestGoalStatus_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value GoalStatus
		valid bool
	}{
		{"not_started", GoalStatusNotStarted, true},
		{"in_progress", GoalStatusInProgress, true},
		{"completed", GoalStatusCompleted, true},
		{"invalid", GoalStatus("paused"), false},
		{"empty", GoalStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.value.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestDisplayStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		progress int
		want     GoalStatus
	}{
		{0, GoalStatusNotStarted},
		{1, GoalStatusInProgress},
		{60, GoalStatusInProgress},
		{99, GoalStatusInProgress},
		{100, GoalStatusCompleted},
	}

	for _, tt := range tests {
		if got := DisplayStatus(tt.progress); got != tt.want {
			t.Errorf("DisplayStatus(%d) = %s, want %s", tt.progress, got, tt.want)
		}
	}
}

func TestGoalPatch_Apply(t *testing.T) {
	t.Parallel()

	ptrStatus := func(s GoalStatus) *GoalStatus { return &s }
	ptrInt := func(i int) *int { return &i }
	ptrString := func(s string) *string { return &s }

	tests := []struct {
		name         string
		start        Goal
		patch        GoalPatch
		wantStatus   GoalStatus
		wantProgress int
	}{
		{
			name:         "progress derives status",
			start:        Goal{Status: GoalStatusNotStarted, Progress: 0},
			patch:        GoalPatch{Progress: ptrInt(40)},
			wantStatus:   GoalStatusInProgress,
			wantProgress: 40,
		},
		{
			name:         "progress to 100 completes",
			start:        Goal{Status: GoalStatusInProgress, Progress: 40},
			patch:        GoalPatch{Progress: ptrInt(100)},
			wantStatus:   GoalStatusCompleted,
			wantProgress: 100,
		},
		{
			name:         "completed status moves progress to 100",
			start:        Goal{Status: GoalStatusInProgress, Progress: 60},
			patch:        GoalPatch{Status: ptrStatus(GoalStatusCompleted)},
			wantStatus:   GoalStatusCompleted,
			wantProgress: 100,
		},
		{
			name:         "not started resets progress",
			start:        Goal{Status: GoalStatusInProgress, Progress: 60},
			patch:        GoalPatch{Status: ptrStatus(GoalStatusNotStarted)},
			wantStatus:   GoalStatusNotStarted,
			wantProgress: 0,
		},
		{
			name:         "in progress from zero moves to midpoint",
			start:        Goal{Status: GoalStatusNotStarted, Progress: 0},
			patch:        GoalPatch{Status: ptrStatus(GoalStatusInProgress)},
			wantStatus:   GoalStatusInProgress,
			wantProgress: 50,
		},
		{
			name:         "in progress keeps partial progress",
			start:        Goal{Status: GoalStatusInProgress, Progress: 30},
			patch:        GoalPatch{Status: ptrStatus(GoalStatusInProgress)},
			wantStatus:   GoalStatusInProgress,
			wantProgress: 30,
		},
		{
			name:         "progress wins over status",
			start:        Goal{Status: GoalStatusNotStarted},
			patch:        GoalPatch{Status: ptrStatus(GoalStatusCompleted), Progress: ptrInt(20)},
			wantStatus:   GoalStatusInProgress,
			wantProgress: 20,
		},
		{
			name:         "title only leaves status alone",
			start:        Goal{Status: GoalStatusInProgress, Progress: 60},
			patch:        GoalPatch{Title: ptrString("New title")},
			wantStatus:   GoalStatusInProgress,
			wantProgress: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.patch.Apply(tt.start)
			if got.Status != tt.wantStatus || got.Progress != tt.wantProgress {
				t.Errorf("Apply() = %s/%d, want %s/%d", got.Status, got.Progress, tt.wantStatus, tt.wantProgress)
			}
			if got.Status != got.DisplayStatus() {
				t.Errorf("stored status %s disagrees with derived %s", got.Status, got.DisplayStatus())
			}
		})
	}
}

func TestGoalPatch_ApplyDoesNotAliasDescription(t *testing.T) {
	t.Parallel()

	desc := "original"
	patch := GoalPatch{Description: &desc}
	g := patch.Apply(Goal{})
	desc = "changed"

	if *g.Description != "original" {
		t.Errorf("Expected description copied, got %q", *g.Description)
	}
}
