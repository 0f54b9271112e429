package models

import (
	"time"
)

// GoalStatus represents where a goal stands
type GoalStatus string

const (
	GoalStatusNotStarted GoalStatus = "not_started"
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusCompleted  GoalStatus = "completed"
)

const (
	// MinGoalTitleLength is the minimum trimmed title length
	MinGoalTitleLength = 3
	// MaxGoalTitleLength is the maximum title length accepted by the backend
	MaxGoalTitleLength = 200
	// MaxGoalProgress is the progress value of a finished goal
	MaxGoalProgress = 100
)

// Valid reports whether s is one of the known statuses
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusNotStarted, GoalStatusInProgress, GoalStatusCompleted:
		return true
	default:
		return false
	}
}

// Label returns the status in human form ("in progress")
func (s GoalStatus) Label() string {
	switch s {
	case GoalStatusNotStarted:
		return "not started"
	case GoalStatusInProgress:
		return "in progress"
	case GoalStatusCompleted:
		return "completed"
	default:
		return string(s)
	}
}

// Goal represents a career goal owned by one user
type Goal struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      GoalStatus `json:"status"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DisplayStatus derives a status from progress alone:
// 100 is completed, anything between 0 and 100 is in progress, 0 is not started.
func DisplayStatus(progress int) GoalStatus {
	switch {
	case progress >= MaxGoalProgress:
		return GoalStatusCompleted
	case progress > 0:
		return GoalStatusInProgress
	default:
		return GoalStatusNotStarted
	}
}

// DisplayStatus returns the progress-derived status of the goal
func (g Goal) DisplayStatus() GoalStatus {
	return DisplayStatus(g.Progress)
}

// GoalPatch is a partial goal update. Nil fields are left unchanged.
type GoalPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *GoalStatus `json:"status,omitempty"`
	Progress    *int        `json:"progress,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p GoalPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Progress == nil
}

// Apply returns a copy of g with the patch applied. Status and progress are
// kept in sync: a progress change derives the status, and a status-only change
// moves progress into that status's range.
func (p GoalPatch) Apply(g Goal) Goal {
	out := g
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		out.Description = &desc
	}
	switch {
	case p.Progress != nil:
		out.Progress = *p.Progress
		out.Status = DisplayStatus(out.Progress)
	case p.Status != nil:
		out.Status = *p.Status
		out.Progress = progressForStatus(*p.Status, out.Progress)
	}
	return out
}

func progressForStatus(status GoalStatus, current int) int {
	switch status {
	case GoalStatusNotStarted:
		return 0
	case GoalStatusCompleted:
		return MaxGoalProgress
	case GoalStatusInProgress:
		if current <= 0 || current >= MaxGoalProgress {
			return 50
		}
		return current
	default:
		return current
	}
}
