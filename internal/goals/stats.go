package goals

import (
	"math"
	"slices"

	"github.com/benvon/careerontrack/internal/models"
)

// RecentLimit is how many goals the dashboard shows as recently touched
const RecentLimit = 3

// Stats are the aggregate counters shown on the dashboard. Counts use the
// progress-derived status, not the stored one.
type Stats struct {
	Total           int `json:"total"`
	Completed       int `json:"completed"`
	InProgress      int `json:"inProgress"`
	NotStarted      int `json:"notStarted"`
	AverageProgress int `json:"averageProgress"`
	CompletionRate  int `json:"completionRate"`
}

// ComputeStats derives the aggregate counters for items
func ComputeStats(items []models.Goal) Stats {
	s := Stats{Total: len(items)}
	if s.Total == 0 {
		return s
	}

	sum := 0
	for _, g := range items {
		sum += g.Progress
		switch g.DisplayStatus() {
		case models.GoalStatusCompleted:
			s.Completed++
		case models.GoalStatusInProgress:
			s.InProgress++
		default:
			s.NotStarted++
		}
	}

	s.AverageProgress = int(math.Round(float64(sum) / float64(s.Total)))
	s.CompletionRate = int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
	return s
}

// SortNewestFirst returns a copy of items ordered by CreatedAt descending.
// Goals created at the same instant keep their relative order.
func SortNewestFirst(items []models.Goal) []models.Goal {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.Goal) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Recent returns up to n goals ordered by UpdatedAt descending
func Recent(items []models.Goal, n int) []models.Goal {
	if n <= 0 || len(items) == 0 {
		return []models.Goal{}
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.Goal) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
