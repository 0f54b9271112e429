package goals

import (
	"testing"
	"time"

	"github.com/benvon/careerontrack/internal/models"
)

func withProgress(values ...int) []models.Goal {
	out := make([]models.Goal, len(values))
	for i, p := range values {
		out[i] = models.Goal{ID: int64(i + 1), Progress: p}
	}
	return out
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []models.Goal
		want  Stats
	}{
		{"empty", nil, Stats{}},
		{"one of each", withProgress(100, 60, 0), Stats{Total: 3, Completed: 1, InProgress: 1, NotStarted: 1, AverageProgress: 53, CompletionRate: 33}},
		{"all complete", withProgress(100, 100), Stats{Total: 2, Completed: 2, AverageProgress: 100, CompletionRate: 100}},
		{"rounds half up", withProgress(100, 0, 0, 0, 0, 0, 0, 0), Stats{Total: 8, Completed: 1, NotStarted: 7, AverageProgress: 13, CompletionRate: 13}},
		{"two thirds", withProgress(100, 100, 1), Stats{Total: 3, Completed: 2, InProgress: 1, AverageProgress: 67, CompletionRate: 67}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ComputeStats(tt.items); got != tt.want {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeStats_IgnoresStoredStatus(t *testing.T) {
	t.Parallel()

	items := []models.Goal{{ID: 1, Status: models.GoalStatusCompleted, Progress: 40}}
	if got := ComputeStats(items); got.Completed != 0 || got.InProgress != 1 {
		t.Errorf("Expected progress-derived counts, got %+v", got)
	}
}

func TestRecent(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := make([]models.Goal, 5)
	for i := range items {
		items[i] = models.Goal{ID: int64(i + 1), UpdatedAt: base.Add(time.Duration(i) * time.Hour)}
	}

	got := Recent(items, RecentLimit)
	if want := []int64{5, 4, 3}; !equalIDs(ids(got), want) {
		t.Errorf("Recent() = %v, want %v", ids(got), want)
	}
	if items[0].ID != 1 {
		t.Error("Recent must not reorder its input")
	}
	if len(Recent(nil, 3)) != 0 {
		t.Error("Expected empty result for no items")
	}
}

func TestSortNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []models.Goal{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
		{ID: 4, CreatedAt: base.Add(2 * time.Hour)},
	}

	if want := []int64{2, 4, 3, 1}; !equalIDs(ids(SortNewestFirst(items)), want) {
		t.Errorf("SortNewestFirst() = %v, want %v", ids(SortNewestFirst(items)), want)
	}
}
