package goals

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/client"
	"github.com/benvon/careerontrack/internal/models"
)

type fakeAPI struct {
	mu    sync.Mutex
	goals map[int64]models.Goal
	order []int64
	next  int64
	now   time.Time
	calls int

	getGoalsErr error
	createErr   error
	updateErr   error
	// getGoalsHook runs before GetGoals returns, e.g. to block
	getGoalsHook func()
}

func newFakeAPI(seed ...models.Goal) *fakeAPI {
	f := &fakeAPI{
		goals: make(map[int64]models.Goal),
		next:  100,
		now:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, g := range seed {
		f.goals[g.ID] = g
		f.order = append(f.order, g.ID)
	}
	return f
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) GetGoals(ctx context.Context) ([]models.Goal, error) {
	f.mu.Lock()
	f.calls++
	hook := f.getGoalsHook
	err := f.getGoalsErr
	out := make([]models.Goal, 0, len(f.order))
	for _, id := range f.order {
		if g, ok := f.goals[id]; ok {
			out = append(out, g)
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeAPI) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	g, ok := f.goals[id]
	if !ok {
		return nil, notFound()
	}
	return &g, nil
}

func (f *fakeAPI) CreateGoal(ctx context.Context, req client.CreateGoalRequest) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.next++
	f.now = f.now.Add(time.Minute)
	g := models.Goal{
		ID:          f.next,
		UserID:      1,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	f.goals[g.ID] = g
	f.order = append(f.order, g.ID)
	return &g, nil
}

func (f *fakeAPI) UpdateGoal(ctx context.Context, id int64, patch models.GoalPatch) (*models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	g, ok := f.goals[id]
	if !ok {
		return nil, notFound()
	}
	f.now = f.now.Add(time.Minute)
	g = patch.Apply(g)
	g.UpdatedAt = f.now
	f.goals[id] = g
	return &g, nil
}

func (f *fakeAPI) DeleteGoal(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.goals[id]; !ok {
		return "", notFound()
	}
	delete(f.goals, id)
	return "Goal deleted successfully", nil
}

func notFound() error {
	return &apperr.ServerError{StatusCode: http.StatusNotFound, Type: "not_found", Message: "Goal not found"}
}

type notification struct {
	title   string
	message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []notification
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	n.seen = append(n.seen, notification{title, message})
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.seen...)
}

func seedGoals() []models.Goal {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []models.Goal{
		{ID: 1, UserID: 1, Title: "Oldest", Status: models.GoalStatusCompleted, Progress: 100, CreatedAt: base, UpdatedAt: base.Add(72 * time.Hour)},
		{ID: 2, UserID: 1, Title: "Newest", Status: models.GoalStatusInProgress, Progress: 60, CreatedAt: base.Add(48 * time.Hour), UpdatedAt: base.Add(48 * time.Hour)},
		{ID: 3, UserID: 1, Title: "Middle", Status: models.GoalStatusNotStarted, Progress: 0, CreatedAt: base.Add(24 * time.Hour), UpdatedAt: base.Add(24 * time.Hour)},
	}
}

func ids(items []models.Goal) []int64 {
	out := make([]int64, len(items))
	for i, g := range items {
		out[i] = g.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func loadedModel(t *testing.T) (*ListModel, *fakeAPI, *recordingNotifier) {
	t.Helper()
	api := newFakeAPI(seedGoals()...)
	n := &recordingNotifier{}
	m := NewListModel(api, n, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return m, api, n
}

func TestLoad_SortsNewestFirstAndDerivesState(t *testing.T) {
	t.Parallel()

	m, _, _ := loadedModel(t)
	s := m.State()

	if want := []int64{2, 3, 1}; !equalIDs(ids(s.Items), want) {
		t.Errorf("Expected order %v, got %v", want, ids(s.Items))
	}
	if s.Loading || s.Refreshing {
		t.Error("Expected loading and refreshing false after load")
	}
	if s.Phase != PhasePopulated {
		t.Errorf("Expected populated phase, got %s", s.Phase)
	}
	want := Stats{Total: 3, Completed: 1, InProgress: 1, NotStarted: 1, AverageProgress: 53, CompletionRate: 33}
	if s.Stats != want {
		t.Errorf("Expected stats %+v, got %+v", want, s.Stats)
	}
	if want := []int64{1, 2, 3}; !equalIDs(ids(s.Recent), want) {
		t.Errorf("Expected recent by updatedAt %v, got %v", want, ids(s.Recent))
	}
}

func TestLoad_FailureKeepsItems(t *testing.T) {
	t.Parallel()

	m, api, n := loadedModel(t)

	api.mu.Lock()
	api.getGoalsErr = &apperr.NetworkError{Op: "GET /api/goals", Err: errors.New("connection refused")}
	api.mu.Unlock()

	err := m.Load(context.Background())
	if !apperr.IsNetwork(err) {
		t.Fatalf("Expected NetworkError, got %v", err)
	}

	s := m.State()
	if len(s.Items) != 3 {
		t.Errorf("Expected 3 items kept, got %d", len(s.Items))
	}
	if s.Loading {
		t.Error("Expected loading false after failed load")
	}
	if s.Error == "" {
		t.Error("Expected error message recorded")
	}
	if s.Phase != PhasePopulated {
		t.Errorf("Stale items should still render, got phase %s", s.Phase)
	}

	seen := n.all()
	if len(seen) != 1 || seen[0].title != MsgLoadFailed {
		t.Errorf("Expected one %q notification, got %v", MsgLoadFailed, seen)
	}
}

func TestLoad_FailureOnEmptyListIsErrorPhase(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.getGoalsErr = &apperr.ServerError{StatusCode: 500, Message: "Internal server error"}
	m := NewListModel(api, nil, nil)

	_ = m.Load(context.Background())
	s := m.State()
	if s.Phase != PhaseError {
		t.Errorf("Expected error phase, got %s", s.Phase)
	}
	if s.Error != "Internal server error" {
		t.Errorf("Expected server message, got %q", s.Error)
	}
}

func TestLoad_EmptyPhase(t *testing.T) {
	t.Parallel()

	m := NewListModel(newFakeAPI(), nil, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s := m.State()
	if s.Phase != PhaseEmpty {
		t.Errorf("Expected empty phase, got %s", s.Phase)
	}
	if s.Stats != (Stats{}) {
		t.Errorf("Expected zero stats, got %+v", s.Stats)
	}
}

func TestLoadAndRefresh_TrackSeparateFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		run            func(m *ListModel) error
		wantLoading    bool
		wantRefreshing bool
	}{
		{"load", func(m *ListModel) error { return m.Load(context.Background()) }, true, false},
		{"refresh", func(m *ListModel) error { return m.Refresh(context.Background()) }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			release := make(chan struct{})
			api := newFakeAPI(seedGoals()...)
			api.getGoalsHook = func() { <-release }
			m := NewListModel(api, nil, nil)

			inFlight := make(chan ViewState, 1)
			unsubscribe := m.Subscribe(func(vs ViewState) {
				if vs.Loading || vs.Refreshing {
					select {
					case inFlight <- vs:
					default:
					}
				}
			})
			defer unsubscribe()

			done := make(chan error, 1)
			go func() { done <- tt.run(m) }()

			select {
			case vs := <-inFlight:
				if vs.Loading != tt.wantLoading || vs.Refreshing != tt.wantRefreshing {
					t.Errorf("Expected loading=%v refreshing=%v, got %v/%v", tt.wantLoading, tt.wantRefreshing, vs.Loading, vs.Refreshing)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("No in-flight state published")
			}

			close(release)
			if err := <-done; err != nil {
				t.Fatalf("fetch failed: %v", err)
			}
			if s := m.State(); s.Loading || s.Refreshing {
				t.Error("Expected flags cleared after completion")
			}
		})
	}
}

func TestLoad_LaterResolvingResponseWins(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(seedGoals()...)
	firstRelease := make(chan struct{})
	firstStarted := make(chan struct{})
	var callNo int
	var hookMu sync.Mutex
	api.getGoalsHook = func() {
		hookMu.Lock()
		callNo++
		n := callNo
		hookMu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-firstRelease
		}
	}
	m := NewListModel(api, nil, nil)

	// the first load read the three seeded goals before blocking
	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background()) }()
	<-firstStarted

	api.mu.Lock()
	delete(api.goals, 3)
	api.mu.Unlock()

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := len(m.State().Items); got != 2 {
		t.Fatalf("Expected 2 items after refresh, got %d", got)
	}

	close(firstRelease)
	if err := <-done; err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := len(m.State().Items); got != 3 {
		t.Errorf("Expected the later-resolving stale load to win with 3 items, got %d", got)
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		title     string
		wantErr   bool
		wantTitle string
	}{
		{"too short", "ab", true, ""},
		{"blank", "   ", true, ""},
		{"short after trim", "  ab  ", true, ""},
		{"valid", "Learn X", false, "Learn X"},
		{"trimmed", "  Learn Go  ", false, "Learn Go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, api, _ := loadedModel(t)
			before := api.callCount()

			g, err := m.Create(context.Background(), tt.title, "")
			if tt.wantErr {
				if !apperr.IsValidation(err) {
					t.Fatalf("Expected ValidationError, got %v", err)
				}
				if api.callCount() != before {
					t.Error("Validation failure must not reach the API")
				}
				if len(m.State().Items) != 3 {
					t.Error("Expected items unchanged")
				}
				return
			}

			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if g.Status != models.GoalStatusNotStarted {
				t.Errorf("Expected not_started, got %s", g.Status)
			}
			if g.Description != nil {
				t.Error("Expected empty description omitted")
			}
			s := m.State()
			if len(s.Items) != 4 || s.Items[0].ID != g.ID || s.Items[0].Title != tt.wantTitle {
				t.Errorf("Expected created goal at head, got %v", ids(s.Items))
			}
			if s.Stats.Total != 4 || s.Stats.NotStarted != 2 {
				t.Errorf("Expected aggregates recomputed, got %+v", s.Stats)
			}
		})
	}
}

func TestCreate_ServerFailureLeavesItems(t *testing.T) {
	t.Parallel()

	m, api, n := loadedModel(t)
	api.mu.Lock()
	api.createErr = &apperr.ServerError{StatusCode: 400, Message: "Title is required"}
	api.mu.Unlock()

	if _, err := m.Create(context.Background(), "Valid title", "desc"); !apperr.IsServer(err) {
		t.Fatalf("Expected ServerError, got %v", err)
	}
	if len(m.State().Items) != 3 {
		t.Error("Expected items unchanged")
	}
	seen := n.all()
	if len(seen) != 1 || seen[0].title != MsgCreateFailed || seen[0].message != "Title is required" {
		t.Errorf("Unexpected notifications %v", seen)
	}
}

func TestUpdateStatus_ReplacesInPlace(t *testing.T) {
	t.Parallel()

	m, _, _ := loadedModel(t)
	before := ids(m.State().Items)

	// goal 2 sits at index 0 with progress 60
	g, err := m.UpdateStatus(context.Background(), 2, models.GoalStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if g.Status != models.GoalStatusCompleted || g.Progress != 100 {
		t.Errorf("Expected completed at 100, got %s at %d", g.Status, g.Progress)
	}

	s := m.State()
	if !equalIDs(ids(s.Items), before) {
		t.Errorf("Expected order %v preserved, got %v", before, ids(s.Items))
	}
	if s.Items[0].ID != 2 || s.Items[0].Status != models.GoalStatusCompleted {
		t.Errorf("Expected index 0 updated in place, got %+v", s.Items[0])
	}
	if s.Stats.Completed != 2 {
		t.Errorf("Expected 2 completed, got %d", s.Stats.Completed)
	}
	if s.Recent[0].ID != 2 {
		t.Errorf("Expected updated goal first in recent, got %v", ids(s.Recent))
	}
}

func TestUpdate_FailureLeavesItems(t *testing.T) {
	t.Parallel()

	m, api, n := loadedModel(t)
	before := m.State().Items

	api.mu.Lock()
	api.updateErr = &apperr.NetworkError{Op: "PUT /api/goals/2", Err: errors.New("timeout")}
	api.mu.Unlock()

	if _, err := m.UpdateProgress(context.Background(), 2, 80); !apperr.IsNetwork(err) {
		t.Fatalf("Expected NetworkError, got %v", err)
	}
	after := m.State().Items
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Item %d changed after failed update", i)
		}
	}
	if seen := n.all(); len(seen) != 1 || seen[0].title != MsgUpdateFailed {
		t.Errorf("Unexpected notifications %v", seen)
	}
}

func TestUpdate_Validation(t *testing.T) {
	t.Parallel()

	badStatus := models.GoalStatus("paused")
	short := "ab"
	tests := []struct {
		name  string
		run   func(m *ListModel) error
		field string
	}{
		{"progress above 100", func(m *ListModel) error {
			_, err := m.UpdateProgress(context.Background(), 1, 101)
			return err
		}, "progress"},
		{"negative progress", func(m *ListModel) error {
			_, err := m.UpdateProgress(context.Background(), 1, -1)
			return err
		}, "progress"},
		{"unknown status", func(m *ListModel) error {
			_, err := m.UpdateStatus(context.Background(), 1, badStatus)
			return err
		}, "status"},
		{"short title", func(m *ListModel) error {
			_, err := m.Update(context.Background(), 1, models.GoalPatch{Title: &short})
			return err
		}, "title"},
		{"empty patch", func(m *ListModel) error {
			_, err := m.Update(context.Background(), 1, models.GoalPatch{})
			return err
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, api, _ := loadedModel(t)
			before := api.callCount()

			err := tt.run(m)
			var verr *apperr.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, verr.Field)
			}
			if api.callCount() != before {
				t.Error("Validation failure must not reach the API")
			}
		})
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	m, _, n := loadedModel(t)

	if err := m.Remove(context.Background(), 3); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if want := []int64{2, 1}; !equalIDs(ids(m.State().Items), want) {
		t.Errorf("Expected %v, got %v", want, ids(m.State().Items))
	}

	err := m.Remove(context.Background(), 999)
	var serr *apperr.ServerError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404 ServerError, got %v", err)
	}
	if want := []int64{2, 1}; !equalIDs(ids(m.State().Items), want) {
		t.Errorf("Expected items unchanged, got %v", ids(m.State().Items))
	}
	if seen := n.all(); len(seen) != 1 || seen[0].title != MsgDeleteFailed || seen[0].message != "Goal not found" {
		t.Errorf("Unexpected notifications %v", seen)
	}
}

func TestGet_RefreshesCachedEntry(t *testing.T) {
	t.Parallel()

	m, api, _ := loadedModel(t)
	api.mu.Lock()
	g := api.goals[3]
	g.Title = "Renamed elsewhere"
	api.goals[3] = g
	api.mu.Unlock()

	got, err := m.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Renamed elsewhere" {
		t.Errorf("Unexpected title %q", got.Title)
	}
	if m.State().Items[1].Title != "Renamed elsewhere" {
		t.Error("Expected cached entry replaced in place")
	}
}

func TestStateIsACopy(t *testing.T) {
	t.Parallel()

	m, _, _ := loadedModel(t)
	s := m.State()
	s.Items[0].Title = "mutated"

	if m.State().Items[0].Title == "mutated" {
		t.Error("Mutating a snapshot must not change the model")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	m, _, _ := loadedModel(t)
	m.Reset()
	if s := m.State(); len(s.Items) != 0 || s.Phase != PhaseEmpty {
		t.Errorf("Expected empty list after reset, got %+v", s)
	}
}
