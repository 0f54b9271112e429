package goals

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/client"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/benvon/careerontrack/internal/validation"
	"go.uber.org/zap"
)

// User-visible failure titles
const (
	MsgLoadFailed         = "Failed to load goals"
	MsgLoadGoalFailed     = "Failed to load goal"
	MsgCreateFailed       = "Failed to create goal"
	MsgUpdateFailed       = "Failed to update goal"
	MsgUpdateStatusFailed = "Failed to update goal status"
	MsgDeleteFailed       = "Failed to delete goal"
)

// API is the subset of the API client the goal list needs
type API interface {
	GetGoals(ctx context.Context) ([]models.Goal, error)
	GetGoal(ctx context.Context, id int64) (*models.Goal, error)
	CreateGoal(ctx context.Context, req client.CreateGoalRequest) (*models.Goal, error)
	UpdateGoal(ctx context.Context, id int64, patch models.GoalPatch) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id int64) (string, error)
}

// Notifier surfaces a failure to the user. title is one of the Msg constants
// and message is the best message the error carried.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to a Notifier
type NotifierFunc func(title, message string)

// Notify calls f
func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// Phase is what a list screen should render
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseEmpty     Phase = "empty"
	PhaseError     Phase = "error"
	PhasePopulated Phase = "populated"
)

// ViewState is an immutable snapshot of the goal list and everything derived from it
type ViewState struct {
	Items      []models.Goal
	Loading    bool
	Refreshing bool
	Stats      Stats
	Recent     []models.Goal
	// Error is the message of the last failed load, cleared by the next successful one
	Error string
	Phase Phase
}

// ListModel caches the current user's goals and keeps them consistent with
// the server. Updates and deletes are applied only after the server
// acknowledges them; a created goal is inserted at the head of the list.
//
// Loads are not cancelled by later loads. When two overlap, the one that
// finishes last decides the items.
type ListModel struct {
	api      API
	notifier Notifier
	logger   *zap.Logger

	mu         sync.Mutex
	items      []models.Goal
	loading    int
	refreshing int
	lastErr    string

	subsMu  sync.Mutex
	subs    map[int]func(ViewState)
	nextSub int
}

// NewListModel creates an empty list. notifier and logger may be nil.
func NewListModel(api API, notifier Notifier, logger *zap.Logger) *ListModel {
	if notifier == nil {
		notifier = NotifierFunc(func(string, string) {})
	}
	return &ListModel{
		api:      api,
		notifier: notifier,
		logger:   logpkg.OrNop(logger),
		items:    []models.Goal{},
		subs:     make(map[int]func(ViewState)),
	}
}

// State returns the current view state
func (m *ListModel) State() ViewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *ListModel) stateLocked() ViewState {
	items := slices.Clone(m.items)
	vs := ViewState{
		Items:      items,
		Loading:    m.loading > 0,
		Refreshing: m.refreshing > 0,
		Stats:      ComputeStats(items),
		Recent:     Recent(items, RecentLimit),
		Error:      m.lastErr,
	}
	switch {
	case len(items) > 0:
		vs.Phase = PhasePopulated
	case vs.Loading:
		vs.Phase = PhaseLoading
	case vs.Error != "":
		vs.Phase = PhaseError
	default:
		vs.Phase = PhaseEmpty
	}
	return vs
}

// Subscribe registers fn to receive every state change and returns a
// function that unregisters it
func (m *ListModel) Subscribe(fn func(ViewState)) func() {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

func (m *ListModel) update(mutate func()) ViewState {
	m.mu.Lock()
	mutate()
	vs := m.stateLocked()
	m.mu.Unlock()

	m.subsMu.Lock()
	fns := make([]func(ViewState), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(vs)
	}
	return vs
}

func (m *ListModel) fail(title string, err error) {
	m.logger.Warn("goal_operation_failed",
		zap.String("operation", title),
		zap.String("error", logpkg.SanitizeError(err)),
	)
	m.notifier.Notify(title, apperr.Message(err, title))
}

// Load replaces the items with the server's list, newest first. On failure
// the previous items are kept.
func (m *ListModel) Load(ctx context.Context) error {
	return m.fetch(ctx, false)
}

// Refresh is Load tracked under the refreshing flag instead of loading
func (m *ListModel) Refresh(ctx context.Context) error {
	return m.fetch(ctx, true)
}

func (m *ListModel) fetch(ctx context.Context, refresh bool) error {
	m.update(func() {
		if refresh {
			m.refreshing++
		} else {
			m.loading++
		}
	})

	goals, err := m.api.GetGoals(ctx)

	m.update(func() {
		if refresh {
			m.refreshing--
		} else {
			m.loading--
		}
		if err != nil {
			m.lastErr = apperr.Message(err, MsgLoadFailed)
			return
		}
		m.items = SortNewestFirst(goals)
		m.lastErr = ""
	})

	if err != nil {
		m.fail(MsgLoadFailed, err)
		return err
	}
	m.logger.Debug("goals_loaded", zap.Int("count", len(goals)))
	return nil
}

// Get fetches one goal and replaces its cached copy if the list holds it
func (m *ListModel) Get(ctx context.Context, id int64) (*models.Goal, error) {
	g, err := m.api.GetGoal(ctx, id)
	if err != nil {
		m.fail(MsgLoadGoalFailed, err)
		return nil, err
	}
	m.replace(*g)
	return g, nil
}

// Create validates the title, creates the goal as not started and inserts
// the stored goal at the head of the list. An empty description is omitted.
func (m *ListModel) Create(ctx context.Context, title, description string) (*models.Goal, error) {
	if err := validation.ValidateGoalTitle(title); err != nil {
		return nil, err
	}

	req := client.CreateGoalRequest{
		Title:  strings.TrimSpace(title),
		Status: models.GoalStatusNotStarted,
	}
	if desc := strings.TrimSpace(description); desc != "" {
		req.Description = &desc
	}

	g, err := m.api.CreateGoal(ctx, req)
	if err != nil {
		m.fail(MsgCreateFailed, err)
		return nil, err
	}

	created := *g
	m.update(func() {
		m.items = slices.DeleteFunc(m.items, func(existing models.Goal) bool {
			return existing.ID == created.ID
		})
		m.items = slices.Insert(m.items, 0, created)
	})
	m.logger.Info("goal_created", zap.Int64("goal_id", created.ID))
	return g, nil
}

// Update sends a partial update and, once the server accepts it, replaces the
// goal in place. The list is not re-sorted.
func (m *ListModel) Update(ctx context.Context, id int64, patch models.GoalPatch) (*models.Goal, error) {
	return m.patch(ctx, id, patch, MsgUpdateFailed)
}

// UpdateStatus changes a goal's status
func (m *ListModel) UpdateStatus(ctx context.Context, id int64, status models.GoalStatus) (*models.Goal, error) {
	return m.patch(ctx, id, models.GoalPatch{Status: &status}, MsgUpdateStatusFailed)
}

// UpdateProgress changes a goal's progress percentage
func (m *ListModel) UpdateProgress(ctx context.Context, id int64, progress int) (*models.Goal, error) {
	return m.patch(ctx, id, models.GoalPatch{Progress: &progress}, MsgUpdateFailed)
}

func (m *ListModel) patch(ctx context.Context, id int64, patch models.GoalPatch, failTitle string) (*models.Goal, error) {
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	if err := validation.ValidateGoalPatch(patch); err != nil {
		return nil, err
	}

	g, err := m.api.UpdateGoal(ctx, id, patch)
	if err != nil {
		m.fail(failTitle, err)
		return nil, err
	}
	m.replace(*g)
	return g, nil
}

func (m *ListModel) replace(g models.Goal) {
	m.update(func() {
		if i := m.indexLocked(g.ID); i >= 0 {
			m.items[i] = g
		}
	})
}

func (m *ListModel) indexLocked(id int64) int {
	return slices.IndexFunc(m.items, func(g models.Goal) bool { return g.ID == id })
}

// Remove deletes a goal on the server and then drops it from the list
func (m *ListModel) Remove(ctx context.Context, id int64) error {
	if _, err := m.api.DeleteGoal(ctx, id); err != nil {
		m.fail(MsgDeleteFailed, err)
		return err
	}
	m.update(func() {
		if i := m.indexLocked(id); i >= 0 {
			m.items = slices.Delete(m.items, i, i+1)
		}
	})
	m.logger.Info("goal_deleted", zap.Int64("goal_id", id))
	return nil
}

// Reset drops every cached goal, e.g. after the session ends
func (m *ListModel) Reset() {
	m.update(func() {
		m.items = []models.Goal{}
		m.lastErr = ""
	})
}
