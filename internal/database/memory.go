package database

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/benvon/careerontrack/internal/models"
)

// MemoryUserRepository is an in-process UserRepositoryInterface for tests
// and local runs without PostgreSQL. It enforces the same unique email rule.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	nextID int64
}

// NewMemoryUserRepository creates an empty repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]models.User)}
}

// Create stores user and fills in its id and timestamps
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(user.Email, 0) {
		return ErrEmailTaken
	}

	r.nextID++
	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = &now
	user.UpdatedAt = &now
	r.users[user.ID] = *user
	return nil
}

// GetByID returns the user with id
func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// GetByEmail returns the user registered with email
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// Update saves the user's name and email
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if r.emailTakenLocked(user.Email, user.ID) {
		return ErrEmailTaken
	}

	now := time.Now().UTC()
	stored.Email = user.Email
	stored.Name = user.Name
	stored.UpdatedAt = &now
	r.users[user.ID] = stored
	user.UpdatedAt = &now
	return nil
}

func (r *MemoryUserRepository) emailTakenLocked(email string, exceptID int64) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

// MemoryGoalRepository is an in-process GoalRepositoryInterface
type MemoryGoalRepository struct {
	mu     sync.RWMutex
	goals  map[int64]models.Goal
	nextID int64
	now    func() time.Time
}

// NewMemoryGoalRepository creates an empty repository
func NewMemoryGoalRepository() *MemoryGoalRepository {
	return &MemoryGoalRepository{
		goals: make(map[int64]models.Goal),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ListByUser returns the user's goals, newest first
func (r *MemoryGoalRepository) ListByUser(_ context.Context, userID int64) ([]models.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := []models.Goal{}
	for _, g := range r.goals {
		if g.UserID == userID {
			goals = append(goals, cloneGoal(g))
		}
	}
	slices.SortFunc(goals, func(a, b models.Goal) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return goals, nil
}

// GetForUser returns goal id if userID owns it
func (r *MemoryGoalRepository) GetForUser(_ context.Context, id, userID int64) (*models.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return nil, ErrNotFound
	}
	out := cloneGoal(g)
	return &out, nil
}

// Create stores goal and fills in its id and timestamps
func (r *MemoryGoalRepository) Create(_ context.Context, goal *models.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now()
	goal.ID = r.nextID
	goal.CreatedAt = now
	goal.UpdatedAt = now
	r.goals[goal.ID] = cloneGoal(*goal)
	return nil
}

// Update saves every mutable field of a goal owned by goal.UserID
func (r *MemoryGoalRepository) Update(_ context.Context, goal *models.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.goals[goal.ID]
	if !ok || stored.UserID != goal.UserID {
		return ErrNotFound
	}

	goal.CreatedAt = stored.CreatedAt
	goal.UpdatedAt = r.now()
	r.goals[goal.ID] = cloneGoal(*goal)
	return nil
}

// Delete removes one of a user's goals
func (r *MemoryGoalRepository) Delete(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return ErrNotFound
	}
	delete(r.goals, id)
	return nil
}

func cloneGoal(g models.Goal) models.Goal {
	if g.Description != nil {
		desc := *g.Description
		g.Description = &desc
	}
	return g
}

var (
	_ UserRepositoryInterface = (*MemoryUserRepository)(nil)
	_ GoalRepositoryInterface = (*MemoryGoalRepository)(nil)
)
