package database

import (
	"context"

	"github.com/benvon/careerontrack/internal/models"
)

// UserRepositoryInterface defines the user operations the handlers need.
// It lets tests substitute an in-memory implementation.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// GoalRepositoryInterface defines the goal operations the handlers need
type GoalRepositoryInterface interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Goal, error)
	GetForUser(ctx context.Context, id, userID int64) (*models.Goal, error)
	Create(ctx context.Context, goal *models.Goal) error
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, id, userID int64) error
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface = (*UserRepository)(nil)
	_ GoalRepositoryInterface = (*GoalRepository)(nil)
)
