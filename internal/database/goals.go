package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benvon/careerontrack/internal/models"
	"go.uber.org/zap"
)

// GoalRepository handles goal database operations. Every query is scoped to
// the owning user; a goal owned by someone else is reported as ErrNotFound.
type GoalRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db, logger: zap.NewNop()}
}

// SetLogger sets the logger for the repository
func (r *GoalRepository) SetLogger(logger *zap.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

const goalColumns = `id, user_id, title, description, status, progress, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*models.Goal, error) {
	goal := &models.Goal{}
	var description sql.NullString
	if err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&description,
		&goal.Status,
		&goal.Progress,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		goal.Description = &description.String
	}
	return goal, nil
}

// ListByUser returns a user's goals, newest first
func (r *GoalRepository) ListByUser(ctx context.Context, userID int64) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed_to_close_rows", zap.Error(err))
		}
	}()

	goals := []models.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return goals, nil
}

// GetForUser retrieves one of a user's goals
func (r *GoalRepository) GetForUser(ctx context.Context, id, userID int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + `
		FROM goals
		WHERE id = $1 AND user_id = $2
	`

	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// Create inserts a goal and fills in the generated id and timestamps
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO goals (user_id, title, description, status, progress)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.Progress,
	).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	r.logger.Debug("goal_created",
		zap.Int64("goal_id", goal.ID),
		zap.Int64("user_id", goal.UserID),
	)
	return nil
}

// Update saves every mutable field of a goal owned by goal.UserID
func (r *GoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	query := `
		UPDATE goals
		SET title = $3, description = $4, status = $5, progress = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.Progress,
	).Scan(&goal.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

// Delete removes one of a user's goals
func (r *GoalRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
