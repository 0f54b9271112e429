package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/database"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/benvon/careerontrack/internal/request"
	"github.com/benvon/careerontrack/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MaxGoalDescriptionLength is the longest description accepted
const MaxGoalDescriptionLength = 5000

// GoalHandler handles goal-related requests
type GoalHandler struct {
	goals  database.GoalRepositoryInterface
	logger *zap.Logger
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goals database.GoalRepositoryInterface, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, logger: logpkg.OrNop(logger)}
}

// RegisterRoutes registers goal routes on the given router
// The router should already have the /api/goals prefix and the auth middleware
func (h *GoalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListGoals).Methods("GET")
	r.HandleFunc("", h.CreateGoal).Methods("POST")
	r.HandleFunc("/{id}", h.GetGoal).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateGoal).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteGoal).Methods("DELETE")
}

// CreateGoalRequest represents a create goal request. Status defaults to
// not_started; when progress is given the status is derived from it.
type CreateGoalRequest struct {
	Title       string             `json:"title" validate:"goal_title"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *models.GoalStatus `json:"status,omitempty" validate:"omitempty,goal_status"`
	Progress    *int               `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ListGoals returns the user's goals, newest first
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "User not found in context")
		return
	}

	goals, err := h.goals.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("goal_list_failed", zap.Int64("user_id", user.ID), zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to retrieve goals")
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}

	respondJSON(w, http.StatusOK, models.GoalsResponse{Goals: goals})
}

// GetGoal returns one of the user's goals
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	goal, err := h.goals.GetForUser(r.Context(), id, user.ID)
	if err != nil {
		h.respondRepoError(w, err, "Failed to retrieve goal")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// CreateGoal creates a new goal
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "User not found in context")
		return
	}

	var req CreateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	// Control characters are stripped before the length rules see the title
	req.Title = validation.SanitizeText(req.Title)
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, validation.FromValidator(err))
		return
	}
	if err := validation.ValidateStatusProgress(req.Status, req.Progress); err != nil {
		respondValidationError(w, err)
		return
	}

	// Start from a not-started goal and let the patch rules settle status and progress
	goal := models.GoalPatch{Status: req.Status, Progress: req.Progress}.Apply(models.Goal{
		UserID: user.ID,
		Title:  req.Title,
		Status: models.GoalStatusNotStarted,
	})
	if req.Description != nil {
		if desc := validation.SanitizeText(*req.Description); desc != "" {
			goal.Description = &desc
		}
	}

	if err := h.goals.Create(r.Context(), &goal); err != nil {
		h.logger.Error("goal_create_failed", zap.Int64("user_id", user.ID), zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to create goal")
		return
	}

	h.logger.Debug("goal_created",
		zap.Int64("user_id", user.ID),
		zap.Int64("goal_id", goal.ID),
		zap.String("title", logpkg.SanitizeTitle(goal.Title)),
	)
	respondJSON(w, http.StatusCreated, &goal)
}

// UpdateGoal applies a partial update to one of the user's goals
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	var patch models.GoalPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Title != nil {
		title := validation.SanitizeText(*patch.Title)
		patch.Title = &title
	}
	if err := validation.ValidateGoalPatch(patch); err != nil {
		respondValidationError(w, err)
		return
	}
	if patch.Description != nil && utf8.RuneCountInString(*patch.Description) > MaxGoalDescriptionLength {
		respondValidationError(w, apperr.NewValidationError("description",
			fmt.Sprintf("Description must be at most %d characters", MaxGoalDescriptionLength)))
		return
	}

	existing, err := h.goals.GetForUser(r.Context(), id, user.ID)
	if err != nil {
		h.respondRepoError(w, err, "Failed to update goal")
		return
	}

	updated := patch.Apply(*existing)
	if updated.Description != nil {
		if desc := validation.SanitizeText(*updated.Description); desc != "" {
			updated.Description = &desc
		} else {
			updated.Description = nil
		}
	}

	if err := h.goals.Update(r.Context(), &updated); err != nil {
		h.respondRepoError(w, err, "Failed to update goal")
		return
	}
	respondJSON(w, http.StatusOK, &updated)
}

// DeleteGoal deletes one of the user's goals
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.goalRequest(w, r)
	if !ok {
		return
	}

	if err := h.goals.Delete(r.Context(), id, user.ID); err != nil {
		h.respondRepoError(w, err, "Failed to delete goal")
		return
	}

	h.logger.Info("goal_deleted", zap.Int64("goal_id", id), zap.Int64("user_id", user.ID))
	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Goal deleted successfully"})
}

// goalRequest extracts the user and the goal id from the path
func (h *GoalHandler) goalRequest(w http.ResponseWriter, r *http.Request) (*models.User, int64, bool) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "User not found in context")
		return nil, 0, false
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondJSONError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid goal ID")
		return nil, 0, false
	}
	return user, id, true
}

func (h *GoalHandler) respondRepoError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, database.ErrNotFound) {
		// Other users' goals are indistinguishable from missing ones
		respondJSONError(w, http.StatusNotFound, models.ErrCodeNotFound, "Goal not found")
		return
	}
	h.logger.Error("goal_repository_failed", zap.String("error", logpkg.SanitizeError(err)))
	respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, message)
}
