package handlers

import (
	"errors"
	"net/http"

	"github.com/benvon/careerontrack/internal/database"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/benvon/careerontrack/internal/request"
	"github.com/benvon/careerontrack/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UsersHandler serves the signed-in user's profile
type UsersHandler struct {
	users  database.UserRepositoryInterface
	logger *zap.Logger
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(users database.UserRepositoryInterface, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{users: users, logger: logpkg.OrNop(logger)}
}

// RegisterRoutes registers profile routes. The router should already have
// the /api/users prefix and the auth middleware.
func (h *UsersHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
}

// UpdateProfileRequest is a partial profile update. Absent fields are unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// GetProfile returns the current user
func (h *UsersHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "User not found in context")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the current user's name and/or email
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current := request.UserFromContext(r)
	if current == nil {
		respondJSONError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "User not found in context")
		return
	}

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Email == nil {
		respondJSONError(w, http.StatusBadRequest, models.ErrCodeValidation, "No fields to update")
		return
	}

	updated := *current
	if req.Name != nil {
		if err := validation.ValidateName(*req.Name); err != nil {
			respondValidationError(w, err)
			return
		}
		updated.Name = validation.SanitizeText(*req.Name)
	}
	if req.Email != nil {
		email := validation.NormalizeEmail(*req.Email)
		if err := validation.ValidateEmail(email); err != nil {
			respondValidationError(w, err)
			return
		}
		updated.Email = email
	}

	if err := h.users.Update(r.Context(), &updated); err != nil {
		switch {
		case errors.Is(err, database.ErrEmailTaken):
			respondJSONError(w, http.StatusConflict, models.ErrCodeConflict, "An account with this email already exists")
		case errors.Is(err, database.ErrNotFound):
			respondJSONError(w, http.StatusNotFound, models.ErrCodeNotFound, "User not found")
		default:
			h.logger.Error("profile_update_failed",
				zap.Int64("user_id", current.ID),
				zap.String("error", logpkg.SanitizeError(err)),
			)
			respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to update profile")
		}
		return
	}

	respondJSON(w, http.StatusOK, &updated)
}
