package handlers

import (
	"errors"
	"net/http"

	"github.com/benvon/careerontrack/internal/database"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/benvon/careerontrack/internal/services/auth"
	"github.com/benvon/careerontrack/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TokenIssuer creates session tokens for authenticated users
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// AuthHandler handles registration and login
type AuthHandler struct {
	users  database.UserRepositoryInterface
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users database.UserRepositoryInterface, tokens TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logpkg.OrNop(logger)}
}

// RegisterRoutes registers auth routes on the given router
// The router should already have the /api/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterRequest is the body of a registration call
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the body of a login call
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateCredentials(email, req.Password); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := validation.ValidateName(req.Name); err != nil {
		respondValidationError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password_hash_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to create account")
		return
	}

	user := &models.User{
		Email:        email,
		Name:         validation.SanitizeText(req.Name),
		PasswordHash: hash,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			respondJSONError(w, http.StatusConflict, models.ErrCodeConflict, "An account with this email already exists")
			return
		}
		h.logger.Error("user_create_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to create account")
		return
	}

	h.logger.Info("user_registered", zap.Int64("user_id", user.ID))
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login verifies credentials and returns a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateCredentials(email, req.Password); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	switch {
	case errors.Is(err, database.ErrNotFound):
		// Same answer as a wrong password so accounts cannot be enumerated
		h.rejectLogin(w, email)
		return
	case err != nil:
		h.logger.Error("user_lookup_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to sign in")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		h.rejectLogin(w, email)
		return
	}

	h.logger.Info("user_logged_in", zap.Int64("user_id", user.ID))
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) rejectLogin(w http.ResponseWriter, email string) {
	h.logger.Info("login_rejected", zap.String("email", logpkg.SanitizeEmail(email)))
	respondJSONError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid email or password")
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("token_issue_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to create session")
		return
	}
	respondJSON(w, status, models.AuthResponse{Token: token, User: user})
}
