package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/models"
)

// AuthResponse is returned by login and registration
type AuthResponse = models.AuthResponse

// HealthResponse is returned by the health endpoint
type HealthResponse = models.HealthResponse

// CreateGoalRequest is the body of a create-goal call
type CreateGoalRequest struct {
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Status      models.GoalStatus `json:"status"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Login exchanges credentials for a token and user
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", false, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := validateAuth(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a token and user
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register", false, registerRequest{Email: email, Password: password, Name: name}, &resp); err != nil {
		return nil, err
	}
	if err := validateAuth(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func validateAuth(r *AuthResponse) error {
	if r.Token == "" || r.User == nil {
		return &apperr.ServerError{StatusCode: http.StatusOK, Message: "Invalid response from server"}
	}
	return nil
}

// GetProfile fetches the current user's profile
func (c *Client) GetProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, "/users/profile", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile sends a partial profile update and returns the stored profile
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodPut, "/users/profile", true, fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetGoals fetches every goal owned by the current user
func (c *Client) GetGoals(ctx context.Context) ([]models.Goal, error) {
	var env models.GoalsResponse
	if err := c.call(ctx, http.MethodGet, "/goals", true, nil, &env); err != nil {
		return nil, err
	}
	if env.Goals == nil {
		env.Goals = []models.Goal{}
	}
	return env.Goals, nil
}

// GetGoal fetches one goal
func (c *Client) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	var goal models.Goal
	if err := c.call(ctx, http.MethodGet, goalPath(id), true, nil, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// CreateGoal creates a goal. The backend may answer with the goal itself or
// with the goal wrapped as {"goal": ...}; both are accepted.
func (c *Client) CreateGoal(ctx context.Context, req CreateGoalRequest) (*models.Goal, error) {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodPost, "/goals", true, req, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Goal *models.Goal `json:"goal"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Goal != nil {
		return wrapped.Goal, nil
	}

	var goal models.Goal
	if err := json.Unmarshal(raw, &goal); err != nil || goal.ID == 0 {
		return nil, &apperr.ServerError{StatusCode: http.StatusOK, Message: "Invalid response from server"}
	}
	return &goal, nil
}

// UpdateGoal sends a partial goal update and returns the stored goal
func (c *Client) UpdateGoal(ctx context.Context, id int64, patch models.GoalPatch) (*models.Goal, error) {
	var goal models.Goal
	if err := c.call(ctx, http.MethodPut, goalPath(id), true, patch, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// DeleteGoal deletes a goal and returns the server's confirmation message
func (c *Client) DeleteGoal(ctx context.Context, id int64) (string, error) {
	var resp models.MessageResponse
	if err := c.call(ctx, http.MethodDelete, goalPath(id), true, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Health checks that the backend is up
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.call(ctx, http.MethodGet, "/health", false, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func goalPath(id int64) string {
	return fmt.Sprintf("/goals/%d", id)
}
