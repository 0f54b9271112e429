package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/careerontrack/internal/database"
	"github.com/benvon/careerontrack/internal/models"
)

func TestUsersHandler_GetProfile(t *testing.T) {
	t.Parallel()

	users := database.NewMemoryUserRepository()
	u := createUser(t, users, "me@example.com", "Me")
	h := NewUsersHandler(users, nil)

	w := httptest.NewRecorder()
	h.GetProfile(w, newJSONRequest(t, "GET", "/api/users/profile", nil, u))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var got models.User
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode user: %v", err)
	}
	if got.ID != u.ID || got.Email != u.Email || got.Name != u.Name {
		t.Errorf("Got %+v, want %+v", got, u)
	}

	w = httptest.NewRecorder()
	h.GetProfile(w, newJSONRequest(t, "GET", "/api/users/profile", nil, nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without user, got %d", w.Code)
	}
}

func TestUsersHandler_UpdateProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantName   string
		wantEmail  string
		wantField  string
	}{
		{"rename", `{"name":"  New Name "}`, http.StatusOK, "New Name", "me@example.com", ""},
		{"change email", `{"email":" ME2@Example.com"}`, http.StatusOK, "Me", "me2@example.com", ""},
		{"both", `{"name":"Both","email":"both@example.com"}`, http.StatusOK, "Both", "both@example.com", ""},
		{"keep own email", `{"email":"me@example.com"}`, http.StatusOK, "Me", "me@example.com", ""},
		{"taken email", `{"email":"taken@example.com"}`, http.StatusConflict, "", "", ""},
		{"invalid email", `{"email":"nope"}`, http.StatusBadRequest, "", "", "email"},
		{"blank name", `{"name":"   "}`, http.StatusBadRequest, "", "", "name"},
		{"nothing to update", `{}`, http.StatusBadRequest, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := database.NewMemoryUserRepository()
			me := createUser(t, users, "me@example.com", "Me")
			createUser(t, users, "taken@example.com", "Taken")
			h := NewUsersHandler(users, nil)

			w := httptest.NewRecorder()
			h.UpdateProfile(w, newJSONRequest(t, "PUT", "/api/users/profile", tt.body, me))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if body := decodeError(t, w); body.Field != tt.wantField {
					t.Errorf("Expected field %q, got %q", tt.wantField, body.Field)
				}
				return
			}

			var got models.User
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("Failed to decode user: %v", err)
			}
			if got.Name != tt.wantName || got.Email != tt.wantEmail {
				t.Errorf("Response %s <%s>, want %s <%s>", got.Name, got.Email, tt.wantName, tt.wantEmail)
			}

			stored, err := users.GetByID(context.Background(), me.ID)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if stored.Name != tt.wantName || stored.Email != tt.wantEmail {
				t.Errorf("Stored %s <%s>, want %s <%s>", stored.Name, stored.Email, tt.wantName, tt.wantEmail)
			}
		})
	}
}
