package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/careerontrack/internal/models"
)

func TestMemoryUserRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	alice := &models.User{Email: "alice@example.com", Name: "Alice"}
	if err := repo.Create(ctx, alice); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if alice.ID == 0 || alice.CreatedAt == nil {
		t.Fatalf("Create() did not fill id and timestamps: %+v", alice)
	}

	if err := repo.Create(ctx, &models.User{Email: "alice@example.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Create() error = %v, want ErrEmailTaken", err)
	}

	bob := &models.User{Email: "bob@example.com", Name: "Bob"}
	if err := repo.Create(ctx, bob); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	bob.Email = "alice@example.com"
	if err := repo.Update(ctx, bob); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Update() to a taken email error = %v, want ErrEmailTaken", err)
	}

	alice.Name = "Alice Smith"
	if err := repo.Update(ctx, alice); err != nil {
		t.Fatalf("Update() own email error = %v", err)
	}
	got, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil || got.Name != "Alice Smith" {
		t.Errorf("GetByEmail() = %+v, %v", got, err)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryGoalRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryGoalRepository()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := &models.Goal{UserID: 1, Title: "First", Status: models.GoalStatusNotStarted}
	second := &models.Goal{UserID: 1, Title: "Second", Status: models.GoalStatusNotStarted}
	foreign := &models.Goal{UserID: 2, Title: "Theirs", Status: models.GoalStatusNotStarted}
	for _, g := range []*models.Goal{first, second, foreign} {
		if err := repo.Create(ctx, g); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	goals, err := repo.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(goals) != 2 || goals[0].ID != second.ID || goals[1].ID != first.ID {
		t.Fatalf("ListByUser() = %+v, want newest first for user 1 only", goals)
	}

	if _, err := repo.GetForUser(ctx, foreign.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetForUser(foreign) error = %v, want ErrNotFound", err)
	}

	first.Progress = 40
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !first.UpdatedAt.After(first.CreatedAt) {
		t.Errorf("Update() should advance UpdatedAt")
	}

	stolen := *foreign
	stolen.UserID = 1
	if err := repo.Update(ctx, &stolen); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(foreign) error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, foreign.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(foreign) error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, first.ID, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, first.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
