package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/benvon/careerontrack/internal/apperr"
)

// Compile-time interface checks
var (
	_ KVStore = (*MemoryStore)(nil)
	_ KVStore = (*FileStore)(nil)
	_ KVStore = (*RedisStore)(nil)
)

func exerciseStore(t *testing.T, s KVStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, KeyAuthToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing key, got %v", err)
	}

	if err := s.Set(ctx, KeyAuthToken, "token-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, KeyUser, `{"id":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, KeyAuthToken)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "token-1" {
		t.Errorf("Expected token-1, got %q", got)
	}

	if err := s.Set(ctx, KeyAuthToken, "token-2"); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	if got, _ := s.Get(ctx, KeyAuthToken); got != "token-2" {
		t.Errorf("Expected overwritten value token-2, got %q", got)
	}

	if err := s.Delete(ctx, KeyAuthToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, KeyAuthToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, KeyAuthToken); err != nil {
		t.Errorf("Deleting an absent key should succeed, got %v", err)
	}

	if got, _ := s.Get(ctx, KeyUser); got != `{"id":1}` {
		t.Errorf("Unrelated key changed: %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	if err := NewFileStore(path).Set(ctx, KeyThemeMode, "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened := NewFileStore(path)
	got, err := reopened.Get(ctx, KeyThemeMode)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != "dark" {
		t.Errorf("Expected dark, got %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected state file mode 0600, got %o", perm)
	}
}

func TestFileStore_CorruptFileIsPersistenceError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := NewFileStore(path).Get(context.Background(), KeyAuthToken)
	if !apperr.IsPersistence(err) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMemoryStore().Set(ctx, KeyUser, "x"); !apperr.IsPersistence(err) {
		t.Errorf("Expected PersistenceError for cancelled context, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	redisURL := os.Getenv("CAREERONTRACK_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("Requires Redis - set CAREERONTRACK_TEST_REDIS_URL to run")
	}

	s, err := NewRedisStore(redisURL, "careerontrack:test:"+t.Name()+":")
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}
