package session

import (
	"errors"
	"maps"

	"github.com/benvon/careerontrack/internal/models"
)

// Status is the authentication state of a session
type Status string

const (
	// StatusUninitialized is the state before Initialize runs
	StatusUninitialized Status = "uninitialized"
	// StatusLoading is the state while Initialize reads the store
	StatusLoading Status = "loading"
	// StatusAuthenticated means both a token and a user are held
	StatusAuthenticated Status = "authenticated"
	// StatusAnonymous means no one is logged in
	StatusAnonymous Status = "anonymous"
)

// ThemeMode is the persisted appearance preference
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Valid reports whether m is a known theme mode
func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

var (
	// ErrNotReady is returned when an operation gives up waiting for Initialize
	ErrNotReady = errors.New("session not initialized")
	// ErrAlreadyAuthenticated is returned by Login/Register while a session is active
	ErrAlreadyAuthenticated = errors.New("already logged in")
	// ErrNotAuthenticated is returned by operations that need an active session
	ErrNotAuthenticated = errors.New("not logged in")
)

// Snapshot is an immutable copy of the session state handed to readers and observers
type Snapshot struct {
	Status    Status
	Token     string
	User      *models.User
	ThemeMode ThemeMode
}

// Authenticated reports whether the snapshot holds an active session
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Ready reports whether initialization has finished
func (s Snapshot) Ready() bool {
	return s.Status == StatusAuthenticated || s.Status == StatusAnonymous
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = maps.Clone(u.Extra)
	}
	return &c
}
