package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork is the sentinel matched by every NetworkError
	ErrNetwork = errors.New("network error")
	// ErrAuthentication is the sentinel matched by every AuthenticationError
	ErrAuthentication = errors.New("authentication failed")
)

// ValidationError is a client-side rejection raised before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthenticationError is returned for 401 responses and rejected credentials
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return ErrAuthentication.Error()
	}
	return e.Message
}

// Is lets errors.Is(err, ErrAuthentication) match
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// NetworkError is returned when a request could not reach the server or timed out
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNetwork.Error(), e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNetwork) match
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// ServerError is a non-2xx response carrying a server-supplied message
type ServerError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
}

// PersistenceError wraps a local key-value store failure
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAuthentication reports whether err is an AuthenticationError
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsNetwork reports whether err is a NetworkError
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsServer reports whether err is a ServerError
func IsServer(err error) bool {
	var s *ServerError
	return errors.As(err, &s)
}

// IsPersistence reports whether err is a PersistenceError
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}

// Message returns the best human-readable message carried by err,
// or fallback when the error carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var v *ValidationError
	if errors.As(err, &v) && strings.TrimSpace(v.Message) != "" {
		return v.Message
	}
	var a *AuthenticationError
	if errors.As(err, &a) && strings.TrimSpace(a.Message) != "" {
		return a.Message
	}
	var s *ServerError
	if errors.As(err, &s) && strings.TrimSpace(s.Message) != "" {
		return s.Message
	}
	return fallback
}
