package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/client"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/benvon/careerontrack/internal/store"
	"github.com/benvon/careerontrack/internal/validation"
	"go.uber.org/zap"
)

// expiryCleanupTimeout bounds the store cleanup after the server rejects a token
const expiryCleanupTimeout = 5 * time.Second

// API is the subset of the API client the session manager needs
type API interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*client.AuthResponse, error)
	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*models.User, error)
	SetToken(token string)
	SetUnauthorizedHandler(fn func(token string))
}

// Manager owns the authentication state machine:
//
//	Uninitialized -> Loading -> Authenticated | Anonymous
//	Anonymous -> Authenticated (login, register)
//	Authenticated -> Anonymous (logout, rejected token)
//
// Operations issued before Initialize finishes wait for it. Mutating
// operations run one at a time.
type Manager struct {
	api    API
	store  store.KVStore
	logger *zap.Logger

	// opMu serializes mutating operations end to end, network calls included
	opMu sync.Mutex
	// persistMu orders writes of the token and user keys against expiry cleanup
	persistMu sync.Mutex

	ready       chan struct{}
	initialized bool

	mu     sync.RWMutex
	status Status
	token  string
	user   *models.User
	theme  ThemeMode

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewManager creates a manager in the Uninitialized state and registers it as
// the API client's handler for rejected tokens.
func NewManager(api API, kv store.KVStore, logger *zap.Logger) *Manager {
	m := &Manager{
		api:    api,
		store:  kv,
		logger: logpkg.OrNop(logger),
		ready:  make(chan struct{}),
		status: StatusUninitialized,
		theme:  ThemeSystem,
		subs:   make(map[int]func(Snapshot)),
	}
	api.SetUnauthorizedHandler(m.handleUnauthorized)
	return m
}

// Snapshot returns the current state
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Status:    m.status,
		Token:     m.token,
		User:      cloneUser(m.user),
		ThemeMode: m.theme,
	}
}

// Subscribe registers fn to receive every state change. The returned function
// unregisters it. fn runs synchronously inside the operation that changed the
// state and must not call back into the manager's mutating methods.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

func (m *Manager) publish(s Snapshot) {
	m.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// setState applies mutate under the state lock and publishes the result
func (m *Manager) setState(mutate func()) Snapshot {
	m.mu.Lock()
	mutate()
	s := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(s)
	return s
}

// Ready returns a channel closed once Initialize has finished
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) waitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

// Initialize loads the saved session from the store. It runs once; later calls
// return the current state. Any read failure or malformed value leaves the
// session Anonymous.
func (m *Manager) Initialize(ctx context.Context) Snapshot {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.initialized {
		return m.Snapshot()
	}

	m.setState(func() { m.status = StatusLoading })

	token, user, err := m.loadCredentials(ctx)
	if err != nil {
		m.logger.Info("session_restore_skipped", zap.String("reason", logpkg.SanitizeError(err)))
	}
	theme := m.loadTheme(ctx)

	if token != "" && user != nil {
		m.api.SetToken(token)
	}

	s := m.setState(func() {
		m.theme = theme
		if token != "" && user != nil {
			m.token = token
			m.user = user
			m.status = StatusAuthenticated
		} else {
			m.token = ""
			m.user = nil
			m.status = StatusAnonymous
		}
	})

	m.initialized = true
	close(m.ready)

	m.logger.Debug("session_initialized", zap.String("status", string(s.Status)))
	return s
}

func (m *Manager) loadCredentials(ctx context.Context) (string, *models.User, error) {
	token, err := m.store.Get(ctx, store.KeyAuthToken)
	if err != nil {
		return "", nil, fmt.Errorf("read token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", nil, errors.New("stored token is empty")
	}

	raw, err := m.store.Get(ctx, store.KeyUser)
	if err != nil {
		return "", nil, fmt.Errorf("read user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return "", nil, fmt.Errorf("stored user is malformed: %w", err)
	}
	if user.ID <= 0 {
		return "", nil, errors.New("stored user has no id")
	}
	return token, &user, nil
}

func (m *Manager) loadTheme(ctx context.Context) ThemeMode {
	saved, err := m.store.Get(ctx, store.KeyThemeMode)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("theme_load_failed", zap.String("error", logpkg.SanitizeError(err)))
		}
		return ThemeSystem
	}
	mode := ThemeMode(saved)
	if !mode.Valid() {
		return ThemeSystem
	}
	return mode
}

// Login authenticates with email and password. The email is trimmed and
// lowercased before validation. On success the token and user are persisted
// before the session becomes Authenticated; a persistence failure is logged
// and the session stays authenticated for this process only.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	return m.authenticate(ctx, "login", func() (*client.AuthResponse, error) {
		return m.api.Login(ctx, email, password)
	})
}

// Register creates an account and logs into it
func (m *Manager) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	return m.authenticate(ctx, "register", func() (*client.AuthResponse, error) {
		return m.api.Register(ctx, email, password, name)
	})
}

func (m *Manager) authenticate(ctx context.Context, op string, call func() (*client.AuthResponse, error)) (*models.User, error) {
	if err := m.waitReady(ctx); err != nil {
		return nil, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.Snapshot().Authenticated() {
		return nil, ErrAlreadyAuthenticated
	}

	resp, err := call()
	if err != nil {
		m.logger.Info(op+"_failed", zap.String("error", logpkg.SanitizeError(err)))
		return nil, err
	}

	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if err := m.persistCredentials(ctx, resp.Token, resp.User); err != nil {
		m.logger.Warn("session_persist_failed",
			zap.String("op", op),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}

	m.api.SetToken(resp.Token)
	s := m.setState(func() {
		m.token = resp.Token
		m.user = cloneUser(resp.User)
		m.status = StatusAuthenticated
	})

	m.logger.Info(op+"_succeeded", zap.Int64("user_id", resp.User.ID))
	return s.User, nil
}

func (m *Manager) persistCredentials(ctx context.Context, token string, user *models.User) error {
	var errs []error
	if err := m.store.Set(ctx, store.KeyAuthToken, token); err != nil {
		errs = append(errs, err)
	}
	if err := m.persistUser(ctx, user); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (m *Manager) persistUser(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return &apperr.PersistenceError{Op: "encode", Key: store.KeyUser, Err: err}
	}
	return m.store.Set(ctx, store.KeyUser, string(raw))
}

// Logout deletes the saved credentials and returns the session to Anonymous.
// It is safe to call while already anonymous; stale keys are still removed.
// The in-memory session is cleared even when the store fails; the store error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.waitReady(ctx); err != nil {
		return err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.persistMu.Lock()
	err := m.clearCredentials(ctx)
	m.api.SetToken("")
	m.setState(func() {
		m.token = ""
		m.user = nil
		m.status = StatusAnonymous
	})
	m.persistMu.Unlock()

	if err != nil {
		m.logger.Warn("logout_cleanup_failed", zap.String("error", logpkg.SanitizeError(err)))
		return err
	}
	m.logger.Info("logout_succeeded")
	return nil
}

func (m *Manager) clearCredentials(ctx context.Context) error {
	return errors.Join(
		m.store.Delete(ctx, store.KeyAuthToken),
		m.store.Delete(ctx, store.KeyUser),
	)
}

// UpdateUser shallow-merges fields into the current user and re-persists it.
// The token is untouched and the status does not change.
func (m *Manager) UpdateUser(ctx context.Context, fields map[string]any) (*models.User, error) {
	if err := m.waitReady(ctx); err != nil {
		return nil, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	return m.updateUserLocked(ctx, fields)
}

func (m *Manager) updateUserLocked(ctx context.Context, fields map[string]any) (*models.User, error) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	current := m.Snapshot()
	if !current.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	merged, err := current.User.Merge(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to merge user fields: %w", err)
	}

	if err := m.persistUser(ctx, &merged); err != nil {
		m.logger.Warn("user_persist_failed", zap.String("error", logpkg.SanitizeError(err)))
	}

	s := m.setState(func() {
		m.user = &merged
	})
	return s.User, nil
}

// RefreshProfile fetches the profile from the server and merges it into the cached user
func (m *Manager) RefreshProfile(ctx context.Context) (*models.User, error) {
	if err := m.waitReady(ctx); err != nil {
		return nil, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if !m.Snapshot().Authenticated() {
		return nil, ErrNotAuthenticated
	}

	profile, err := m.api.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	return m.mergeServerUser(ctx, profile)
}

// SaveProfile sends a profile edit to the server and caches the stored result
func (m *Manager) SaveProfile(ctx context.Context, fields map[string]any) (*models.User, error) {
	fields, err := normalizeProfileFields(fields)
	if err != nil {
		return nil, err
	}
	if err := m.waitReady(ctx); err != nil {
		return nil, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if !m.Snapshot().Authenticated() {
		return nil, ErrNotAuthenticated
	}

	updated, err := m.api.UpdateProfile(ctx, fields)
	if err != nil {
		return nil, err
	}
	return m.mergeServerUser(ctx, updated)
}

func (m *Manager) mergeServerUser(ctx context.Context, u *models.User) (*models.User, error) {
	fields, err := u.Fields()
	if err != nil {
		return nil, fmt.Errorf("failed to read profile fields: %w", err)
	}
	return m.updateUserLocked(ctx, fields)
}

// normalizeProfileFields validates a profile edit and returns a copy with
// name trimmed and email normalized
func normalizeProfileFields(fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, apperr.NewValidationError("", "No fields to update")
	}
	out := maps.Clone(fields)
	if v, ok := out["name"]; ok {
		name, isString := v.(string)
		if !isString {
			return nil, apperr.NewValidationError("name", "Name must be text")
		}
		if err := validation.ValidateName(name); err != nil {
			return nil, err
		}
		out["name"] = strings.TrimSpace(name)
	}
	if v, ok := out["email"]; ok {
		email, isString := v.(string)
		if !isString {
			return nil, apperr.NewValidationError("email", "Email must be text")
		}
		email = validation.NormalizeEmail(email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, err
		}
		out["email"] = email
	}
	return out, nil
}

// ThemeMode returns the current appearance preference
func (m *Manager) ThemeMode() ThemeMode {
	return m.Snapshot().ThemeMode
}

// SetThemeMode persists and applies a theme preference. If the store write
// fails the preference is left unchanged.
func (m *Manager) SetThemeMode(ctx context.Context, mode ThemeMode) error {
	if !mode.Valid() {
		return apperr.NewValidationError("themeMode", fmt.Sprintf("invalid theme mode %q (must be 'light', 'dark', or 'system')", mode))
	}
	if err := m.waitReady(ctx); err != nil {
		return err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.store.Set(ctx, store.KeyThemeMode, string(mode)); err != nil {
		m.logger.Warn("theme_save_failed", zap.String("error", logpkg.SanitizeError(err)))
		return err
	}
	m.setState(func() { m.theme = mode })
	return nil
}

// handleUnauthorized ends the session when the server rejects the token it
// holds. A rejection of an older token is ignored.
func (m *Manager) handleUnauthorized(token string) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	if m.status != StatusAuthenticated || m.token != token {
		m.mu.Unlock()
		return
	}
	m.token = ""
	m.user = nil
	m.status = StatusAnonymous
	s := m.snapshotLocked()
	m.mu.Unlock()

	m.api.SetToken("")

	ctx, cancel := context.WithTimeout(context.Background(), expiryCleanupTimeout)
	defer cancel()
	if err := m.clearCredentials(ctx); err != nil {
		m.logger.Warn("expired_session_cleanup_failed", zap.String("error", logpkg.SanitizeError(err)))
	}

	m.logger.Info("session_expired")
	m.publish(s)
}
