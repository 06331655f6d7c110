package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vedantshetti/infyair-frontend/internal/client/api"
	"github.com/vedantshetti/infyair-frontend/internal/client/models"
	"github.com/vedantshetti/infyair-frontend/internal/client/repositories/credentials"
	"github.com/vedantshetti/infyair-frontend/internal/logging"
)

// timeNow is a test seam for the clock.
var timeNow = time.Now

// Status is the session lifecycle state.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusRestoring       Status = "restoring"
	StatusAuthenticated   Status = "authenticated"
	StatusExpired         Status = "expired"
)

// Session is a read-only snapshot of the manager's state. User and
// ExpiresAt are set iff Status is StatusAuthenticated; the token itself
// never leaves the manager.
type Session struct {
	Status    Status
	User      *models.User
	ExpiresAt time.Time
}

// Notice is a user-facing session notification delivered via Events.
type Notice string

// NoticeExpired is emitted when the expiration timer fires.
const NoticeExpired Notice = "Your session has expired. Please log in again."

// ErrLoginFailed wraps login failures whose cause should not be shown to
// the user verbatim (transport errors, garbage responses).
var ErrLoginFailed = errors.New("login failed")

const clearTimeout = 3 * time.Second

// Manager owns the authoritative session state. All mutations go through
// its operations; consumers read via Snapshot and the convenience getters.
// There is one Manager per process, injected into its consumers.
type Manager struct {
	auth            api.Authenticator
	store           credentials.Repository
	log             logging.Logger
	validateOnStart bool

	mu        sync.Mutex
	status    Status
	user      *models.User
	token     string
	expiresAt time.Time
	timer     *time.Timer

	// generation increments on every login attempt, logout and initialize.
	// Completions (login responses, timer callbacks, background validation)
	// carry the generation they started with and are discarded when stale.
	generation uint64

	events chan Notice
}

func NewManager(auth api.Authenticator, store credentials.Repository, log logging.Logger, validateOnStart bool) *Manager {
	return &Manager{
		auth:            auth,
		store:           store,
		log:             log,
		validateOnStart: validateOnStart,
		status:          StatusUnauthenticated,
		events:          make(chan Notice, 4),
	}
}

// Events delivers session notifications intended for the user, currently
// only NoticeExpired. The channel is buffered; notifications are dropped
// rather than blocking the manager.
func (m *Manager) Events() <-chan Notice {
	return m.events
}

// Initialize restores the session from local storage. Absent, undecodable
// or expired credentials all resolve to a clean unauthenticated state (with
// storage cleared); none of those conditions is surfaced as an error. When
// a session is restored and validateOnStart is set, the token is also
// re-validated against the server in the background: an explicit rejection
// forces logout, a transport failure is logged and ignored.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.status = StatusRestoring
	m.mu.Unlock()

	cred, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn(ctx, "discarding stored credential", "error", err)
		return m.clearSession(ctx, gen)
	}
	if cred == nil {
		m.mu.Lock()
		if m.generation == gen {
			m.status = StatusUnauthenticated
		}
		m.mu.Unlock()
		return nil
	}

	claims, err := DecodeToken(cred.Token)
	if err != nil {
		m.log.Warn(ctx, "discarding stored credential", "error", err)
		return m.clearSession(ctx, gen)
	}
	if !claims.ExpiresAt.After(timeNow()) {
		m.log.Info(ctx, "stored session expired", "username", cred.User.Username)
		return m.clearSession(ctx, gen)
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return nil
	}
	m.status = StatusAuthenticated
	m.user = &cred.User
	m.token = cred.Token
	m.expiresAt = claims.ExpiresAt
	m.armTimerLocked(gen)
	m.auth.SetAuthToken(cred.Token)
	m.mu.Unlock()

	m.log.Info(ctx, "session restored", "username", cred.User.Username, "role", string(cred.User.Role))

	if m.validateOnStart {
		go m.revalidate(gen)
	}
	return nil
}

// Login authenticates against the backend and, on success, persists the
// credential and re-arms the expiration timer. On rejection the returned
// error wraps api.ErrAuthRejected and carries the server's message; a
// transport failure is surfaced the same way to the caller, wrapped in
// ErrLoginFailed. State is left untouched on failure.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	result, err := m.auth.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, api.ErrAuthRejected) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	claims, err := DecodeToken(result.Token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	m.mu.Lock()
	if m.generation != gen {
		// A newer login or logout completed first; this result is stale.
		m.mu.Unlock()
		m.log.Info(ctx, "discarding stale login result", "username", username)
		return nil
	}

	cred := &models.StoredCredential{Token: result.Token, User: result.User}
	if err := m.store.Save(ctx, cred); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	m.stopTimerLocked()
	if !claims.ExpiresAt.After(timeNow()) {
		// The server handed out an already-expired token.
		m.resetLocked()
		m.finishExpireLocked(ctx)
		m.mu.Unlock()
		return fmt.Errorf("%w: token already expired", ErrLoginFailed)
	}

	m.status = StatusAuthenticated
	m.user = &result.User
	m.token = result.Token
	m.expiresAt = claims.ExpiresAt
	m.armTimerLocked(gen)
	m.auth.SetAuthToken(result.Token)
	m.mu.Unlock()

	m.log.Info(ctx, "login successful", "username", result.User.Username, "role", string(result.User.Role))
	return nil
}

// Logout cancels the expiration timer, clears storage and resets the
// session. It is idempotent: logging out an unauthenticated session only
// clears (already empty) storage.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.generation++
	m.stopTimerLocked()
	m.resetLocked()
	m.auth.SetAuthToken("")
	err := m.store.Clear(ctx)
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to clear stored credential: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Session{Status: m.status, ExpiresAt: m.expiresAt}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// IsAuthenticated reports whether a session is currently established.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusAuthenticated
}

// IsAdmin reports whether the current session belongs to an admin.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusAuthenticated && m.user != nil && m.user.Role == models.RoleAdmin
}

// TimeRemaining returns how long the current session has until expiry,
// or zero when unauthenticated.
func (m *Manager) TimeRemaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusAuthenticated {
		return 0
	}
	remaining := m.expiresAt.Sub(timeNow())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// armTimerLocked schedules the one-shot expiration callback. The caller
// holds the lock, has already stopped any previous timer, and guarantees
// expiresAt is in the future.
func (m *Manager) armTimerLocked(gen uint64) {
	delay := m.expiresAt.Sub(timeNow())
	m.timer = time.AfterFunc(delay, func() { m.expire(gen) })
}

// expire is the timer callback. A stale generation means a newer login or
// logout superseded this timer between firing and locking; it does nothing.
func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if m.generation != gen || m.status != StatusAuthenticated {
		m.mu.Unlock()
		return
	}
	username := ""
	if m.user != nil {
		username = m.user.Username
	}
	ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
	defer cancel()

	m.status = StatusExpired
	m.timer = nil
	m.resetLocked()
	m.finishExpireLocked(ctx)
	m.mu.Unlock()

	m.log.Info(ctx, "session expired", "username", username)
	m.notify(NoticeExpired)
}

// revalidate asks the server whether the restored token is still accepted.
// Only an explicit rejection terminates the session; an unreachable server
// is not a reason to throw away a locally valid session.
func (m *Manager) revalidate(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
	defer cancel()

	ok, err := m.auth.Validate(ctx)
	if err != nil {
		m.log.Warn(ctx, "session validation unavailable", "error", err)
		return
	}
	if ok {
		return
	}

	m.log.Info(ctx, "server rejected restored session")
	m.mu.Lock()
	if m.generation != gen || m.status != StatusAuthenticated {
		m.mu.Unlock()
		return
	}
	m.stopTimerLocked()
	m.resetLocked()
	m.finishExpireLocked(ctx)
	m.mu.Unlock()
}

// clearSession wipes storage and resets to unauthenticated. Used for the
// "cannot trust this session" paths during initialization. A stale
// generation means a newer login or logout already owns the state and the
// storage; the whole cleanup is skipped, side effects included.
func (m *Manager) clearSession(ctx context.Context, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		return nil
	}
	m.stopTimerLocked()
	m.resetLocked()
	m.finishExpireLocked(ctx)
	return nil
}

// finishExpireLocked performs the side effects shared by every terminate
// path: dropping the API token and clearing storage. The caller holds the
// lock so a concurrent login cannot interleave between the state reset and
// these side effects and then have its credential wiped.
func (m *Manager) finishExpireLocked(ctx context.Context) {
	m.auth.SetAuthToken("")
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn(ctx, "failed to clear stored credential", "error", err)
	}
}

func (m *Manager) resetLocked() {
	m.status = StatusUnauthenticated
	m.user = nil
	m.token = ""
	m.expiresAt = time.Time{}
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) notify(n Notice) {
	select {
	case m.events <- n:
	default:
	}
}
