package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedantshetti/infyair-frontend/internal/client/api"
	"github.com/vedantshetti/infyair-frontend/internal/client/models"
	"github.com/vedantshetti/infyair-frontend/internal/logging"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// fakeAuth scripts the backend's auth surface. When gate is set, Login
// signals entered and then blocks until the gate closes, which lets tests
// interleave a concurrent logout with an in-flight login.
type fakeAuth struct {
	mu            sync.Mutex
	loginResult   *api.LoginResult
	loginErr      error
	validateOK    bool
	validateErr   error
	validateCalls int
	token         string

	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) Validate(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls++
	return f.validateOK, f.validateErr
}

func (f *fakeAuth) SetAuthToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAuth) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAuth) validations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateCalls
}

// fakeStore keeps the credential in memory. Like fakeAuth, Load can be
// gated: it reads the stored credential, signals entered, then blocks until
// the gate closes before returning.
type fakeStore struct {
	mu      sync.Mutex
	cred    *models.StoredCredential
	loadErr error
	saveErr error

	loadGate    chan struct{}
	loadEntered chan struct{}
}

func (f *fakeStore) Save(ctx context.Context, cred *models.StoredCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	c := *cred
	f.cred = &c
	return nil
}

func (f *fakeStore) Load(ctx context.Context) (*models.StoredCredential, error) {
	f.mu.Lock()
	var cred *models.StoredCredential
	if f.cred != nil {
		c := *f.cred
		cred = &c
	}
	loadErr := f.loadErr
	f.mu.Unlock()

	if f.loadGate != nil {
		f.loadEntered <- struct{}{}
		<-f.loadGate
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return cred, nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = nil
	return nil
}

func (f *fakeStore) get() *models.StoredCredential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cred
}

func newTestManager(auth *fakeAuth, store *fakeStore, validateOnStart bool) *Manager {
	return NewManager(auth, store, nopLogger{}, validateOnStart)
}

func (m *Manager) activeTimer() *time.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer
}

func TestInitialize_EmptyStore(t *testing.T) {
	auth := &fakeAuth{}
	store := &fakeStore{}
	m := newTestManager(auth, store, true)

	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Nil(t, m.activeTimer())
	assert.Equal(t, 0, auth.validations())
}

func TestInitialize_RestoresValidSession(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	token := mintToken(t, "admin", "admin", exp)
	auth := &fakeAuth{}
	store := &fakeStore{cred: &models.StoredCredential{
		Token: token,
		User:  models.User{Username: "admin", Role: models.RoleAdmin},
	}}
	m := newTestManager(auth, store, false)

	require.NoError(t, m.Initialize(context.Background()))

	s := m.Snapshot()
	require.Equal(t, StatusAuthenticated, s.Status)
	require.NotNil(t, s.User)
	assert.Equal(t, "admin", s.User.Username)
	assert.True(t, m.IsAdmin())
	assert.Equal(t, token, auth.currentToken())
	assert.NotNil(t, m.activeTimer())
	assert.InDelta(t, time.Hour, m.TimeRemaining(), float64(10*time.Second))
}

func TestInitialize_ExpiredCredentialClearsStorage(t *testing.T) {
	token := mintToken(t, "viewer", "viewer", time.Now().Add(-time.Minute))
	auth := &fakeAuth{}
	store := &fakeStore{cred: &models.StoredCredential{
		Token: token,
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, store, true)

	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Nil(t, store.get())
	assert.Equal(t, 0, auth.validations())
}

func TestInitialize_UndecodableCredentialClearsStorage(t *testing.T) {
	auth := &fakeAuth{}
	store := &fakeStore{cred: &models.StoredCredential{
		Token: "not-a-token",
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, store, true)

	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Nil(t, store.get())
}

func TestInitialize_StorageReadFailure(t *testing.T) {
	auth := &fakeAuth{}
	store := &fakeStore{loadErr: errors.New("disk on fire")}
	m := newTestManager(auth, store, true)

	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
}

func TestInitialize_BackgroundValidationRejected(t *testing.T) {
	token := mintToken(t, "viewer", "viewer", time.Now().Add(time.Hour))
	auth := &fakeAuth{validateOK: false}
	store := &fakeStore{cred: &models.StoredCredential{
		Token: token,
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, store, true)

	require.NoError(t, m.Initialize(context.Background()))

	require.Eventually(t, func() bool {
		return m.Snapshot().Status == StatusUnauthenticated && store.get() == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "", auth.currentToken())
}

func TestInitialize_BackgroundValidationUnavailable(t *testing.T) {
	token := mintToken(t, "viewer", "viewer", time.Now().Add(time.Hour))
	auth := &fakeAuth{validateErr: errors.New("connection refused")}
	store := &fakeStore{cred: &models.StoredCredential{
		Token: token,
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, store, true)

	require.NoError(t, m.Initialize(context.Background()))

	require.Eventually(t, func() bool { return auth.validations() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, m.IsAuthenticated())
	assert.NotNil(t, store.get())
}

func TestLogin_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	token := mintToken(t, "viewer", "viewer", exp)
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: token,
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	store := &fakeStore{}
	m := newTestManager(auth, store, false)

	require.NoError(t, m.Login(context.Background(), "viewer", "viewer123"))

	assert.True(t, m.IsAuthenticated())
	assert.False(t, m.IsAdmin())
	require.NotNil(t, store.get())
	assert.Equal(t, token, store.get().Token)
	assert.Equal(t, token, auth.currentToken())
	assert.NotNil(t, m.activeTimer())
	assert.InDelta(t, time.Hour, m.TimeRemaining(), float64(10*time.Second))
}

func TestLogin_AdminRole(t *testing.T) {
	token := mintToken(t, "admin", "admin", time.Now().Add(time.Hour))
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: token,
		User:  models.User{Username: "admin", Role: models.RoleAdmin},
	}}
	m := newTestManager(auth, &fakeStore{}, false)

	require.NoError(t, m.Login(context.Background(), "admin", "admin123"))
	assert.True(t, m.IsAdmin())
}

func TestLogin_Rejected(t *testing.T) {
	auth := &fakeAuth{loginErr: fmt.Errorf("%w: invalid credentials", api.ErrAuthRejected)}
	store := &fakeStore{}
	m := newTestManager(auth, store, false)

	err := m.Login(context.Background(), "admin", "wrong")

	require.ErrorIs(t, err, api.ErrAuthRejected)
	assert.NotErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Nil(t, store.get())
}

func TestLogin_TransportFailure(t *testing.T) {
	auth := &fakeAuth{loginErr: fmt.Errorf("%w: connection refused", api.ErrUnavailable)}
	m := newTestManager(auth, &fakeStore{}, false)

	err := m.Login(context.Background(), "admin", "admin123")

	require.ErrorIs(t, err, ErrLoginFailed)
	require.ErrorIs(t, err, api.ErrUnavailable)
	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
}

func TestLogin_UndecodableToken(t *testing.T) {
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: "garbage",
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, &fakeStore{}, false)

	err := m.Login(context.Background(), "viewer", "viewer123")
	require.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
}

func TestLogin_AlreadyExpiredToken(t *testing.T) {
	token := mintToken(t, "viewer", "viewer", time.Now().Add(-time.Minute))
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: token,
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	store := &fakeStore{}
	m := newTestManager(auth, store, false)

	err := m.Login(context.Background(), "viewer", "viewer123")

	require.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Nil(t, store.get())
	assert.Equal(t, "", auth.currentToken())
}

func TestLogin_ReplacesTimer(t *testing.T) {
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: mintToken(t, "viewer", "viewer", time.Now().Add(time.Hour)),
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, &fakeStore{}, false)

	require.NoError(t, m.Login(context.Background(), "viewer", "viewer123"))
	first := m.activeTimer()
	require.NotNil(t, first)

	auth.mu.Lock()
	auth.loginResult = &api.LoginResult{
		Token: mintToken(t, "admin", "admin", time.Now().Add(2*time.Hour)),
		User:  models.User{Username: "admin", Role: models.RoleAdmin},
	}
	auth.mu.Unlock()

	require.NoError(t, m.Login(context.Background(), "admin", "admin123"))
	second := m.activeTimer()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	// The first timer was stopped before re-arming, so Stop reports false.
	assert.False(t, first.Stop())
}

func TestLogin_StaleResultDiscarded(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	auth := &fakeAuth{
		loginResult: &api.LoginResult{
			Token: mintToken(t, "viewer", "viewer", time.Now().Add(time.Hour)),
			User:  models.User{Username: "viewer", Role: models.RoleViewer},
		},
		gate:    gate,
		entered: entered,
	}
	store := &fakeStore{}
	m := newTestManager(auth, store, false)

	done := make(chan error, 1)
	go func() { done <- m.Login(context.Background(), "viewer", "viewer123") }()

	// Wait for the login to be in flight, supersede it, then let it finish.
	<-entered
	require.NoError(t, m.Logout(context.Background()))
	close(gate)

	require.NoError(t, <-done)
	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Nil(t, store.get())
	assert.Equal(t, "", auth.currentToken())
}

func TestInitialize_StaleCleanupSkippedAfterLogin(t *testing.T) {
	loadGate := make(chan struct{})
	loadEntered := make(chan struct{}, 1)
	store := &fakeStore{
		// Undecodable token so Initialize will want to clear storage.
		cred: &models.StoredCredential{
			Token: "not-a-token",
			User:  models.User{Username: "viewer", Role: models.RoleViewer},
		},
		loadGate:    loadGate,
		loadEntered: loadEntered,
	}
	token := mintToken(t, "viewer", "viewer", time.Now().Add(time.Hour))
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: token,
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, store, false)

	done := make(chan error, 1)
	go func() { done <- m.Initialize(context.Background()) }()

	// A login completes while Initialize is still reading the old
	// credential; the stale cleanup must not touch the new session.
	<-loadEntered
	require.NoError(t, m.Login(context.Background(), "viewer", "viewer123"))
	close(loadGate)
	require.NoError(t, <-done)

	assert.True(t, m.IsAuthenticated())
	require.NotNil(t, store.get())
	assert.Equal(t, token, store.get().Token)
	assert.Equal(t, token, auth.currentToken())
}

func TestExpiry_NoticeAndCleanup(t *testing.T) {
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: mintToken(t, "viewer", "viewer", time.Now().Add(80*time.Millisecond)),
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	store := &fakeStore{}
	m := newTestManager(auth, store, false)

	require.NoError(t, m.Login(context.Background(), "viewer", "viewer123"))
	require.True(t, m.IsAuthenticated())

	select {
	case n := <-m.Events():
		assert.Equal(t, NoticeExpired, n)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an expiry notice")
	}

	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Equal(t, time.Duration(0), m.TimeRemaining())
	assert.Nil(t, store.get())
	assert.Equal(t, "", auth.currentToken())
}

func TestExpiry_TimerCancelledByLogout(t *testing.T) {
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: mintToken(t, "viewer", "viewer", time.Now().Add(80*time.Millisecond)),
		User:  models.User{Username: "viewer", Role: models.RoleViewer},
	}}
	m := newTestManager(auth, &fakeStore{}, false)

	require.NoError(t, m.Login(context.Background(), "viewer", "viewer123"))
	require.NoError(t, m.Logout(context.Background()))

	select {
	case n := <-m.Events():
		t.Fatalf("unexpected notice after logout: %q", n)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestLogout_Idempotent(t *testing.T) {
	auth := &fakeAuth{loginResult: &api.LoginResult{
		Token: mintToken(t, "admin", "admin", time.Now().Add(time.Hour)),
		User:  models.User{Username: "admin", Role: models.RoleAdmin},
	}}
	store := &fakeStore{}
	m := newTestManager(auth, store, false)

	require.NoError(t, m.Logout(context.Background()))
	require.NoError(t, m.Logout(context.Background()))

	require.NoError(t, m.Login(context.Background(), "admin", "admin123"))
	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, StatusUnauthenticated, m.Snapshot().Status)
	assert.Nil(t, store.get())
	assert.Equal(t, "", auth.currentToken())
	assert.Nil(t, m.activeTimer())
}

func TestTimeRemaining_Unauthenticated(t *testing.T) {
	m := newTestManager(&fakeAuth{}, &fakeStore{}, false)
	assert.Equal(t, time.Duration(0), m.TimeRemaining())
}
