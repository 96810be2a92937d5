// Package session owns the client's authentication state.
//
// A [Manager] holds at most one bearer token in a [tokenstore.Store] and exposes the
// derived [State] to views. It never reports authenticated while no token is persisted.
package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/services"
	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/desertthunder/vidgen/internal/tokenstore"
	"golang.org/x/oauth2"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// Authenticator is the subset of [services.AuthService] the manager needs.
type Authenticator interface {
	Verify(ctx context.Context, token string) (*services.VerifyResponse, error)
	Token(ctx context.Context, creds models.Credentials) (*oauth2.Token, error)
	Register(ctx context.Context, creds models.Credentials) error
}

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	User          *models.User
	Loading       bool
}

// Manager coordinates login, registration, logout and startup verification.
type Manager struct {
	auth   Authenticator
	store  tokenstore.Store
	logger *log.Logger

	mu    sync.Mutex
	state State
	// epoch changes on every login and logout so a slow startup verification cannot
	// erase a token written after it started.
	epoch uint64
	subs  map[int]func(State)
	next  int
}

// New creates a [Manager]. The session is loading until [Manager.Initialize] resolves.
func New(auth Authenticator, store tokenstore.Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		auth:   auth,
		store:  store,
		logger: shared.WithLogger(logger, "component", "session"),
		state:  State{Loading: true},
		subs:   make(map[int]func(State)),
	}
}

// Initialize verifies any persisted token. A token the backend does not accept is erased.
// A login or logout that lands while Initialize runs takes precedence over its outcome.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	token, err := m.store.Get()
	if err != nil {
		if !errors.Is(err, shared.ErrNoToken) {
			m.logger.Warn("failed to read token", "error", err)
		}
		m.settle(epoch, func(s *State) {
			s.Authenticated = false
		})
		return
	}

	if _, err := m.auth.Verify(ctx, token); err != nil {
		m.settle(epoch, func(s *State) {
			m.logger.Info("stored token rejected", "error", err)
			if err := m.store.Delete(); err != nil {
				m.logger.Error("failed to erase token", "error", err)
			}
			s.Authenticated = false
			s.User = nil
		})
		return
	}
	m.settle(epoch, func(s *State) {
		s.Authenticated = true
	})
}

// settle clears Loading and applies fn only if no login or logout happened since epoch.
func (m *Manager) settle(epoch uint64, fn func(*State)) {
	m.mu.Lock()
	if m.epoch == epoch {
		fn(&m.state)
	} else {
		m.logger.Debug("session changed during verification")
	}
	m.state.Loading = false
	snapshot := m.snapshot()
	m.mu.Unlock()

	m.publish(snapshot)
}

// Login exchanges credentials for a token and persists it.
func (m *Manager) Login(ctx context.Context, username, password string) models.Result {
	creds := models.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return models.Fail(err.Error())
	}

	tok, err := m.auth.Token(ctx, creds)
	if err != nil {
		m.logger.Warn("login failed", "username", username, "error", err)
		return models.Fail(services.DetailMessage(err, loginFailed))
	}
	if tok.AccessToken == "" {
		return models.Fail(loginFailed)
	}

	m.mu.Lock()
	if err := m.store.Set(tok.AccessToken); err != nil {
		m.mu.Unlock()
		m.logger.Error("failed to persist token", "error", err)
		return models.Fail(loginFailed)
	}
	m.epoch++
	m.state.Authenticated = true
	m.state.User = &models.User{Username: username}
	snapshot := m.snapshot()
	m.mu.Unlock()

	m.logger.Info("logged in", "username", username)
	m.publish(snapshot)
	return models.Ok()
}

// Register creates an account and then logs in with the same credentials.
func (m *Manager) Register(ctx context.Context, username, password string) models.Result {
	creds := models.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return models.Fail(err.Error())
	}

	if err := m.auth.Register(ctx, creds); err != nil {
		m.logger.Warn("registration failed", "username", username, "error", err)
		return models.Fail(services.DetailMessage(err, registrationFailed))
	}

	m.logger.Info("registered", "username", username)
	return m.Login(ctx, username, password)
}

// Logout erases the token. It never fails; storage errors are logged.
func (m *Manager) Logout() {
	m.mu.Lock()
	if err := m.store.Delete(); err != nil {
		m.logger.Error("failed to erase token", "error", err)
	}
	m.epoch++
	m.state.Authenticated = false
	m.state.User = nil
	snapshot := m.snapshot()
	m.mu.Unlock()

	m.logger.Info("logged out")
	m.publish(snapshot)
}

// Token implements [oauth2.TokenSource] over the persisted token.
func (m *Manager) Token() (*oauth2.Token, error) {
	token, err := m.store.Get()
	if err != nil {
		if errors.Is(err, shared.ErrNoToken) {
			return nil, shared.ErrNotAuthenticated
		}
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// State returns a copy of the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Subscribe registers fn to receive every state change. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// snapshot must be called with mu held.
func (m *Manager) snapshot() State {
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (m *Manager) publish(s State) {
	m.mu.Lock()
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
