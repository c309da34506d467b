// Package session owns the user principal's authentication state: one
// Manager per running client, initialized synchronously from the credential
// store and updated by login/logout/link operations.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/modubooking/go-booking-client/api"
	"github.com/modubooking/go-booking-client/credentials"
)

// Status is the session state published to the rest of the client.
type Status struct {
	Authenticated bool
	Loading       bool
}

// AuthAPI is the slice of the backend client the Manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (api.TokenPair, error)
	Logout(ctx context.Context) error
	OAuthLink(ctx context.Context, provider, code, state string) error
}

// Manager derives and maintains the user session. Initial state comes from
// token presence alone; a stale token is discovered lazily when the backend
// rejects the first call that carries it.
type Manager struct {
	store  credentials.Store
	api    AuthAPI
	logger zerolog.Logger

	mu     sync.RWMutex
	status Status
	subs   map[int]func(Status)
	nextID int
}

// NewManager creates the Manager and reads the initial authentication state
// from the store. No network round-trip is involved.
func NewManager(store credentials.Store, authAPI AuthAPI, logger zerolog.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[session.NewManager] store is required")
	}
	if authAPI == nil {
		return nil, errors.New("[session.NewManager] api is required")
	}

	return &Manager{
		store:  store,
		api:    authAPI,
		logger: logger,
		status: Status{Authenticated: store.IsAuthenticated()},
		subs:   make(map[int]func(Status)),
	}, nil
}

// Status returns the current session state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// IsAuthenticated reports whether the user principal holds a credential.
func (m *Manager) IsAuthenticated() bool {
	return m.Status().Authenticated
}

// Subscribe registers fn to be called on every status change. The returned
// function unsubscribes.
func (m *Manager) Subscribe(fn func(Status)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Login authenticates with email and password. On success the credential
// store is written before the status flips. On failure the error propagates
// unchanged and session state is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.setLoading(true)
	defer m.setLoading(false)

	pair, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	m.adopt(pair)
	return nil
}

// AdoptTokens installs an already-issued token pair as the user session.
// This is the login-completion path of the external-identity flow, where the
// backend exchanged the authorization code.
func (m *Manager) AdoptTokens(pair api.TokenPair) {
	m.adopt(pair)
}

func (m *Manager) adopt(pair api.TokenPair) {
	if err := m.store.SetAccess(pair.AccessToken); err != nil {
		m.logger.Warn().Err(err).Msg("persist access token")
	}
	if pair.RefreshToken != "" {
		if err := m.store.SetRefresh(pair.RefreshToken); err != nil {
			m.logger.Warn().Err(err).Msg("persist refresh token")
		}
	}
	m.setAuthenticated(true)
}

// Logout ends the session. The remote call is best-effort: whatever its
// outcome, the local credential store is cleared and the status flips to
// unauthenticated. The user can always exit the authenticated state locally.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}
	if err := m.store.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("clear credential store")
	}
	m.setAuthenticated(false)
}

// LinkExternalIdentity associates the external identity with the current
// account. Linking never mutates the credential store or the session status.
func (m *Manager) LinkExternalIdentity(ctx context.Context, provider, code, state string) error {
	return m.api.OAuthLink(ctx, provider, code, state)
}

func (m *Manager) setAuthenticated(v bool) {
	m.mu.Lock()
	m.status.Authenticated = v
	status := m.status
	subs := subscribers(m.subs)
	m.mu.Unlock()
	notify(subs, status)
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.status.Loading = v
	status := m.status
	subs := subscribers(m.subs)
	m.mu.Unlock()
	notify(subs, status)
}

func subscribers(m map[int]func(Status)) []func(Status) {
	out := make([]func(Status), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Status), status Status) {
	for _, fn := range subs {
		fn(status)
	}
}
