// Package session owns the credential token and the authenticated profile.
//
// The token is the only durable state; it is kept in a storage.Store under
// TokenKey. The profile is always fetched from the backend and never
// persisted. A Manager is passed explicitly to every consumer; consumers read
// it through State and observe transitions through Subscribe.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"taskboard/internal/service"
	"taskboard/internal/storage"
)

// TokenKey is the storage key of the credential.
const TokenKey = "tm_jwt"

var (
	// ErrNotAuthenticated is returned when an authenticated call is made without a token.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrMissingToken is returned when a login response carries no access token.
	ErrMissingToken = errors.New("login failed: missing access token")

	// ErrSuperseded is returned when a logout or another login replaced the
	// session while a login was in flight.
	ErrSuperseded = errors.New("login superseded")
)

// State is a snapshot of the session.
type State struct {
	// Token is the bearer credential; empty when logged out.
	Token string
	// User is set only once Token has been validated against the backend.
	User *service.User
	// Loading is true while a login or profile fetch is in flight.
	Loading bool
	// Err is the last login/refresh failure.
	Err error
	// Resolved is false until the token has been read from storage.
	Resolved bool
}

// Authenticated reports whether a token is present. It does not wait for
// the profile.
func (s State) Authenticated() bool {
	return s.Token != ""
}

// Manager implements login, logout and refresh over an AuthService.
type Manager struct {
	auth   service.AuthService
	store  storage.Store
	logger *slog.Logger

	mu    sync.RWMutex
	state State
	// gen increases on every token transition so late results of an older
	// login or refresh are dropped.
	gen uint64

	listenMu  sync.Mutex
	listeners map[int]func(State)
	nextID    int
}

var _ oauth2.TokenSource = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates an empty, unresolved Manager.
func New(auth service.AuthService, store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		auth:      auth,
		store:     store,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetAuth replaces the AuthService. It exists because the backend client
// needs the Manager as its token source, so the two are built in two steps.
func (m *Manager) SetAuth(auth service.AuthService) {
	m.mu.Lock()
	m.auth = auth
	m.mu.Unlock()
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a token is present.
func (m *Manager) IsAuthenticated() bool {
	return m.State().Authenticated()
}

// Token implements oauth2.TokenSource for resource clients.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.RLock()
	tok := m.state.Token
	m.mu.RUnlock()
	if tok == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// Subscribe registers fn to receive every state transition. The returned
// function unregisters it.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.listenMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenMu.Unlock()

	return func() {
		m.listenMu.Lock()
		delete(m.listeners, id)
		m.listenMu.Unlock()
	}
}

// Restore seeds the token from storage without contacting the backend.
func (m *Manager) Restore() {
	tok, ok, err := m.store.Get(TokenKey)
	if err != nil {
		m.logger.Debug("read stored token", "error", err)
	}
	m.update(func(s *State) {
		s.Resolved = true
		if ok && tok != "" && s.Token == "" {
			s.Token = tok
			m.gen++
		}
	})
}

// Start restores the stored token and validates it with Refresh.
func (m *Manager) Start(ctx context.Context) error {
	m.Restore()
	return m.Refresh(ctx)
}

// Login authenticates, validates the new token by fetching the profile and
// only then commits the token. On any failure the session is left cleared.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	var gen uint64
	m.update(func(s *State) {
		m.gen++
		gen = m.gen
		*s = State{Resolved: true, Loading: true}
	})
	m.removeStored()

	auth := m.authService()
	tok, err := auth.Login(ctx, email, password)
	if err == nil && tok.AccessToken == "" {
		err = ErrMissingToken
	}
	var user service.User
	if err == nil {
		user, err = auth.Me(ctx, tok.AccessToken)
	}

	committed := false
	m.update(func(s *State) {
		if m.gen != gen {
			return
		}
		if err != nil {
			*s = State{Resolved: true, Err: err}
			return
		}
		u := user
		*s = State{Resolved: true, Token: tok.AccessToken, User: &u}
		committed = true
	})

	if err != nil {
		m.logger.Debug("login failed", "error", err)
		return err
	}
	if !committed {
		return ErrSuperseded
	}
	if err := m.store.Set(TokenKey, tok.AccessToken); err != nil {
		m.logger.Debug("persist token", "error", err)
	}
	return nil
}

// Logout clears the token, profile and error. It makes no network call
// and is idempotent.
func (m *Manager) Logout() {
	m.update(func(s *State) {
		m.gen++
		*s = State{Resolved: true}
	})
	m.removeStored()
}

// Refresh re-fetches the profile of the current token. Without a token it
// is a no-op. When the fetch fails the token and profile are cleared in one
// transition and the error is recorded; a cancelled context leaves the
// session as it was.
func (m *Manager) Refresh(ctx context.Context) error {
	var (
		tok string
		gen uint64
	)
	m.update(func(s *State) {
		s.Resolved = true
		tok = s.Token
		gen = m.gen
		if tok != "" {
			s.Loading = true
			s.Err = nil
		}
	})
	if tok == "" {
		return nil
	}

	user, err := m.authService().Me(ctx, tok)

	cleared := false
	m.update(func(s *State) {
		if m.gen != gen {
			return
		}
		s.Loading = false
		switch {
		case err == nil:
			u := user
			s.User = &u
		case ctx.Err() != nil:
			s.Err = err
		default:
			m.gen++
			*s = State{Resolved: true, Err: err}
			cleared = true
		}
	})
	if cleared {
		m.removeStored()
		m.logger.Debug("session cleared after profile fetch failure", "error", err)
	}
	return err
}

// Invalidate tears the session down after the backend rejected token. A
// rejection of any other token than the current one is ignored.
func (m *Manager) Invalidate(token string, err error) {
	changed := false
	m.update(func(s *State) {
		if s.Token == "" || s.Token != token {
			return
		}
		m.gen++
		*s = State{Resolved: true, Err: err}
		changed = true
	})
	if changed {
		m.removeStored()
		m.logger.Debug("session invalidated", "error", err)
	}
}

func (m *Manager) authService() service.AuthService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.auth
}

func (m *Manager) removeStored() {
	if err := m.store.Remove(TokenKey); err != nil {
		m.logger.Debug("remove stored token", "error", err)
	}
}

// update applies fn under the lock and notifies listeners with the result.
func (m *Manager) update(fn func(s *State)) {
	m.mu.Lock()
	fn(&m.state)
	snapshot := m.state
	m.mu.Unlock()

	m.listenMu.Lock()
	fns := make([]func(State), 0, len(m.listeners))
	for _, l := range m.listeners {
		fns = append(fns, l)
	}
	m.listenMu.Unlock()

	for _, l := range fns {
		l(snapshot)
	}
}
