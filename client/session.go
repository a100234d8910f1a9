package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/player"
)

const (
	checkAuthDebounce = time.Second
	checkAuthInterval = 5 * time.Minute
)

// AuthStatus tags the session's authentication state.
type AuthStatus int

const (
	StatusAnonymous AuthStatus = iota
	// StatusRestored means a cached snapshot is in effect while a background
	// refresh reconciles with the backend.
	StatusRestored
	StatusAuthenticated
)

// State is the session's derived view: who is signed in and their roster.
type State struct {
	Status   AuthStatus
	Guardian guardian.Guardian
	Roster   []player.Player
}

func (s State) IsAuthenticated() bool { return s.Status != StatusAnonymous }

// Session state changes flow through a single reducer; each event carries the
// data its transition needs.
type (
	sessionEvent interface{ apply(State) State }

	loggedInEvent  struct{ guardian guardian.Guardian }
	restoredEvent  struct{ snapshot guardian.Guardian }
	refreshedEvent struct {
		guardian guardian.Guardian
		roster   []player.Player
	}
	loggedOutEvent struct{}
)

func (e loggedInEvent) apply(State) State {
	return State{Status: StatusAuthenticated, Guardian: e.guardian}
}

func (e restoredEvent) apply(prev State) State {
	return State{Status: StatusRestored, Guardian: e.snapshot, Roster: prev.Roster}
}

// last response wins: a refresh overwrites whatever is in memory
func (e refreshedEvent) apply(State) State {
	return State{Status: StatusAuthenticated, Guardian: e.guardian, Roster: e.roster}
}

func (e loggedOutEvent) apply(State) State { return State{} }

// Session maintains {isAuthenticated, currentParent, roster} derived from the
// bearer credential held in the persistent store.
type Session struct {
	api    *Client
	store  Store
	logger core.Logger

	mutex           sync.Mutex
	state           State
	lastCheck       time.Time
	checkInProgress bool

	refreshWG sync.WaitGroup
	nowFunc   func() time.Time // mockable
}

func NewSession(api *Client, store Store, logger core.Logger) *Session {
	return &Session{
		api:     api,
		store:   store,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// State returns the current session view.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

func (s *Session) dispatch(ev sessionEvent) {
	s.mutex.Lock()
	s.state = ev.apply(s.state)
	s.mutex.Unlock()
}

// CheckAuth reconciles session state with the stored credential. Calls within
// a one second window are a no-op, as is a call while a background refresh is
// still in flight.
func (s *Session) CheckAuth(ctx context.Context) {
	s.mutex.Lock()
	now := s.nowFunc()
	if s.checkInProgress || now.Sub(s.lastCheck) < checkAuthDebounce {
		s.mutex.Unlock()
		return
	}
	s.lastCheck = now
	s.mutex.Unlock()

	creds, err := s.store.Load()
	if err != nil {
		s.logger.Warn(fmt.Sprintf("loading credentials: %v", err))
		return
	}
	if creds.IsZero() {
		s.Logout()
		return
	}

	claims, err := decodeClaims(creds.Token)
	if err != nil || claims.ExpiresAt == nil || !s.nowFunc().Before(claims.ExpiresAt.Time) {
		s.Logout()
		return
	}

	s.api.SetToken(creds.Token)

	// optimistically restore the cached snapshot when it matches the subject
	if creds.Snapshot != nil && creds.Snapshot.ID == claims.Subject {
		s.dispatch(restoredEvent{snapshot: *creds.Snapshot})
	}

	s.mutex.Lock()
	s.checkInProgress = true
	s.mutex.Unlock()

	s.refreshWG.Add(1)
	go s.refresh(ctx, claims.Subject, creds)
}

// refresh fetches the account and roster concurrently and reconciles.
// Network failures are logged and swallowed; the optimistic snapshot remains.
func (s *Session) refresh(ctx context.Context, subject string, creds Credentials) {
	defer s.refreshWG.Done()
	defer func() {
		s.mutex.Lock()
		s.checkInProgress = false
		s.mutex.Unlock()
	}()

	var (
		wg     sync.WaitGroup
		g      guardian.Guardian
		roster []player.Player
		gErr   error
		rErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		g, gErr = s.api.Guardian(ctx, subject)
	}()
	go func() {
		defer wg.Done()
		roster, rErr = s.api.Players(ctx)
	}()
	wg.Wait()

	if gErr != nil || rErr != nil {
		if apiErr, ok := errors.Cause(gErr).(*APIError); ok && apiErr.StatusCode == 401 {
			s.Logout()
			return
		}
		s.logger.Warn(fmt.Sprintf("session refresh failed: guardian=%v roster=%v", gErr, rErr))
		return
	}

	s.dispatch(refreshedEvent{guardian: g, roster: roster})

	creds.GuardianID = g.ID
	creds.Snapshot = &g
	if err := s.store.Save(creds); err != nil {
		s.logger.Warn(fmt.Sprintf("saving credentials: %v", err))
	}
}

// Login authenticates against the backend and persists the session.
func (s *Session) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*APIError); ok && apiErr.StatusCode < 500 {
			return &AuthError{Message: authFailureMessage(apiErr)}
		}
		return errors.Wrap(err, "logging in")
	}
	if res.Token == "" || res.GuardianID == "" {
		return &AuthError{Message: "login response missing required fields"}
	}

	g, err := s.api.Guardian(ctx, res.GuardianID)
	if err != nil {
		return errors.Wrap(err, "fetching account")
	}

	s.dispatch(loggedInEvent{guardian: g})
	if err := s.store.Save(Credentials{Token: res.Token, GuardianID: g.ID, Snapshot: &g}); err != nil {
		s.logger.Warn(fmt.Sprintf("saving credentials: %v", err))
	}
	return nil
}

// Register validates the input locally, submits the registration payload
// and persists the resulting session.
func (s *Session) Register(ctx context.Context, ng guardian.NewGuardian) error {
	if flds := ng.FieldErrors(); len(flds) > 0 {
		return core.NewValidationError(guardian.ErrInvalidInput, flds...)
	}

	res, err := s.api.Register(ctx, ng)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*APIError); ok && apiErr.StatusCode < 500 {
			return &RegistrationError{Message: authFailureMessage(apiErr)}
		}
		return errors.Wrap(err, "registering")
	}

	g := res.Guardian
	s.dispatch(loggedInEvent{guardian: g})
	if err := s.store.Save(Credentials{Token: res.Token, GuardianID: g.ID, Snapshot: &g}); err != nil {
		s.logger.Warn(fmt.Sprintf("saving credentials: %v", err))
	}
	return nil
}

// Logout clears all persisted session data and in-memory state.
func (s *Session) Logout() {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn(fmt.Sprintf("clearing credentials: %v", err))
	}
	s.api.SetToken("")
	s.dispatch(loggedOutEvent{})
}

// Start runs CheckAuth immediately and then every five minutes until the
// context is cancelled.
func (s *Session) Start(ctx context.Context) {
	s.CheckAuth(ctx)
	go func() {
		ticker := time.NewTicker(checkAuthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CheckAuth(ctx)
			}
		}
	}()
}

// decodeClaims reads the token's claims without verifying the signature; the
// client holds no signing key and treats the token as opaque except for
// subject and expiry.
func decodeClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := new(jwt.RegisteredClaims)
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "decoding token")
	}
	return claims, nil
}

func authFailureMessage(apiErr *APIError) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	for _, v := range apiErr.Fields {
		return v
	}
	return "request rejected"
}
