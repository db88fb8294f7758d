// Package session holds the one signed-in identity of the process. It is
// the only writer of the persisted credential.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/auth"
	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/store"
)

// Gateway is the slice of the remote API the session needs.
type Gateway interface {
	Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error)
	Register(ctx context.Context, in model.Registration) (model.AuthResponse, error)
	Me(ctx context.Context) (model.User, error)
	Logout(ctx context.Context) error
}

// CredentialStore persists the session between runs.
type CredentialStore interface {
	Save(c store.Credentials) error
	SaveUser(u model.User) error
	Load() (store.Credentials, error)
	Clear() error
}

type Store struct {
	// ops serializes sign-in, sign-out, restore and refresh.
	ops sync.Mutex

	mu    sync.RWMutex
	user  *model.User
	token string

	gw     Gateway
	creds  CredentialStore
	logger *slog.Logger
	now    func() time.Time
}

func New(gw Gateway, creds CredentialStore, logger *slog.Logger) *Store {
	return &Store{
		gw:     gw,
		creds:  creds,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

// Current returns the signed-in user.
func (s *Store) Current() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func (s *Store) Actor() (auth.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return auth.Actor{}, false
	}
	return auth.ActorFor(*s.user, s.token), true
}

// Context attaches the current actor to ctx. A signed-out store returns ctx
// unchanged, so guarded calls fail with an authentication error.
func (s *Store) Context(ctx context.Context) context.Context {
	a, ok := s.Actor()
	if !ok {
		return ctx
	}
	return auth.WithActor(ctx, a)
}

func (s *Store) set(u model.User, token string) {
	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
}

func (s *Store) reset() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}

// Restore resumes the persisted session. Any failure along the way leaves
// the store signed out with the credential cleared; it never returns an
// error.
func (s *Store) Restore(ctx context.Context) (model.User, bool) {
	s.ops.Lock()
	defer s.ops.Unlock()

	c, err := s.creds.Load()
	if errors.Is(err, store.ErrNoCredentials) {
		s.reset()
		return model.User{}, false
	}
	if err != nil {
		s.logger.Warn("load stored credentials", "error", err)
		s.discard()
		return model.User{}, false
	}

	if tokenExpired(c.AccessToken, s.now()) {
		s.logger.Info("stored token expired, signing out")
		s.discard()
		return model.User{}, false
	}

	u, err := s.gw.Me(auth.WithActor(ctx, auth.Actor{Token: c.AccessToken}))
	if err != nil {
		s.logger.Warn("validate stored session", "error", err)
		s.discard()
		return model.User{}, false
	}
	if err := s.creds.SaveUser(u); err != nil {
		s.logger.Warn("update user snapshot", "error", err)
	}
	s.set(u, c.AccessToken)
	s.logger.Debug("session restored", "user_id", u.ID, "role", u.Role)
	return u, true
}

// Expire ends the session after the server rejected its credential
// mid-command. The server is not told; it already considers the token dead.
func (s *Store) Expire() {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.mu.RLock()
	signedIn := s.token != ""
	s.mu.RUnlock()
	if !signedIn {
		return
	}
	s.logger.Warn("credential rejected, signing out")
	s.discard()
}

// discard clears local state and the persisted credential.
func (s *Store) discard() {
	s.reset()
	if err := s.creds.Clear(); err != nil {
		s.logger.Error("clear stored credentials", "error", err)
	}
}

// tokenExpired reports whether token is a JWT whose exp is in the past.
// Opaque tokens are left for the server to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// SignIn authenticates and persists the session. On failure the current
// session, if any, is left as it was.
func (s *Store) SignIn(ctx context.Context, creds model.Credentials) (model.User, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	resp, err := s.gw.Login(ctx, creds)
	if err != nil {
		return model.User{}, err
	}
	return s.begin(resp)
}

func (s *Store) SignUp(ctx context.Context, in model.Registration) (model.User, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	resp, err := s.gw.Register(ctx, in)
	if err != nil {
		return model.User{}, err
	}
	return s.begin(resp)
}

func (s *Store) begin(resp model.AuthResponse) (model.User, error) {
	if resp.AccessToken == "" {
		return model.User{}, apperr.New(apperr.KindServer, "")
	}
	err := s.creds.Save(store.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("persist session: %w", err)
	}
	s.set(resp.User, resp.AccessToken)
	s.logger.Info("signed in", "user_id", resp.User.ID, "role", resp.User.Role)
	return resp.User, nil
}

// SignOut always ends the local session. The server is told on a best-effort
// basis; only a failure to clear local state is returned.
func (s *Store) SignOut(ctx context.Context) error {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token != "" {
		if err := s.gw.Logout(auth.WithActor(ctx, auth.Actor{Token: token})); err != nil {
			s.logger.Warn("notify server of sign-out", "error", err)
		}
	}
	s.reset()
	if err := s.creds.Clear(); err != nil {
		return fmt.Errorf("clear stored credentials: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// RefreshUser re-fetches the profile. A failure keeps the session, except
// for an authentication failure, which ends it.
func (s *Store) RefreshUser(ctx context.Context) (model.User, error) {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return model.User{}, apperr.New(apperr.KindAuthentication, "Faça login para continuar")
	}

	u, err := s.gw.Me(auth.WithActor(ctx, auth.Actor{Token: token}))
	if err != nil {
		if apperr.IsKind(err, apperr.KindAuthentication) {
			s.logger.Warn("session rejected by server, signing out", "error", err)
			s.discard()
			return model.User{}, err
		}
		s.logger.Warn("refresh user", "error", err)
		return model.User{}, err
	}
	if err := s.creds.SaveUser(u); err != nil {
		s.logger.Warn("update user snapshot", "error", err)
	}
	s.set(u, token)
	return u, nil
}
