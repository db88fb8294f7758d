package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/auth"
	"github.com/dukerupert/kidscoin/internal/database"
	"github.com/dukerupert/kidscoin/internal/model"
	"github.com/dukerupert/kidscoin/internal/store"
)

type fakeGateway struct {
	loginResp model.AuthResponse
	loginErr  error
	me        model.User
	meErr     error
	logoutErr error

	meCalls     int
	logoutCalls int
	lastToken   string
}

func (f *fakeGateway) Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeGateway) Register(ctx context.Context, in model.Registration) (model.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeGateway) Me(ctx context.Context) (model.User, error) {
	f.meCalls++
	f.lastToken = auth.Token(ctx)
	return f.me, f.meErr
}

func (f *fakeGateway) Logout(ctx context.Context) error {
	f.logoutCalls++
	f.lastToken = auth.Token(ctx)
	return f.logoutErr
}

var parent = model.User{ID: "p1", FullName: "Maria", Role: model.RoleParent, FamilyID: "f1", Email: "maria@example.com"}

func setup(t *testing.T) (*Store, *fakeGateway, *store.CredentialStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	cs := store.NewCredentialStore(db, "@kidscoin", "")
	gw := &fakeGateway{}
	s := New(gw, cs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return s, gw, cs
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "p1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestRestoreNothingStored(t *testing.T) {
	s, gw, _ := setup(t)
	if _, ok := s.Restore(context.Background()); ok {
		t.Fatal("expected signed out")
	}
	if gw.meCalls != 0 {
		t.Error("Me called without a stored token")
	}
}

func TestRestoreExpiredToken(t *testing.T) {
	s, gw, cs := setup(t)
	cs.Save(store.Credentials{AccessToken: signedToken(t, time.Now().Add(-time.Hour)), User: parent})

	u, ok := s.Restore(context.Background())
	if ok {
		t.Fatalf("expected signed out, got %+v", u)
	}
	if _, ok := s.Current(); ok {
		t.Error("Current reports a user")
	}
	if gw.meCalls != 0 {
		t.Error("expired token was sent to the server")
	}
	if _, err := cs.Load(); !errors.Is(err, store.ErrNoCredentials) {
		t.Errorf("stored credential not cleared: %v", err)
	}
}

func TestRestoreRejectedByServer(t *testing.T) {
	s, gw, cs := setup(t)
	cs.Save(store.Credentials{AccessToken: signedToken(t, time.Now().Add(time.Hour)), User: parent})
	gw.meErr = apperr.New(apperr.KindAuthentication, "")

	if _, ok := s.Restore(context.Background()); ok {
		t.Fatal("expected signed out")
	}
	if gw.meCalls != 1 {
		t.Errorf("meCalls = %d, want 1", gw.meCalls)
	}
	if _, err := cs.Load(); !errors.Is(err, store.ErrNoCredentials) {
		t.Errorf("stored credential not cleared: %v", err)
	}
}

func TestRestoreValid(t *testing.T) {
	s, gw, cs := setup(t)
	cs.Save(store.Credentials{AccessToken: "opaque-token", User: model.User{ID: "p1", FullName: "old"}})
	gw.me = parent

	u, ok := s.Restore(context.Background())
	if !ok {
		t.Fatal("expected signed in")
	}
	if u.FullName != "Maria" {
		t.Errorf("user = %+v", u)
	}
	if gw.lastToken != "opaque-token" {
		t.Errorf("token sent = %q", gw.lastToken)
	}
	stored, _ := cs.Load()
	if stored.User.FullName != "Maria" {
		t.Errorf("snapshot not refreshed: %+v", stored.User)
	}

	a, ok := auth.FromContext(s.Context(context.Background()))
	if !ok || a.Token != "opaque-token" || a.Role != model.RoleParent {
		t.Errorf("actor = %+v, %v", a, ok)
	}
}

func TestSignInFailureDoesNotMutate(t *testing.T) {
	s, gw, cs := setup(t)
	gw.loginResp = model.AuthResponse{AccessToken: "tok-1", User: parent}
	if _, err := s.SignIn(context.Background(), model.Credentials{Identifier: "maria@example.com", Secret: "pw"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	gw.loginErr = apperr.New(apperr.KindAuthentication, "Credenciais inválidas")
	gw.loginResp = model.AuthResponse{}
	_, err := s.SignIn(context.Background(), model.Credentials{Identifier: "ana", Secret: "0000"})
	if apperr.Message(err) != "Credenciais inválidas" {
		t.Errorf("error = %v", err)
	}
	u, ok := s.Current()
	if !ok || u.ID != "p1" {
		t.Errorf("current user changed: %+v, %v", u, ok)
	}
	stored, _ := cs.Load()
	if stored.AccessToken != "tok-1" {
		t.Errorf("stored token = %q", stored.AccessToken)
	}
}

func TestSignUpPersists(t *testing.T) {
	s, gw, cs := setup(t)
	gw.loginResp = model.AuthResponse{AccessToken: "tok", RefreshToken: "ref", User: parent}
	u, err := s.SignUp(context.Background(), model.Registration{Email: "maria@example.com", Password: "pw", FullName: "Maria", FamilyName: "Souza"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.ID != "p1" {
		t.Errorf("user = %+v", u)
	}
	stored, err := cs.Load()
	if err != nil || stored.RefreshToken != "ref" {
		t.Errorf("stored = %+v, %v", stored, err)
	}
}

func TestSignOutClearsEvenWhenServerFails(t *testing.T) {
	s, gw, cs := setup(t)
	gw.loginResp = model.AuthResponse{AccessToken: "tok", User: parent}
	s.SignIn(context.Background(), model.Credentials{Identifier: "maria@example.com", Secret: "pw"})
	gw.logoutErr = apperr.New(apperr.KindNetwork, "")

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if gw.logoutCalls != 1 || gw.lastToken != "tok" {
		t.Errorf("logout calls = %d, token = %q", gw.logoutCalls, gw.lastToken)
	}
	if _, ok := s.Current(); ok {
		t.Error("still signed in")
	}
	if _, err := cs.Load(); !errors.Is(err, store.ErrNoCredentials) {
		t.Errorf("stored credential not cleared: %v", err)
	}
}

func TestRefreshUserKeepsSessionOnNetworkError(t *testing.T) {
	s, gw, _ := setup(t)
	gw.loginResp = model.AuthResponse{AccessToken: "tok", User: parent}
	s.SignIn(context.Background(), model.Credentials{Identifier: "maria@example.com", Secret: "pw"})

	gw.meErr = apperr.New(apperr.KindNetwork, "")
	if _, err := s.RefreshUser(context.Background()); !apperr.IsKind(err, apperr.KindNetwork) {
		t.Errorf("error = %v", err)
	}
	if _, ok := s.Current(); !ok {
		t.Error("session dropped on network error")
	}

	gw.meErr = apperr.New(apperr.KindAuthentication, "")
	s.RefreshUser(context.Background())
	if _, ok := s.Current(); ok {
		t.Error("session kept after authentication failure")
	}
}

func TestExpireDiscardsWithoutTellingServer(t *testing.T) {
	s, gw, cs := setup(t)
	gw.loginResp = model.AuthResponse{AccessToken: "tok", User: parent}
	s.SignIn(context.Background(), model.Credentials{Identifier: "maria@example.com", Secret: "pw"})

	s.Expire()
	if _, ok := s.Current(); ok {
		t.Error("still signed in")
	}
	if _, err := cs.Load(); !errors.Is(err, store.ErrNoCredentials) {
		t.Errorf("stored credential not cleared: %v", err)
	}
	if gw.logoutCalls != 0 {
		t.Errorf("logout calls = %d, want 0", gw.logoutCalls)
	}
	s.Expire()
}

func TestRefreshUserSignedOut(t *testing.T) {
	s, gw, _ := setup(t)
	if _, err := s.RefreshUser(context.Background()); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Errorf("error = %v", err)
	}
	if gw.meCalls != 0 {
		t.Error("Me called while signed out")
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"past exp", signedToken(t, now.Add(-time.Minute)), true},
		{"future exp", signedToken(t, now.Add(time.Minute)), false},
		{"opaque", "not-a-jwt", false},
	}
	for _, tt := range tests {
		if got := tokenExpired(tt.token, now); got != tt.want {
			t.Errorf("%s: tokenExpired = %v, want %v", tt.name, got, tt.want)
		}
	}
}
