package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

type credentialStoreStub struct {
	users []persistence.User
	err   error
}

func (s *credentialStoreStub) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if s.err != nil {
		return persistence.User{}, s.err
	}
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *credentialStoreStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if s.err != nil {
		return persistence.User{}, s.err
	}
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

type sessionStoreStub struct {
	sessions    map[string]persistence.Session
	pruneCalls  int
	createErr   error
	lookupErr   error
	revokeCalls int
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]persistence.Session)}
}

func (s *sessionStoreStub) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if s.createErr != nil {
		return persistence.Session{}, s.createErr
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionStoreStub) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if s.lookupErr != nil {
		return persistence.Session{}, s.lookupErr
	}
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.revokeCalls++
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *sessionStoreStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.pruneCalls++
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

func plainVerifier(hashedPassword, password string) error {
	if hashedPassword == "hashed-"+password {
		return nil
	}
	return errors.New("password mismatch")
}

func sequentialTokens() func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("token-%d", counter)
	}
}

func testAccounts() *credentialStoreStub {
	return &credentialStoreStub{users: []persistence.User{
		{ID: "u1", Email: "planer@example.edu", DisplayName: "Planer", PasswordHash: "hashed-geheim12", IsAdmin: true},
		{ID: "u2", Email: "gast@example.edu", DisplayName: "Gast", PasswordHash: "hashed-geheim12", Disabled: true},
	}}
}

func newAuthFixture(sessions *sessionStoreStub) *AuthService {
	return NewAuthService(testAccounts(), sessions, plainVerifier, sequentialTokens(), fixedNow, time.Hour)
}

func TestAuthenticateIssuesSession(t *testing.T) {
	t.Parallel()

	sessions := newSessionStoreStub()
	service := newAuthFixture(sessions)

	result, err := service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "  Planer@Example.EDU ",
		Password: "geheim12",
	})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if result.User.ID != "u1" || !result.User.IsAdmin {
		t.Fatalf("unexpected user %+v", result.User)
	}
	if result.Session.Token == "" {
		t.Fatal("expected a session token")
	}
	if got, want := result.Session.ExpiresAt, fixedNow().Add(time.Hour); !got.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, got)
	}
	if _, ok := sessions.sessions[result.Session.Token]; !ok {
		t.Fatal("session was not persisted")
	}
	if sessions.pruneCalls == 0 {
		t.Fatal("expected expired sessions to be pruned on login")
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		email   string
		pass    string
		wantErr error
	}{
		{"wrong password", "planer@example.edu", "falsch123", ErrInvalidCredentials},
		{"unknown email", "niemand@example.edu", "geheim12", ErrInvalidCredentials},
		{"empty password", "planer@example.edu", "", ErrInvalidCredentials},
		{"disabled account", "gast@example.edu", "geheim12", ErrAccountDisabled},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service := newAuthFixture(newSessionStoreStub())
			_, err := service.Authenticate(context.Background(), AuthenticateParams{Email: tc.email, Password: tc.pass})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateSession(t *testing.T) {
	t.Parallel()

	now := fixedNow()
	revokedAt := now.Add(-time.Minute)

	sessions := newSessionStoreStub()
	sessions.sessions["alive"] = persistence.Session{ID: "s1", UserID: "u1", Token: "alive", ExpiresAt: now.Add(time.Hour)}
	sessions.sessions["stale"] = persistence.Session{ID: "s2", UserID: "u1", Token: "stale", ExpiresAt: now.Add(-time.Hour)}
	sessions.sessions["revoked"] = persistence.Session{ID: "s3", UserID: "u1", Token: "revoked", ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}
	sessions.sessions["disabled"] = persistence.Session{ID: "s4", UserID: "u2", Token: "disabled", ExpiresAt: now.Add(time.Hour)}

	service := newAuthFixture(sessions)

	cases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", "alive", nil},
		{"expired", "stale", ErrSessionExpired},
		{"revoked", "revoked", ErrSessionRevoked},
		{"disabled user", "disabled", ErrAccountDisabled},
		{"unknown", "missing", ErrUnauthorized},
		{"blank", "   ", ErrUnauthorized},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			principal, err := service.ValidateSession(context.Background(), tc.token)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateSession returned error: %v", err)
			}
			if principal.UserID != "u1" || !principal.IsAdmin {
				t.Fatalf("unexpected principal %+v", principal)
			}
		})
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	now := fixedNow()
	sessions := newSessionStoreStub()
	sessions.sessions["alive"] = persistence.Session{ID: "s1", UserID: "u1", Token: "alive", ExpiresAt: now.Add(time.Hour)}

	service := newAuthFixture(sessions)
	if err := service.Logout(context.Background(), "alive"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if session := sessions.sessions["alive"]; session.RevokedAt == nil {
		t.Fatal("expected session to carry a revocation timestamp")
	}

	if _, err := service.ValidateSession(context.Background(), "alive"); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after logout, got %v", err)
	}
}

func TestLogoutUnknownToken(t *testing.T) {
	t.Parallel()

	service := newAuthFixture(newSessionStoreStub())
	if err := service.Logout(context.Background(), "missing"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
