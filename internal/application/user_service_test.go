package application

import (
	"context"
	"errors"
	"testing"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

type userStoreStub struct {
	users []persistence.User
	err   error
}

func (s *userStoreStub) CreateUser(ctx context.Context, user persistence.User) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.users {
		if existing.ID == user.ID || existing.Email == user.Email {
			return persistence.ErrAlreadyExists
		}
	}
	s.users = append(s.users, user)
	return nil
}

func (s *userStoreStub) UpdateUser(ctx context.Context, user persistence.User) error {
	if s.err != nil {
		return s.err
	}
	for i, existing := range s.users {
		if existing.ID == user.ID {
			s.users[i] = user
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *userStoreStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if s.err != nil {
		return persistence.User{}, s.err
	}
	for _, existing := range s.users {
		if existing.ID == id {
			return existing, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *userStoreStub) ListUsers(ctx context.Context) ([]persistence.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]persistence.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *userStoreStub) DeleteUser(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	for i, existing := range s.users {
		if existing.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func plainHasher(password string) (string, error) {
	return "hashed-" + password, nil
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return prefix + string(rune('0'+counter))
	}
}

func newUserFixture(store *userStoreStub) *UserService {
	return NewUserService(store, plainHasher, sequentialIDs("u"), fixedNow)
}

var adminPrincipal = Principal{UserID: "admin", IsAdmin: true}

func TestCreateUserRequiresAdmin(t *testing.T) {
	t.Parallel()

	service := newUserFixture(&userStoreStub{})
	_, err := service.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "u1"},
		Input:     UserInput{Email: "neu@example.edu", DisplayName: "Neu", Password: "geheim12"},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateUserHashesPasswordAndNormalizesEmail(t *testing.T) {
	t.Parallel()

	store := &userStoreStub{}
	service := newUserFixture(store)

	created, err := service.CreateUser(context.Background(), CreateUserParams{
		Principal: adminPrincipal,
		Input:     UserInput{Email: "  Neu@Example.EDU ", DisplayName: " Neu ", Password: "geheim12"},
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if created.Email != "neu@example.edu" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if len(store.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(store.users))
	}
	if store.users[0].PasswordHash != "hashed-geheim12" {
		t.Fatalf("expected hashed password, got %q", store.users[0].PasswordHash)
	}
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input UserInput
		field string
	}{
		{"missing email", UserInput{DisplayName: "Neu", Password: "geheim12"}, "email"},
		{"invalid email", UserInput{Email: "not-an-address", DisplayName: "Neu", Password: "geheim12"}, "email"},
		{"missing name", UserInput{Email: "neu@example.edu", Password: "geheim12"}, "display_name"},
		{"missing password", UserInput{Email: "neu@example.edu", DisplayName: "Neu"}, "password"},
		{"short password", UserInput{Email: "neu@example.edu", DisplayName: "Neu", Password: "kurz"}, "password"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service := newUserFixture(&userStoreStub{})
			_, err := service.CreateUser(context.Background(), CreateUserParams{Principal: adminPrincipal, Input: tc.input})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected field error for %q, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()

	store := &userStoreStub{users: []persistence.User{{ID: "u9", Email: "neu@example.edu"}}}
	service := newUserFixture(store)

	_, err := service.CreateUser(context.Background(), CreateUserParams{
		Principal: adminPrincipal,
		Input:     UserInput{Email: "neu@example.edu", DisplayName: "Neu", Password: "geheim12"},
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateUserKeepsHashWhenPasswordEmpty(t *testing.T) {
	t.Parallel()

	store := &userStoreStub{users: []persistence.User{
		{ID: "u9", Email: "alt@example.edu", DisplayName: "Alt", PasswordHash: "hashed-alt"},
	}}
	service := newUserFixture(store)

	updated, err := service.UpdateUser(context.Background(), UpdateUserParams{
		Principal: adminPrincipal,
		UserID:    "u9",
		Input:     UserInput{Email: "alt@example.edu", DisplayName: "Umbenannt"},
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if updated.DisplayName != "Umbenannt" {
		t.Fatalf("expected renamed user, got %q", updated.DisplayName)
	}
	if store.users[0].PasswordHash != "hashed-alt" {
		t.Fatalf("expected untouched hash, got %q", store.users[0].PasswordHash)
	}
}

func TestUpdateUserReplacesHashWhenPasswordSet(t *testing.T) {
	t.Parallel()

	store := &userStoreStub{users: []persistence.User{
		{ID: "u9", Email: "alt@example.edu", DisplayName: "Alt", PasswordHash: "hashed-alt"},
	}}
	service := newUserFixture(store)

	if _, err := service.UpdateUser(context.Background(), UpdateUserParams{
		Principal: adminPrincipal,
		UserID:    "u9",
		Input:     UserInput{Email: "alt@example.edu", DisplayName: "Alt", Password: "neues-geheim"},
	}); err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if store.users[0].PasswordHash != "hashed-neues-geheim" {
		t.Fatalf("expected new hash, got %q", store.users[0].PasswordHash)
	}
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	t.Parallel()

	store := &userStoreStub{users: []persistence.User{{ID: "admin", Email: "admin@example.edu"}}}
	service := newUserFixture(store)

	err := service.DeleteUser(context.Background(), adminPrincipal, "admin")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(store.users) != 1 {
		t.Fatal("expected account to survive")
	}
}

func TestDeleteUserRemovesAccount(t *testing.T) {
	t.Parallel()

	store := &userStoreStub{users: []persistence.User{{ID: "u9", Email: "alt@example.edu"}}}
	service := newUserFixture(store)

	if err := service.DeleteUser(context.Background(), adminPrincipal, "u9"); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if len(store.users) != 0 {
		t.Fatalf("expected account removed, %d left", len(store.users))
	}
}

func TestListUsersRequiresAdmin(t *testing.T) {
	t.Parallel()

	service := newUserFixture(&userStoreStub{})
	if _, err := service.ListUsers(context.Background(), Principal{UserID: "u1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
