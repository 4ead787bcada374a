package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

// UserStore captures the persistence operations needed by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PasswordHasher derives a storable hash from a plain password.
type PasswordHasher func(password string) (string, error)

// UserService orchestrates validation, authorization and persistence for
// planner accounts. Every operation requires an administrator.
type UserService struct {
	users        UserStore
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserStore, hash PasswordHasher, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hash, idGenerator, now, nil)
}

// NewUserServiceWithLogger wires dependencies with a specified logger.
func NewUserServiceWithLogger(users UserStore, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = HashPassword
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:        users,
		hashPassword: hash,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input and persists a new account.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !params.Principal.IsAdmin {
		return User{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", params.Principal.UserID)

	normalized := normalizeUserInput(params.Input)
	if err := validateUserInput(normalized, true); err != nil {
		logger.ErrorContext(ctx, "user rejected", "error", err, "error_kind", ErrorKind(err))
		return User{}, err
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		logger.ErrorContext(ctx, "password hashing failed", "error", err, "error_kind", ErrorKind(err))
		return User{}, err
	}

	now := s.now()
	record := persistence.User{
		ID:           s.idGenerator(),
		Email:        normalized.Email,
		DisplayName:  normalized.DisplayName,
		PasswordHash: hash,
		IsAdmin:      normalized.IsAdmin,
		Disabled:     normalized.Disabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, record); err != nil {
		logger.ErrorContext(ctx, "user persistence failed", "error", err, "error_kind", ErrorKind(mapPersistenceError(err)))
		return User{}, mapPersistenceError(err)
	}

	logger.With("user_id", record.ID).InfoContext(ctx, "user created")
	return toUser(record), nil
}

// UpdateUser validates input and updates an existing account. An empty
// password keeps the stored hash.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !params.Principal.IsAdmin {
		return User{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateUser",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, mapPersistenceError(err)
	}

	normalized := normalizeUserInput(params.Input)
	if err := validateUserInput(normalized, false); err != nil {
		logger.ErrorContext(ctx, "user rejected", "error", err, "error_kind", ErrorKind(err))
		return User{}, err
	}

	updated := existing
	updated.Email = normalized.Email
	updated.DisplayName = normalized.DisplayName
	updated.IsAdmin = normalized.IsAdmin
	updated.Disabled = normalized.Disabled
	updated.UpdatedAt = s.now()
	if normalized.Password != "" {
		hash, err := s.hashPassword(normalized.Password)
		if err != nil {
			logger.ErrorContext(ctx, "password hashing failed", "error", err, "error_kind", ErrorKind(err))
			return User{}, err
		}
		updated.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, updated); err != nil {
		return User{}, mapPersistenceError(err)
	}

	logger.InfoContext(ctx, "user updated")
	return toUser(updated), nil
}

// GetUser returns a single account by id.
func (s *UserService) GetUser(ctx context.Context, principal Principal, id string) (User, error) {
	if !principal.IsAdmin {
		return User{}, ErrUnauthorized
	}
	record, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapPersistenceError(err)
	}
	return toUser(record), nil
}

// ListUsers returns every account as stored, ordered by email.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, toUser(record))
	}
	return users, nil
}

// DeleteUser removes an account. Administrators cannot delete themselves so
// a deployment always keeps at least one live admin session.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if principal.UserID == userID {
		vErr := &ValidationError{}
		vErr.add("user_id", "cannot delete own account")
		return vErr
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return mapPersistenceError(err)
	}
	s.loggerWith(ctx, "DeleteUser", "user_id", userID).InfoContext(ctx, "user deleted")
	return nil
}

func normalizeUserInput(input UserInput) UserInput {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	return input
}

// validateUserInput checks account fields. A password is mandatory only on
// creation; updates may leave it empty to keep the current one.
func validateUserInput(input UserInput, requirePassword bool) error {
	vErr := &ValidationError{}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}
	if requirePassword && input.Password == "" {
		vErr.add("password", "password is required")
	}
	if input.Password != "" && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
