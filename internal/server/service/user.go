package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"worldforge/internal/server/core"
	"worldforge/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownSessionUser is returned for a valid token whose account was deleted
	ErrUnknownSessionUser = errors.New("session user no longer exists")
)

// User represents a registered user account
type User struct {
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		UserID:      r.UserID,
		Username:    r.Username,
		CreatedAt:   r.CreatedAt,
		LastLoginAt: r.LastLoginAt,
	}
}

// CreateUser hashes the password and stores a new account
func (s *Service) CreateUser(ctx context.Context, username, password string) (*User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.CreateUserWithHash(ctx, username, passwordHash)
}

// CreateUserWithHash stores a new account from an existing PHC hash
func (s *Service) CreateUserWithHash(ctx context.Context, username, passwordHash string) (*User, error) {
	if err := auth.ValidatePHCHashFormat(passwordHash); err != nil {
		return nil, core.Validation("invalid password hash", err.Error())
	}

	userID, err := s.generateUniqueUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate unique ID: %w", err)
	}

	record := storage.UserRecord{
		UserID:       userID,
		Username:     strings.ToLower(strings.TrimSpace(username)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, record); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, core.Conflict("user already exists", err)
		}
		return nil, core.Internal(err)
	}

	return userFromRecord(&record), nil
}

// AuthenticateUser verifies credentials and returns the account
func (s *Service) AuthenticateUser(ctx context.Context, username, password string) (*User, error) {
	record, err := s.store.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		// Hash anyway so unknown users take as long as wrong passwords
		_, _ = auth.HashPassword(password)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return userFromRecord(record), nil
}

// UpdateLastLogin records a successful login; failures are logged, not returned
func (s *Service) UpdateLastLogin(ctx context.Context, userID string) {
	if err := s.store.UpdateUserLastLogin(ctx, userID, time.Now().UTC()); err != nil {
		s.log.Warn("failed to update last login", zap.String("user_id", userID), zap.Error(err))
	}
}

// GetUserByID retrieves user information by user ID
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	record, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return userFromRecord(record), nil
}

// GetUserByUsername retrieves user information by username
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	record, err := s.store.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, storeError(err, "user")
	}
	return userFromRecord(record), nil
}

// ListUsers returns every account, newest first
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	records, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, storeError(err, "user")
	}
	users := make([]User, len(records))
	for i := range records {
		users[i] = *userFromRecord(&records[i])
	}
	return users, nil
}

// SetPassword replaces a user's password
func (s *Service) SetPassword(ctx context.Context, userID, password string) error {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return storeError(s.store.UpdateUserPassword(ctx, userID, passwordHash), "user")
}

// DeleteUser removes an account; content it created stays with no owner
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return storeError(s.store.DeleteUserByID(ctx, userID), "user")
}

// GenerateUserToken creates a session token for the specified user
func (s *Service) GenerateUserToken(ctx context.Context, userID string) (string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	claims := map[string]any{
		"username": user.Username,
	}

	return auth.GenerateHS256Token(s.jwtSecret, userID, claims, s.sessionTTL)
}

// ValidateToken verifies a session token and returns the user ID with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	return auth.ValidateHS256Token(s.jwtSecret, token)
}

// ResolveSession validates a token and returns the user id it names. A token
// for a deleted account resolves to no user.
func (s *Service) ResolveSession(ctx context.Context, token string) (string, error) {
	userID, _, err := s.ValidateToken(token)
	if err != nil {
		return "", err
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUnknownSessionUser
		}
		return "", err
	}
	return userID, nil
}

// ownerError reports a create whose created_by_id no longer names an account
// as an unauthorized session; anything else goes through storeError.
func ownerError(err error, what string) error {
	if errors.Is(err, storage.ErrInvalidReference) {
		e := core.Unauthorized()
		e.Details = ErrUnknownSessionUser.Error()
		e.Err = err
		return e
	}
	return storeError(err, what)
}

// generateUniqueUserID creates a unique user ID with collision detection
func (s *Service) generateUniqueUserID(ctx context.Context) (string, error) {
	const maxAttempts = 10

	for i := 0; i < maxAttempts; i++ {
		id := uuid.New().String()

		_, err := s.store.GetUserByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to generate unique ID after %d attempts", maxAttempts)
}
