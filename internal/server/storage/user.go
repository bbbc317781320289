package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UserRecord represents a registered account
type UserRecord struct {
	UserID       string     `json:"userId"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

const userColumns = `user_id, username, password_hash, created_at, last_login_at`

// CreateUser inserts a user; a case-insensitive username clash returns ErrConflict
func (q queries) CreateUser(ctx context.Context, record UserRecord) error {
	query := `INSERT INTO users (user_id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`
	_, err := q.q.ExecContext(ctx, query, record.UserID, record.Username, record.PasswordHash, record.CreatedAt)
	return classify(err)
}

// GetUserByUsername retrieves user by username with case-insensitive matching
func (q queries) GetUserByUsername(ctx context.Context, username string) (*UserRecord, error) {
	return q.scanUser(q.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username))
}

// GetUserByID retrieves user by unique user ID
func (q queries) GetUserByID(ctx context.Context, userID string) (*UserRecord, error) {
	return q.scanUser(q.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID))
}

// GetAllUsers retrieves all users, newest first
func (q queries) GetAllUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		user, err := q.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateUserPassword updates user password hash
func (q queries) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	return expectRows(q.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE user_id = ?`, passwordHash, userID))
}

// UpdateUserLastLogin records a successful login
func (q queries) UpdateUserLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	_, err := q.q.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE user_id = ?`, loginTime, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login for user %s: %w", userID, err)
	}
	return nil
}

// DeleteUserByID removes a user. Content it created is kept with created_by_id cleared.
func (q queries) DeleteUserByID(ctx context.Context, userID string) error {
	return expectRows(q.q.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (q queries) scanUser(row rowScanner) (*UserRecord, error) {
	var user UserRecord
	var lastLogin sql.NullTime
	if err := row.Scan(&user.UserID, &user.Username, &user.PasswordHash, &user.CreatedAt, &lastLogin); err != nil {
		return nil, classify(err)
	}
	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return &user, nil
}
