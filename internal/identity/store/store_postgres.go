package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"onboard/internal/identity/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
)

// PostgresStore persists users in the users table. Email uniqueness is
// enforced case-insensitively by idx_users_email_lower.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, is_hr, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		uuid.UUID(user.ID),
		models.NormalizeEmail(user.Email),
		string(user.PasswordHash),
		user.IsHR,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user %s: %w", user.Email, sentinel.ErrAlreadyUsed)
		}
		return wrapPgErr(err, "create user")
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_hr, created_at FROM users WHERE id = $1
	`, uuid.UUID(userID))
	return scanUser(row, "find user by id")
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_hr, created_at FROM users WHERE lower(email) = $1
	`, models.NormalizeEmail(email))
	return scanUser(row, "find user by email")
}

func scanUser(row *sql.Row, op string) (*models.User, error) {
	var (
		uid       uuid.UUID
		u         models.User
		hash      string
		createdAt time.Time
	)
	if err := row.Scan(&uid, &u.Email, &hash, &u.IsHR, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
		}
		return nil, wrapPgErr(err, op)
	}
	u.ID = id.UserID(uid)
	u.PasswordHash = []byte(hash)
	u.CreatedAt = createdAt.UTC()
	return &u, nil
}

func wrapPgErr(err error, op string) error {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w: %v", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
