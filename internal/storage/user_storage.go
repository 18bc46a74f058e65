package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrLoginExists  = errors.New("login already exists")
)

const (
	userColumns  = `id, login, password_hash, email, role, created_at, updated_at`
	userLoginKey = "users_login_key"
)

// PostgresUserStorage хранит учётные записи сотрудников и поставщиков.
type PostgresUserStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStorage(pool *pgxpool.Pool) *PostgresUserStorage {
	return &PostgresUserStorage{pool: pool}
}

// Create сохраняет пользователя. Пустая роль записывается как provider.
func (s *PostgresUserStorage) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleProvider
	}

	query := `
		INSERT INTO users (id, login, password_hash, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		user.ID,
		user.Login,
		user.PasswordHash,
		user.Email,
		string(user.Role),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, userLoginKey) {
			return ErrLoginExists
		}
		return fmt.Errorf("failed to insert user %s: %w", user.Login, err)
	}

	return nil
}

func (s *PostgresUserStorage) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1`
	return scanUser(s.pool.QueryRow(ctx, query, login))
}

func (s *PostgresUserStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user  models.User
		email sql.NullString
		role  string
	)

	err := row.Scan(
		&user.ID,
		&user.Login,
		&user.PasswordHash,
		&email,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Email = email.String
	user.Role = models.UserRole(role)

	return &user, nil
}
