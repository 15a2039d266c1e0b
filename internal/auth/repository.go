package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresRepository implements UserRepository using PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user into the database
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	user.ID = uuid.New().String()

	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by their email address
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// PostgresAPIKeyRepository implements APIKeyRepository using PostgreSQL
type PostgresAPIKeyRepository struct {
	db *sql.DB
}

// NewPostgresAPIKeyRepository creates a new PostgreSQL API key repository
func NewPostgresAPIKeyRepository(db *sql.DB) *PostgresAPIKeyRepository {
	return &PostgresAPIKeyRepository{db: db}
}

// Create inserts a new API key into the database
func (r *PostgresAPIKeyRepository) Create(ctx context.Context, key *APIKey) error {
	key.ID = uuid.New().String()

	query := `
		INSERT INTO api_keys (id, user_id, name, lookup, hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		key.ID,
		key.UserID,
		key.Name,
		key.Lookup,
		key.Hash,
		key.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// GetByLookup retrieves an API key by its lookup segment
func (r *PostgresAPIKeyRepository) GetByLookup(ctx context.Context, lookup string) (*APIKey, error) {
	query := `
		SELECT id, user_id, name, lookup, hash, created_at
		FROM api_keys
		WHERE lookup = $1
	`

	key := &APIKey{}
	err := r.db.QueryRowContext(ctx, query, lookup).Scan(
		&key.ID,
		&key.UserID,
		&key.Name,
		&key.Lookup,
		&key.Hash,
		&key.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return key, nil
}

// DeleteByID removes an API key owned by the given user
func (r *PostgresAPIKeyRepository) DeleteByID(ctx context.Context, userID, id string) error {
	query := `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}
