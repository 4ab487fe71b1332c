package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/mizuki/heatboard/internal/domain"
)

const pgUniqueViolation = "23505"

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, github_id, login, avatar_url, name, created_at
		 FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %s: %w", id, err)
	}
	return &user, nil
}

// FindByGitHubID retrieves a user by their GitHub account ID.
func (r *UserRepository) FindByGitHubID(ctx context.Context, githubID int64) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, github_id, login, avatar_url, name, created_at
		 FROM users WHERE github_id = $1`, githubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by github id %d: %w", githubID, err)
	}
	return &user, nil
}

// Create inserts a new user row. Profile fields of an existing row are never
// touched: if another login for the same GitHub account won the insert race,
// the unique constraint on github_id fires and the winner's row is returned
// instead.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	var result domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, github_id, login, avatar_url, name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, github_id, login, avatar_url, name, created_at`,
		user.ID, user.GitHubID, user.Login, user.AvatarURL, user.Name,
	).StructScan(&result)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return r.FindByGitHubID(ctx, user.GitHubID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &result, nil
}
