// Package users provides the PostgreSQL-backed credential store.
package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/dbx"
	"github.com/dmitrijs2005/textify/internal/server/models"
)

// Unique constraints declared in the users migration.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

const userColumns = `id, username, email, password_hash, settings, created_at, is_active`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	settings, err := encodeSettings(user.Settings)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO users (username, email, password_hash, settings, created_at, is_active)
         VALUES ($1, $2, $3, $4::jsonb, $5, $6)
		 RETURNING id
		 `

	err = r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, settings, user.CreatedAt, user.IsActive).Scan(&user.ID)

	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			return nil, conflict(constraint)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE username = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, userName))
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE email = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// Update applies the non-nil fields of upd and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	var settings any
	if upd.Settings != nil {
		s, err := encodeSettings(upd.Settings)
		if err != nil {
			return nil, err
		}
		settings = s
	}

	query :=
		`UPDATE users
		 SET username = COALESCE($2, username),
		     settings = COALESCE($3::jsonb, settings)
		 WHERE id = $1
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, upd.UserName, settings))
	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			return nil, conflict(constraint)
		}
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var settings []byte

	err := row.Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &settings, &user.CreatedAt, &user.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Settings = map[string]any{}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &user.Settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}

	return user, nil
}

func encodeSettings(settings map[string]any) (string, error) {
	if settings == nil {
		return "{}", nil
	}
	b, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	return string(b), nil
}

func conflict(constraint string) error {
	switch constraint {
	case usernameConstraint:
		return common.ErrUsernameTaken
	case emailConstraint:
		return common.ErrEmailTaken
	default:
		return fmt.Errorf("%w: %s", common.ErrorConflict, constraint)
	}
}
