package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/wallet-service/internal/apperrors"
	"github.com/eaglebank/wallet-service/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// IdentityRepository reads and writes authentication identities.
// Identities are registered by the auth service; this repository never inserts.
type IdentityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	query := `
		SELECT id, email, fullname, password_hash, created_at, updated_at
		FROM identities
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail matches the stored address exactly.
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `
		SELECT id, email, fullname, password_hash, created_at, updated_at
		FROM identities
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// Save persists the mutable credential fields of an identity.
func (r *IdentityRepository) Save(ctx context.Context, identity *models.Identity) error {
	query := `
		UPDATE identities
		SET email = $2, password_hash = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		identity.ID, identity.Email, identity.PasswordHash, identity.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.ErrEmailTaken
		}
		return fmt.Errorf("failed to update identity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) scanOne(row *sql.Row) (*models.Identity, error) {
	var identity models.Identity
	err := row.Scan(
		&identity.ID, &identity.Email, &identity.Fullname, &identity.PasswordHash,
		&identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return &identity, nil
}
