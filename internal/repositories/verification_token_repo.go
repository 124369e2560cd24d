package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/inkpost/inkpost/internal/database"
	"github.com/inkpost/inkpost/internal/models"
)

const tokenColumns = `id, user_id, token_hash, purpose, expires_at, created_at`

// VerificationTokenRepository handles verification token data access
type VerificationTokenRepository struct {
	pool querier
}

func NewVerificationTokenRepository(db *database.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{pool: db.Pool}
}

// scanTokenRow populates a VerificationToken model from a database row
func scanTokenRow(row rowScanner) (*models.VerificationToken, error) {
	var token models.VerificationToken

	err := row.Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.Purpose,
		&token.ExpiresAt, &token.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &token, nil
}

// Create stores a new verification token digest
func (r *VerificationTokenRepository) Create(ctx context.Context, userID, tokenHash, purpose string, expiresAt time.Time) (*models.VerificationToken, error) {
	query := `
		INSERT INTO verification_tokens (user_id, token_hash, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tokenColumns

	token, err := scanTokenRow(r.pool.QueryRow(ctx, query, userID, tokenHash, purpose, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}

	return token, nil
}

// GetByUserAndHash retrieves a token by the exact (user, digest, purpose)
// triple. Redemption of either track goes through this lookup, so a token
// only ever redeems for the account and purpose it was issued for.
func (r *VerificationTokenRepository) GetByUserAndHash(ctx context.Context, userID, tokenHash, purpose string) (*models.VerificationToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM verification_tokens
		WHERE user_id = $1 AND token_hash = $2 AND purpose = $3
	`

	return scanTokenRow(r.pool.QueryRow(ctx, query, userID, tokenHash, purpose))
}

// Consume deletes the single redeemed token by its own id. A consumed token
// row no longer exists, so a second redemption with the same value fails the
// GetByUserAndHash lookup.
func (r *VerificationTokenRepository) Consume(ctx context.Context, id string) error {
	query := `DELETE FROM verification_tokens WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteByUserID deletes all tokens for a user
func (r *VerificationTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM verification_tokens WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tokens for user: %w", err)
	}

	return nil
}

// CleanupExpired deletes tokens past their expiry
func (r *VerificationTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM verification_tokens WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
