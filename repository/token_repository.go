// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"go-auth-api/logger"
	"go-auth-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	GetByUserID(userID int) (*model.RefreshToken, error)
	GetByToken(token string) (*model.RefreshToken, error)
	Rotate(userID int, newToken string, expiresAt time.Time, now time.Time) (int64, error)
	SetRevoked(id int, revoked bool) error
	Delete(id int) error
	DeleteExpired(now time.Time) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record. The unique constraint on
// user_id makes a concurrent insert for the same user fail; callers
// handle the conflict by re-reading the surviving record.
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token, expires_at, revoked) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.DB.QueryRow(query, token.UserID, token.Token, token.ExpiresAt, token.Revoked).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Warn("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetByUserID retrieves the refresh token record owned by a user.
func (r *TokenRepository) GetByUserID(userID int) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token, expires_at, revoked, created_at FROM refresh_tokens WHERE user_id = $1`
	err := r.DB.QueryRow(query, userID).Scan(&token.ID, &token.UserID, &token.Token, &token.ExpiresAt, &token.Revoked, &token.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to execute get refresh token by user query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return token, nil
}

// GetByToken retrieves a refresh token record by its exact token value.
func (r *TokenRepository) GetByToken(tokenValue string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token, expires_at, revoked, created_at FROM refresh_tokens WHERE token = $1`
	err := r.DB.QueryRow(query, tokenValue).Scan(&token.ID, &token.UserID, &token.Token, &token.ExpiresAt, &token.Revoked, &token.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token by value query")
		}
		return nil, err
	}
	return token, nil
}

// Rotate replaces the token value of a user's record in place, but only if
// the stored record is still expired or revoked at the given instant. The
// conditional update serializes concurrent rotations for the same user:
// whichever login lands first wins, the other sees zero rows and re-reads.
func (r *TokenRepository) Rotate(userID int, newToken string, expiresAt time.Time, now time.Time) (int64, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to rotate refresh token")

	query := `UPDATE refresh_tokens SET token = $2, expires_at = $3, revoked = FALSE WHERE user_id = $1 AND (expires_at <= $4 OR revoked = TRUE)`
	res, err := r.DB.Exec(query, userID, newToken, expiresAt, now)
	if err != nil {
		log.WithError(err).Error("Failed to execute rotate refresh token query")
		return 0, err
	}
	return res.RowsAffected()
}

// SetRevoked flips the revoked flag. Revoked records stay queryable for
// audit until rotation or the expiry sweep removes them.
func (r *TokenRepository) SetRevoked(id int, revoked bool) error {
	query := `UPDATE refresh_tokens SET revoked = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, revoked, id)
	if err != nil {
		logger.Log.WithError(err).WithField("token_id", id).Error("Failed to execute revoke refresh token query")
	}
	return err
}

// Delete removes a refresh token record, freeing the user's uniqueness slot.
func (r *TokenRepository) Delete(id int) error {
	query := `DELETE FROM refresh_tokens WHERE id = $1`
	_, err := r.DB.Exec(query, id)
	if err != nil {
		logger.Log.WithError(err).WithField("token_id", id).Error("Failed to execute delete refresh token query")
	}
	return err
}

// DeleteExpired removes every record past its expiry. Correctness does not
// depend on it; expiry is also checked lazily on access.
func (r *TokenRepository) DeleteExpired(now time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`
	res, err := r.DB.Exec(query, now)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete expired refresh tokens query")
		return 0, err
	}
	return res.RowsAffected()
}
