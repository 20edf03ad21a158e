// file: service/refresh_service.go

package service

import (
	"database/sql"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenService owns the lifecycle of refresh token records. No
// other component mutates them. Token values are random UUIDs, which
// carry 122 bits of entropy.
type RefreshTokenService struct {
	tokenRepo    repository.ITokenRepository
	userRepo     repository.IUserRepository
	tokenService *TokenService
	refreshTTL   time.Duration
	now          func() time.Time
}

func NewRefreshTokenService(tokenRepo repository.ITokenRepository, userRepo repository.IUserRepository, tokenService *TokenService, refreshTTL time.Duration) *RefreshTokenService {
	return &RefreshTokenService{
		tokenRepo:    tokenRepo,
		userRepo:     userRepo,
		tokenService: tokenService,
		refreshTTL:   refreshTTL,
		now:          time.Now,
	}
}

// CreateOrReuse returns the user's refresh record, creating or rotating it
// as needed. A usable record is returned as-is; an expired or revoked one
// is regenerated in place (same row, new token value). Exactly one record
// per user survives, even under concurrent logins: the insert races on the
// user_id unique constraint and the rotation is a conditional update, so
// the loser of either race re-reads the winner's record.
func (s *RefreshTokenService) CreateOrReuse(user *model.User) (*model.RefreshToken, error) {
	record, err := s.tokenRepo.GetByUserID(user.ID)
	if err == nil {
		if record.Usable(s.now()) {
			return record, nil
		}
		return s.rotate(user.ID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	record = &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if createErr := s.tokenRepo.Create(record); createErr != nil {
		// Lost the insert race to a concurrent login for the same user.
		logger.Log.WithField("user_id", user.ID).Info("Refresh token insert conflicted, reusing existing record")
		return s.tokenRepo.GetByUserID(user.ID)
	}
	return record, nil
}

func (s *RefreshTokenService) rotate(userID int) (*model.RefreshToken, error) {
	now := s.now()
	if _, err := s.tokenRepo.Rotate(userID, uuid.NewString(), now.Add(s.refreshTTL), now); err != nil {
		return nil, err
	}
	// Zero affected rows means a concurrent login rotated first; either
	// way the current record is the one to hand out.
	return s.tokenRepo.GetByUserID(userID)
}

// FindByToken looks up a record by its exact token value.
func (s *RefreshTokenService) FindByToken(tokenString string) (*model.RefreshToken, error) {
	record, err := s.tokenRepo.GetByToken(tokenString)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return record, nil
}

// Verify checks that a record is still usable. Revocation is reported
// before expiry, so a revoked record never surfaces as expired. An expired
// record is deleted as a side effect, freeing the user's uniqueness slot
// for the next login.
func (s *RefreshTokenService) Verify(record *model.RefreshToken) (*model.RefreshToken, error) {
	if record.Revoked {
		return nil, ErrRefreshTokenRevoked
	}
	if !s.now().Before(record.ExpiresAt) {
		if err := s.tokenRepo.Delete(record.ID); err != nil {
			logger.Log.WithError(err).WithField("token_id", record.ID).Warn("Failed to delete expired refresh token")
		}
		return nil, ErrRefreshTokenExpired
	}
	return record, nil
}

// Revoke marks the record revoked and persists it. The record stays
// queryable for audit until rotation or the expiry sweep removes it.
func (s *RefreshTokenService) Revoke(record *model.RefreshToken) error {
	if err := s.tokenRepo.SetRevoked(record.ID, true); err != nil {
		return err
	}
	record.Revoked = true
	logger.Log.WithField("user_id", record.UserID).Info("Refresh token revoked")
	return nil
}

// RefreshAccessToken mints a new access token for the owner of a refresh
// token. The refresh token itself never rotates here; it only rotates on
// re-login after expiry or revocation.
func (s *RefreshTokenService) RefreshAccessToken(tokenString string) (string, error) {
	record, err := s.FindByToken(tokenString)
	if err != nil {
		return "", err
	}

	if _, err := s.Verify(record); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetUserByID(record.UserID)
	if err != nil {
		return "", err
	}

	return s.tokenService.Generate(user)
}

// DeleteExpired sweeps records past their expiry. It is hygiene only;
// expiry is also enforced lazily on every access.
func (s *RefreshTokenService) DeleteExpired() (int64, error) {
	deleted, err := s.tokenRepo.DeleteExpired(s.now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Log.WithField("deleted", deleted).Info("Expired refresh tokens swept")
	}
	return deleted, nil
}
