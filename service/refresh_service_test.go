// file: service/refresh_service_test.go

package service

import (
	"database/sql"
	"errors"
	"go-auth-api/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(token *model.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}
func (m *mockTokenRepo) GetByUserID(userID int) (*model.RefreshToken, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *mockTokenRepo) GetByToken(token string) (*model.RefreshToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *mockTokenRepo) Rotate(userID int, newToken string, expiresAt time.Time, now time.Time) (int64, error) {
	args := m.Called(userID, newToken, expiresAt, now)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockTokenRepo) SetRevoked(id int, revoked bool) error {
	args := m.Called(id, revoked)
	return args.Error(0)
}
func (m *mockTokenRepo) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *mockTokenRepo) DeleteExpired(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

func newTestRefreshService(tokenRepo *mockTokenRepo, userRepo *mockUserRepo, now time.Time) *RefreshTokenService {
	tokenService := newTestTokenService(15*time.Minute, now)
	svc := NewRefreshTokenService(tokenRepo, userRepo, tokenService, 168*time.Hour)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRefreshTokenService_CreateOrReuse(t *testing.T) {
	now := time.Now()
	user := &model.User{ID: 1, Email: "a@b.com"}

	t.Run("creates a new record when none exists", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByUserID", 1).Return(nil, sql.ErrNoRows).Once()
		tokenRepo.On("Create", mock.MatchedBy(func(rec *model.RefreshToken) bool {
			return rec.UserID == 1 && rec.Token != "" && rec.ExpiresAt.After(now)
		})).Return(nil).Once()

		svc := newTestRefreshService(tokenRepo, nil, now)
		record, err := svc.CreateOrReuse(user)

		assert.NoError(t, err)
		assert.False(t, record.Revoked)
		assert.Greater(t, len(record.Token), 8)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("reuses an unexpired record", func(t *testing.T) {
		existing := &model.RefreshToken{ID: 5, UserID: 1, Token: "existing-token", ExpiresAt: now.Add(time.Hour)}
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByUserID", 1).Return(existing, nil).Twice()

		svc := newTestRefreshService(tokenRepo, nil, now)

		first, err := svc.CreateOrReuse(user)
		assert.NoError(t, err)
		second, err := svc.CreateOrReuse(user)
		assert.NoError(t, err)

		assert.Equal(t, first.Token, second.Token)
		tokenRepo.AssertNotCalled(t, "Create")
		tokenRepo.AssertNotCalled(t, "Rotate")
	})

	t.Run("rotates an expired record in place", func(t *testing.T) {
		expired := &model.RefreshToken{ID: 5, UserID: 1, Token: "old-token", ExpiresAt: now.Add(-time.Hour)}
		rotated := &model.RefreshToken{ID: 5, UserID: 1, Token: "new-token", ExpiresAt: now.Add(168 * time.Hour)}

		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByUserID", 1).Return(expired, nil).Once()
		tokenRepo.On("Rotate", 1, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"), now).Return(int64(1), nil).Once()
		tokenRepo.On("GetByUserID", 1).Return(rotated, nil).Once()

		svc := newTestRefreshService(tokenRepo, nil, now)
		record, err := svc.CreateOrReuse(user)

		assert.NoError(t, err)
		assert.Equal(t, expired.ID, record.ID, "rotation must keep the record identity")
		assert.NotEqual(t, expired.Token, record.Token)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("lost rotation race falls back to the winner's record", func(t *testing.T) {
		expired := &model.RefreshToken{ID: 5, UserID: 1, Token: "old-token", ExpiresAt: now.Add(-time.Hour)}
		winner := &model.RefreshToken{ID: 5, UserID: 1, Token: "winner-token", ExpiresAt: now.Add(168 * time.Hour)}

		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByUserID", 1).Return(expired, nil).Once()
		tokenRepo.On("Rotate", 1, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"), now).Return(int64(0), nil).Once()
		tokenRepo.On("GetByUserID", 1).Return(winner, nil).Once()

		svc := newTestRefreshService(tokenRepo, nil, now)
		record, err := svc.CreateOrReuse(user)

		assert.NoError(t, err)
		assert.Equal(t, "winner-token", record.Token)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("lost insert race reuses the concurrent record", func(t *testing.T) {
		winner := &model.RefreshToken{ID: 9, UserID: 1, Token: "winner-token", ExpiresAt: now.Add(168 * time.Hour)}

		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByUserID", 1).Return(nil, sql.ErrNoRows).Once()
		tokenRepo.On("Create", mock.Anything).Return(errors.New("duplicate key value violates unique constraint")).Once()
		tokenRepo.On("GetByUserID", 1).Return(winner, nil).Once()

		svc := newTestRefreshService(tokenRepo, nil, now)
		record, err := svc.CreateOrReuse(user)

		assert.NoError(t, err)
		assert.Equal(t, "winner-token", record.Token)
		tokenRepo.AssertExpectations(t)
	})
}

func TestRefreshTokenService_Verify(t *testing.T) {
	now := time.Now()

	t.Run("usable record passes", func(t *testing.T) {
		record := &model.RefreshToken{ID: 1, ExpiresAt: now.Add(time.Hour)}
		svc := newTestRefreshService(new(mockTokenRepo), nil, now)

		verified, err := svc.Verify(record)
		assert.NoError(t, err)
		assert.Equal(t, record, verified)
	})

	t.Run("revoked wins over expired", func(t *testing.T) {
		record := &model.RefreshToken{ID: 1, Revoked: true, ExpiresAt: now.Add(-time.Hour)}
		tokenRepo := new(mockTokenRepo)
		svc := newTestRefreshService(tokenRepo, nil, now)

		_, err := svc.Verify(record)
		assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
		tokenRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("expired record is deleted", func(t *testing.T) {
		record := &model.RefreshToken{ID: 1, ExpiresAt: now.Add(-time.Hour)}
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("Delete", 1).Return(nil).Once()
		svc := newTestRefreshService(tokenRepo, nil, now)

		_, err := svc.Verify(record)
		assert.ErrorIs(t, err, ErrRefreshTokenExpired)
		tokenRepo.AssertExpectations(t)
	})
}

func TestRefreshTokenService_RefreshAccessToken(t *testing.T) {
	now := time.Now()
	user := &model.User{ID: 1, Email: "a@b.com"}

	t.Run("unknown token fails with not found", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByToken", "never-issued").Return(nil, sql.ErrNoRows).Once()

		svc := newTestRefreshService(tokenRepo, new(mockUserRepo), now)
		_, err := svc.RefreshAccessToken("never-issued")

		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	})

	t.Run("issues a new access token for the owner", func(t *testing.T) {
		record := &model.RefreshToken{ID: 1, UserID: 1, Token: "valid", ExpiresAt: now.Add(time.Hour)}
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByToken", "valid").Return(record, nil).Once()
		userRepo := new(mockUserRepo)
		userRepo.On("GetUserByID", 1).Return(user, nil).Once()

		svc := newTestRefreshService(tokenRepo, userRepo, now)
		accessToken, err := svc.RefreshAccessToken("valid")

		assert.NoError(t, err)
		subject, err := svc.tokenService.Verify(accessToken)
		assert.NoError(t, err)
		assert.Equal(t, user.Email, subject)
	})

	t.Run("revoked token fails without deletion", func(t *testing.T) {
		record := &model.RefreshToken{ID: 1, UserID: 1, Token: "revoked", Revoked: true, ExpiresAt: now.Add(time.Hour)}
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByToken", "revoked").Return(record, nil).Once()

		svc := newTestRefreshService(tokenRepo, new(mockUserRepo), now)
		_, err := svc.RefreshAccessToken("revoked")

		assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
		tokenRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("expired token fails and frees the slot", func(t *testing.T) {
		record := &model.RefreshToken{ID: 1, UserID: 1, Token: "expired", ExpiresAt: now.Add(-time.Hour)}
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("GetByToken", "expired").Return(record, nil).Once()
		tokenRepo.On("Delete", 1).Return(nil).Once()

		svc := newTestRefreshService(tokenRepo, new(mockUserRepo), now)
		_, err := svc.RefreshAccessToken("expired")

		assert.ErrorIs(t, err, ErrRefreshTokenExpired)
		tokenRepo.AssertExpectations(t)
	})
}

func TestRefreshTokenService_Revoke(t *testing.T) {
	now := time.Now()
	record := &model.RefreshToken{ID: 1, UserID: 1, ExpiresAt: now.Add(-time.Hour)}

	tokenRepo := new(mockTokenRepo)
	tokenRepo.On("SetRevoked", 1, true).Return(nil).Once()

	svc := newTestRefreshService(tokenRepo, nil, now)
	assert.NoError(t, svc.Revoke(record))
	assert.True(t, record.Revoked)

	// Once revoked, verification reports revocation, never expiry.
	_, err := svc.Verify(record)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
	tokenRepo.AssertExpectations(t)
}

func TestRefreshTokenService_DeleteExpired(t *testing.T) {
	now := time.Now()
	tokenRepo := new(mockTokenRepo)
	tokenRepo.On("DeleteExpired", now).Return(int64(3), nil).Once()

	svc := newTestRefreshService(tokenRepo, nil, now)
	deleted, err := svc.DeleteExpired()

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	tokenRepo.AssertExpectations(t)
}
