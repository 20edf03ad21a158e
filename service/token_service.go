// file: service/token_service.go

package service

import (
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies the signed access tokens. The signing
// key and clock are injected at construction so tests can pin both; the
// key is immutable for the process lifetime and safe to share.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenService(secret []byte, accessTTL time.Duration) *TokenService {
	return &TokenService{
		secret:    secret,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// Generate builds and signs an access token for the user with subject,
// issued-at and expiry claims. It has no side effects.
func (s *TokenService) Generate(user *model.User) (string, error) {
	now := s.now()

	claims := &jwt.RegisteredClaims{
		Subject:   user.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		logger.Log.WithError(err).WithField("email", user.Email).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// Verify parses the token, checks the signature and then the expiry, and
// returns the subject claim. The signature is always checked before any
// claim is trusted.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractSubject returns the subject claim. It runs the same parse-time
// checks as Verify; the authoritative per-principal check is ValidateForUser.
func (s *TokenService) ExtractSubject(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ValidateForUser re-verifies the full token against a resolved principal.
// A valid signature with a mismatched subject fails with ErrTokenInvalid.
func (s *TokenService) ValidateForUser(tokenString string, user *model.User) error {
	subject, err := s.Verify(tokenString)
	if err != nil {
		return err
	}
	if subject != user.Email {
		logger.Log.WithField("subject", subject).Warn("Token subject does not match resolved user")
		return ErrTokenInvalid
	}
	return nil
}

func (s *TokenService) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	return claims, nil
}

// mapJWTError translates jwt/v5 parse errors into the sentinel taxonomy.
// Signature failures take precedence over expiry so a forged token never
// learns whether its claims would have been accepted.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return err
	}
}
