package service

import (
	"database/sql"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService orchestrates login, logout and registration on top of the
// token codec and the refresh token store.
type AuthService struct {
	userRepo       repository.IUserRepository
	tokenService   *TokenService
	refreshService *RefreshTokenService
}

func NewAuthService(userRepo repository.IUserRepository, tokenService *TokenService, refreshService *RefreshTokenService) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		tokenService:   tokenService,
		refreshService: refreshService,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Login verifies credentials, then the disabled flag, then issues the
// token pair. The disabled check runs strictly after the credential check
// so both failures look identical at the transport layer; only the
// internal error kind differs, for logging.
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if !s.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrBadCredentials
	}

	if user.Disabled {
		logger.Log.WithField("email", user.Email).Warn("Login attempt for disabled account")
		return nil, ErrAccountDisabled
	}

	accessToken, err := s.tokenService.Generate(user)
	if err != nil {
		return nil, err
	}

	record, err := s.refreshService.CreateOrReuse(user)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("email", user.Email).Info("User logged in")
	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: record.Token,
	}, nil
}

// Logout revokes the refresh record. Already-issued access tokens stay
// valid until natural expiry; there is no access token blacklist.
func (s *AuthService) Logout(refreshTokenString string) error {
	record, err := s.refreshService.FindByToken(refreshTokenString)
	if err != nil {
		return err
	}
	return s.refreshService.Revoke(record)
}

// Register creates a new user with the USER role and a hashed password.
func (s *AuthService) Register(req model.RegisterRequest) (*model.User, error) {
	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      model.RoleUser,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}
	logger.Log.WithField("email", user.Email).Info("User registered")
	return user, nil
}

// EnsureAdminUser seeds an admin account at startup when none exists.
func (s *AuthService) EnsureAdminUser(email, password string) error {
	_, err := s.userRepo.GetUserByRole(model.RoleAdmin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		FirstName: "System",
		LastName:  "Admin",
		Email:     email,
		Password:  hashedPassword,
		Role:      model.RoleAdmin,
	}
	if err := s.userRepo.CreateUser(admin); err != nil {
		return err
	}
	logger.Log.WithField("email", email).Info("Bootstrap admin account created")
	return nil
}
