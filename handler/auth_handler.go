package handler

import (
	"encoding/json"
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
)

type AuthHandler struct {
	authService    *service.AuthService
	refreshService *service.RefreshTokenService
	loginLimiter   *service.LoginLimiter
}

func NewAuthHandler(authService *service.AuthService, refreshService *service.RefreshTokenService, loginLimiter *service.LoginLimiter) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		refreshService: refreshService,
		loginLimiter:   loginLimiter,
	}
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201  {object}  model.User
// @Failure      400  {object}  common.AppError
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, err := h.authService.Register(req)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error creating user", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}

// Login godoc
// @Summary      Authenticate and receive a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login payload"
// @Success      200  {object}  model.LoginResponse
// @Failure      401  {object}  common.AppError
// @Failure      429  {object}  common.AppError
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.loginLimiter.Allow(r.Context(), req.Email); err != nil {
		return common.NewAppError(http.StatusTooManyRequests, "Too many login attempts, try again later", err)
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		// Bad credentials and disabled accounts are indistinguishable to
		// the client; the internal error kind only reaches the logs.
		if errors.Is(err, service.ErrBadCredentials) || errors.Is(err, service.ErrAccountDisabled) {
			return common.NewAppError(http.StatusUnauthorized, "Invalid username or password", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	h.loginLimiter.Reset(r.Context(), req.Email)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(resp)
	return nil
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshTokenRequest true "Refresh payload"
// @Success      200  {object}  model.RefreshTokenResponse
// @Failure      401  {object}  model.RefreshTokenResponse
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshTokenRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	accessToken, err := h.refreshService.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenNotFound) ||
			errors.Is(err, service.ErrRefreshTokenRevoked) ||
			errors.Is(err, service.ErrRefreshTokenExpired) {
			// 401 with an explicit null token; no internal detail leaks.
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(model.RefreshTokenResponse{AccessToken: nil})
			return nil
		}
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(model.RefreshTokenResponse{AccessToken: &accessToken})
	return nil
}

// Logout godoc
// @Summary      Revoke the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshTokenRequest true "Logout payload"
// @Success      200  {object}  model.LogoutResponse
// @Failure      401  {object}  common.AppError
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshTokenRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrRefreshTokenNotFound) {
			return common.NewAppError(http.StatusUnauthorized, "Refresh token not found", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(model.LogoutResponse{Message: "Logout successful"})
	return nil
}
