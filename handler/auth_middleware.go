package handler

import (
	"context"
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/service"
	"net/http"
	"strings"
)

type contextKey string

// UserContextKey holds the authenticated *model.User for the current
// request. It is set at most once per request and never shared across
// requests.
const UserContextKey contextKey = "currentUser"

const bearerPrefix = "Bearer"

// AuthMiddleware converts a bearer token into an authenticated user in the
// request context. Requests without a bearer header pass through
// unauthenticated; route policy downstream decides whether that is
// acceptable.
type AuthMiddleware struct {
	tokenService *service.TokenService
	userRepo     repository.IUserRepository
}

func NewAuthMiddleware(tokenService *service.TokenService, userRepo repository.IUserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		userRepo:     userRepo,
	}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

		subject, err := m.tokenService.ExtractSubject(tokenString)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenMalformed),
				errors.Is(err, service.ErrTokenSignatureInvalid),
				errors.Is(err, service.ErrTokenExpired):
				common.NewAppError(http.StatusUnauthorized, "Invalid JWT token", err).Send(w, r)
			default:
				common.NewAppError(http.StatusInternalServerError, "JWT token processing failed", err).Send(w, r)
			}
			return
		}

		if subject != "" && CurrentUser(r.Context()) == nil {
			user, err := m.userRepo.GetUserByEmail(subject)
			if err != nil {
				// The subject passed signature verification, so a missing
				// user is a data inconsistency, not a client error.
				common.NewAppError(http.StatusInternalServerError, "Internal server error", err).Send(w, r)
				return
			}

			if err := m.tokenService.ValidateForUser(tokenString, user); err != nil {
				common.NewAppError(http.StatusUnauthorized, "JWT token is invalid or expired", err).Send(w, r)
				return
			}

			r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
		}

		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user from the request context, or
// nil for an unauthenticated request.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserContextKey).(*model.User)
	return user
}

// RequireAuth rejects unauthenticated requests with a 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			common.NewAppError(http.StatusUnauthorized, "Unauthorized or invalid token", nil).Send(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole enforces the route's role policy. The admin role carries the
// user authority, so admins pass user routes but not the other way around.
func RequireRole(required model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				common.NewAppError(http.StatusUnauthorized, "Unauthorized or invalid token", nil).Send(w, r)
				return
			}
			if !user.Role.HasAuthority(required) {
				common.NewAppError(http.StatusForbidden, "Access denied", nil).Send(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
