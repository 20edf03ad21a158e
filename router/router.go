package router

import (
	"go-auth-api/handler"
	"go-auth-api/model"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter wires the route policy: auth endpoints and health are public,
// /api/v1/user requires any authenticated role, /api/v1/admin requires the
// admin role. The auth middleware runs on every protected route; public
// routes skip it entirely.
func NewRouter(authHandler *handler.AuthHandler, userHandler *handler.UserHandler, authMiddleware *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	// Public routes.
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	mux.Handle("POST /api/v1/auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /api/v1/auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /api/v1/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /api/v1/auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	// Any authenticated role.
	userChain := func(h http.Handler) http.Handler {
		return authMiddleware.Handler(handler.RequireRole(model.RoleUser)(h))
	}
	mux.Handle("GET /api/v1/user/me", userChain(handler.ErrorHandlingMiddleware(userHandler.Me)))

	// Admin only.
	adminChain := func(h http.Handler) http.Handler {
		return authMiddleware.Handler(handler.RequireRole(model.RoleAdmin)(h))
	}
	mux.Handle("GET /api/v1/admin/users", adminChain(handler.ErrorHandlingMiddleware(userHandler.ListUsers)))
	mux.Handle("PUT /api/v1/admin/users/{id}/role", adminChain(handler.ErrorHandlingMiddleware(userHandler.UpdateUserRole)))
	mux.Handle("PUT /api/v1/admin/users/{id}/disable", adminChain(handler.ErrorHandlingMiddleware(userHandler.DisableUser)))
	mux.Handle("DELETE /api/v1/admin/users/{id}", adminChain(handler.ErrorHandlingMiddleware(userHandler.DeleteUser)))

	return mux
}
