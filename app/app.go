// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// App holds the wired layers. Integration tests build one against their
// own database and redis instances.
type App struct {
	Router         http.Handler
	DB             *sql.DB
	Redis          *redis.Client
	AuthService    *service.AuthService
	RefreshService *service.RefreshTokenService
}

// Build wires repositories, services and handlers on top of the given
// connections, using the loaded configuration.
func Build(database *sql.DB, redisClient *redis.Client) *App {
	cfg := config.AppConfig

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	tokenService := service.NewTokenService([]byte(cfg.JWT.SecretKey), cfg.JWT.AccessTokenTTL)
	refreshService := service.NewRefreshTokenService(tokenRepo, userRepo, tokenService, cfg.JWT.RefreshTokenTTL)
	authService := service.NewAuthService(userRepo, tokenService, refreshService)
	userService := service.NewUserService(userRepo)
	loginLimiter := service.NewLoginLimiter(redisClient, cfg.Login.MaxAttempts, cfg.Login.AttemptsWindow)

	authHandler := handler.NewAuthHandler(authService, refreshService, loginLimiter)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := handler.NewAuthMiddleware(tokenService, userRepo)

	return &App{
		Router:         router.NewRouter(authHandler, userHandler, authMiddleware),
		DB:             database,
		Redis:          redisClient,
		AuthService:    authService,
		RefreshService: refreshService,
	}
}

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	application := Build(database, redisClient)

	// Seed the admin account on first start.
	bootstrap := config.AppConfig.Bootstrap
	if bootstrap.AdminEmail != "" {
		if err := application.AuthService.EnsureAdminUser(bootstrap.AdminEmail, bootstrap.AdminPassword); err != nil {
			logger.Log.Fatalf("Failed to bootstrap admin account: %v", err)
		}
	}

	// Hygiene sweep for expired refresh tokens. Expiry is also enforced
	// lazily on access, so correctness does not depend on this loop.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepExpiredTokens(sweepCtx, application.RefreshService)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: application.Router,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

func sweepExpiredTokens(ctx context.Context, refreshService *service.RefreshTokenService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := refreshService.DeleteExpired(); err != nil {
				logger.Log.WithError(err).Warn("Expired refresh token sweep failed")
			}
		}
	}
}
