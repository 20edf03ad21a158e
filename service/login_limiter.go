// file: service/login_limiter.go

package service

import (
	"context"
	"go-auth-api/logger"
	"time"
)

// LoginLimiter throttles login attempts per email with a Redis counter.
// It runs before the credential check so brute-force traffic never
// reaches bcrypt.
type LoginLimiter struct {
	cache       ICacheClient
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(cache ICacheClient, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		cache:       cache,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow records an attempt and fails with ErrTooManyAttempts once the
// window's budget is spent. A Redis outage must not lock anyone out, so
// cache errors are logged and the attempt is allowed.
func (l *LoginLimiter) Allow(ctx context.Context, email string) error {
	key := loginAttemptsKey(email)

	count, err := l.cache.Incr(ctx, key).Result()
	if err != nil {
		logger.Log.WithError(err).Warn("Login limiter cache unavailable, allowing attempt")
		return nil
	}

	if count == 1 {
		if err := l.cache.Expire(ctx, key, l.window).Err(); err != nil {
			logger.Log.WithError(err).Warn("Failed to set login limiter window")
		}
	}

	if count > int64(l.maxAttempts) {
		logger.Log.WithField("email", email).Warn("Login attempts throttled")
		return ErrTooManyAttempts
	}
	return nil
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if err := l.cache.Del(ctx, loginAttemptsKey(email)).Err(); err != nil {
		logger.Log.WithError(err).Warn("Failed to reset login attempt counter")
	}
}

func loginAttemptsKey(email string) string {
	return "login_attempts:" + email
}
