package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"worldforge/internal/server/core"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

const (
	localUserID    = "userID"
	localRequestID = "requestid"
)

// SessionResolver maps a session token to the user it belongs to
type SessionResolver func(ctx context.Context, token string) (userID string, err error)

// AuthRequired rejects requests without a valid session
func AuthRequired(resolve SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c, cookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(core.Unauthorized().Response())
		}

		userID, err := resolve(c.UserContext(), token)
		if err != nil {
			e := core.Unauthorized()
			e.Details = "invalid or expired session"
			return c.Status(fiber.StatusUnauthorized).JSON(e.Response())
		}

		c.Locals(localUserID, userID)
		return c.Next()
	}
}

// OptionalAuth resolves the session if present but allows anonymous access
func OptionalAuth(resolve SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c, cookieName)
		if token == "" {
			return c.Next()
		}

		userID, err := resolve(c.UserContext(), token)
		if err == nil {
			c.Locals(localUserID, userID)
		}
		// Continue regardless of token validity
		return c.Next()
	}
}

// sessionToken reads the bearer header first, then the session cookie
func sessionToken(c *fiber.Ctx, cookieName string) string {
	if token := extractBearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
		return token
	}
	return c.Cookies(cookieName)
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// requestLogger writes one line per request once the error handler has set the status
func (h *HTTPHandler) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	chainErr := c.Next()
	if chainErr != nil {
		if err := c.App().ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	h.log.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
		zap.Any("request_id", c.Locals(localRequestID)),
	)
	return nil
}

// clientIP prefers the first X-Forwarded-For hop
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	return c.IP()
}

func (h *HTTPHandler) apiLimiter() fiber.Handler {
	rl := h.cfg.RateLimit
	if !rl.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	maxReq := rl.RequestsPerSecond
	if h.cfg.Server.Dev {
		maxReq *= 2
	}
	return limiter.New(limiter.Config{
		Max:          maxReq,
		Expiration:   1 * time.Second,
		KeyGenerator: clientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	})
}

func (h *HTTPHandler) authLimiter() fiber.Handler {
	rl := h.cfg.RateLimit
	if !rl.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:          rl.AuthPerMinute,
		Expiration:   1 * time.Minute,
		KeyGenerator: clientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d attempts per minute allowed", rl.AuthPerMinute),
			})
		},
	})
}
