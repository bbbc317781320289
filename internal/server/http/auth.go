package http

import (
	"errors"
	"time"

	"worldforge/internal/server/core"
	"worldforge/internal/server/service"

	"github.com/gofiber/fiber/v2"
)

// AuthResponse contains the session token and user information
type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterHandler creates a new user account and opens a session
func (h *HTTPHandler) RegisterHandler(c *fiber.Ctx) error {
	var req core.RegisterRequest
	if err := parseValidBody(c, &req); err != nil {
		return h.writeError(c, err)
	}
	if err := validateUsername(req.Username); err != nil {
		return h.writeError(c, err)
	}
	if err := validatePassword(req.Password); err != nil {
		return h.writeError(c, err)
	}

	user, err := h.svc.CreateUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return h.writeError(c, err)
	}

	resp, err := h.startSession(c, user)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(core.DataResponse{OK: true, Data: resp})
}

// LoginHandler authenticates a user and opens a session
func (h *HTTPHandler) LoginHandler(c *fiber.Ctx) error {
	var req core.LoginRequest
	if err := parseValidBody(c, &req); err != nil {
		return h.writeError(c, err)
	}

	user, err := h.svc.AuthenticateUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Same response for unknown users and wrong passwords
			e := core.Unauthorized()
			e.Message = "invalid credentials"
			return h.writeError(c, e)
		}
		return h.writeError(c, err)
	}

	resp, err := h.startSession(c, user)
	if err != nil {
		return h.writeError(c, err)
	}
	h.svc.UpdateLastLogin(c.UserContext(), user.UserID)

	return c.JSON(core.DataResponse{OK: true, Data: resp})
}

// LogoutHandler clears the session cookie. Tokens are stateless and expire on their own.
func (h *HTTPHandler) LogoutHandler(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.Auth.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(core.DataResponse{OK: true, Data: nil})
}

// GetCurrentUserHandler returns the session's user
func (h *HTTPHandler) GetCurrentUserHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(string)

	user, err := h.svc.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(core.DataResponse{OK: true, Data: user})
}

// startSession issues a token and sets it as the session cookie
func (h *HTTPHandler) startSession(c *fiber.Ctx, user *service.User) (AuthResponse, error) {
	token, err := h.svc.GenerateUserToken(c.UserContext(), user.UserID)
	if err != nil {
		return AuthResponse{}, core.Internal(err)
	}
	expiresAt := time.Now().Add(h.svc.SessionTTL())

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.Auth.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return AuthResponse{
		Token:     token,
		UserID:    user.UserID,
		Username:  user.Username,
		ExpiresAt: expiresAt,
	}, nil
}
