package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"worldforge/internal/server/core"

	"github.com/gofiber/fiber/v2"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{1,40}$`)

// parseBody decodes the JSON request body into v
func parseBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return core.InvalidRequest(errors.New("request body is empty"))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return core.InvalidRequest(err)
	}
	return nil
}

// parseValidBody decodes the body and runs struct validation
func parseValidBody(c *fiber.Ctx, v any) error {
	if err := parseBody(c, v); err != nil {
		return err
	}
	return core.Validate(v)
}

// resourceID reads the target id from ?id= or, failing that, from the body
func resourceID(c *fiber.Ctx) (int64, error) {
	if raw := c.Query("id"); raw != "" {
		id, err := core.ParseID(raw)
		if err != nil {
			return 0, core.Validation("invalid id", err.Error())
		}
		return id, nil
	}

	if len(c.Body()) > 0 {
		var body struct {
			ID *core.ID `json:"id"`
		}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return 0, core.InvalidRequest(err)
		}
		if body.ID != nil {
			return body.ID.Int64(), nil
		}
	}

	return 0, core.Validation("validation failed", "id is required")
}

// validateUsername checks the account name format
func validateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return core.Validation("invalid username format", "username must be 1-40 characters, alphanumeric and underscore only")
	}
	return nil
}

// validatePassword checks password strength requirements
func validatePassword(password string) error {
	const (
		minPasswordLength = 8
		maxPasswordLength = 128
	)
	if len(password) < minPasswordLength {
		return core.Validation("weak password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return core.Validation("weak password", fmt.Sprintf("password must not exceed %d characters", maxPasswordLength))
	}

	hasLetter := false
	hasNumber := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsNumber(r):
			hasNumber = true
		}
	}

	if !hasLetter || !hasNumber {
		return core.Validation("weak password", "password must contain at least one letter and one number")
	}
	return nil
}
