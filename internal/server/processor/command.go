package processor

import (
	"worldforge/internal/server/core"
)

// Command is a unified structure for all /world operations
type Command struct {
	Op     string
	UserID string // empty when no session resolved
	Body   []byte // raw request body, op field included
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool
	Created bool // the op inserted a new row; rendered as 201
	Data    any
	Error   *core.Error
}

// NewCommand builds a command from a raw /world body. A body that is not a
// JSON object yields an empty op, which Execute rejects.
func NewCommand(userID string, body []byte) (Command, error) {
	var req core.OpRequest
	if err := decodeStrict(body, &req); err != nil {
		return Command{}, core.InvalidRequest(err)
	}
	return Command{Op: req.Op, UserID: userID, Body: body}, nil
}
