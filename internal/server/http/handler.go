package http

import (
	"errors"
	"strings"
	"time"

	"worldforge/internal/server/config"
	"worldforge/internal/server/core"
	"worldforge/internal/server/processor"
	"worldforge/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// HTTPHandler handles HTTP requests and routes them to the processor and service
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
	cfg  *config.Config
	log  *zap.Logger
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service, cfg *config.Config, log *zap.Logger) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{proc: proc, svc: svc, cfg: cfg, log: log}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, cfg *config.Config, log *zap.Logger) *fiber.App {
	h := NewHTTPHandler(proc, svc, cfg, log)

	app := fiber.New(fiber.Config{
		ErrorHandler:          h.customErrorHandler,
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Server.Dev}))
	app.Use(requestid.New(requestid.Config{ContextKey: localRequestID}))
	app.Use(h.requestLogger)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: cfg.Server.CORSOrigins != "*",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	resolveSession := svc.ResolveSession
	cookie := cfg.Auth.CookieName

	// Auth routes with their own per-minute budget
	auth := app.Group("/auth")
	authLimit := h.authLimiter()
	auth.Post("/register", authLimit, h.RegisterHandler)
	auth.Post("/login", authLimit, h.LoginHandler)
	auth.Post("/logout", h.LogoutHandler)
	auth.Get("/me", AuthRequired(resolveSession, cookie), h.GetCurrentUserHandler)

	api := app.Group("/")
	api.Use(h.apiLimiter())
	api.Use(contentTypeValidator)

	api.Get("/world", h.GetWorld)
	api.Post("/world", OptionalAuth(resolveSession, cookie), h.WorldOp)

	h.registerRaces(api, AuthRequired(resolveSession, cookie))
	h.registerCatalogs(api, AuthRequired(resolveSession, cookie))

	return app
}

// contentTypeValidator ensures requests with a body send application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPatch {
		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler renders every escaped error as the failure envelope
func (h *HTTPHandler) customErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		response := core.ErrorResponse{Error: fe.Message, Code: core.ErrInternalError}
		switch fe.Code {
		case fiber.StatusNotFound:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		case fiber.StatusUnsupportedMediaType:
			response.Code = core.ErrInvalidContent
		}
		if fe.Code >= fiber.StatusInternalServerError {
			h.logInternal(c, err)
			response.Error = "internal server error"
		}
		return c.Status(fe.Code).JSON(response)
	}

	return h.writeError(c, err)
}

// writeError renders err with the status of its kind
func (h *HTTPHandler) writeError(c *fiber.Ctx, err error) error {
	e := core.AsError(err)
	if e.Kind == core.KindInternal {
		h.logInternal(c, e.Err)
	}
	return c.Status(e.Kind.Status()).JSON(e.Response())
}

func (h *HTTPHandler) logInternal(c *fiber.Ctx, err error) {
	h.log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals(localRequestID)),
		zap.Error(err),
	)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(c.UserContext()),
	})
}

// GetWorld returns one world by ?id= or every world
func (h *HTTPHandler) GetWorld(c *fiber.Ctx) error {
	if raw := c.Query("id"); raw != "" {
		id, err := core.ParseID(raw)
		if err != nil {
			return h.writeError(c, core.Validation("invalid id", err.Error()))
		}
		world, err := h.svc.GetWorld(c.UserContext(), id)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(core.DataResponse{OK: true, Data: world})
	}

	worlds, err := h.svc.ListWorlds(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(core.DataResponse{OK: true, Data: worlds})
}

// WorldOp executes one {op, ...} mutation of a world subtree
func (h *HTTPHandler) WorldOp(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(string)

	cmd, err := processor.NewCommand(userID, c.Body())
	if err != nil {
		return h.writeError(c, err)
	}

	resp := h.proc.Execute(c.UserContext(), cmd)
	if !resp.Success {
		return c.Status(resp.Error.Kind.Status()).JSON(resp.Error.Response())
	}

	status := fiber.StatusOK
	if resp.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(core.DataResponse{OK: true, Data: resp.Data})
}
