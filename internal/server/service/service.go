package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"worldforge/internal/server/core"
	"worldforge/internal/server/storage"

	"go.uber.org/zap"
)

const (
	SessionTTL     = 7 * 24 * time.Hour
	healthDeadline = 2 * time.Second
)

// Options configures a Service
type Options struct {
	JWTSecret  []byte
	SessionTTL time.Duration
	Logger     *zap.Logger
}

// Service coordinates world editing, catalogs, users and storage
type Service struct {
	store      *storage.Store
	jwtSecret  []byte
	sessionTTL time.Duration
	log        *zap.Logger
}

// New creates a service over an opened and migrated store
func New(store *storage.Store, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = SessionTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		jwtSecret:  opts.JWTSecret,
		sessionTTL: opts.SessionTTL,
		log:        opts.Logger,
	}
}

// SessionTTL returns the lifetime of issued session tokens
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, healthDeadline)
	defer cancel()

	if s.store.IsHealthy(ctx) {
		return "ok"
	}
	return "degraded"
}

// Shutdown closes the store
func (s *Service) Shutdown() error {
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

// storeError maps storage sentinels onto caller-visible errors. what names
// the entity the operation targeted.
func storeError(err error, what string) error {
	if err == nil {
		return nil
	}

	var e *core.Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return core.NotFound(what)
	case errors.Is(err, storage.ErrConflict):
		return core.Conflict(what+" name already exists", err)
	case errors.Is(err, storage.ErrInvalidReference):
		nf := core.NotFound("referenced " + what)
		nf.Err = err
		return nf
	default:
		return core.Internal(err)
	}
}
