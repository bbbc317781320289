// Package main implements the worldforge server: a JSON API for collaborative
// worldbuilding backed by SQLite, plus database maintenance commands.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worldforge/cmd/worldforge-server/cli"
	"worldforge/internal/server/config"
	"worldforge/internal/server/http"
	"worldforge/internal/server/logging"
	"worldforge/internal/server/processor"
	"worldforge/internal/server/service"
	"worldforge/internal/server/storage"

	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	devSecret               = "dev-secret-minimum-32-characters-long"
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	// Command-line flags override the config file and environment
	var (
		configPath  = flag.String("config", "", "Path to TOML config file")
		apiHost     = flag.String("api-host", "", "API server host")
		apiPort     = flag.Int("api-port", 0, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (fixed session secret, relaxed rate limits)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiHost != "" {
		cfg.Server.Host = *apiHost
	}
	if *apiPort != 0 {
		cfg.Server.Port = *apiPort
	}
	if *dev {
		cfg.Server.Dev = true
	}
	if *storagePath != "" {
		cfg.Database.Path = *storagePath
	}
	if *pidPath != "" {
		cfg.Server.PIDFile = *pidPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Validate PID flags
	if *pidLock && cfg.Server.PIDFile == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, *pidLock, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, pidLock bool, logger *zap.Logger) error {
	// Manage PID file if requested
	if cfg.Server.PIDFile != "" {
		cleanup, err := managePIDFile(cfg.Server.PIDFile, pidLock)
		if err != nil {
			return fmt.Errorf("manage PID file: %w", err)
		}
		defer cleanup()
		logger.Info("PID file created", zap.String("path", cfg.Server.PIDFile), zap.Bool("lock", pidLock))
	}

	// 1. Open storage and apply migrations
	logger.Info("initializing storage", zap.String("path", cfg.Database.Path))
	store, err := storage.NewStore(cfg.Database.Path, storage.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
		Logger:       logger.Named("storage"),
	})
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := store.InitDB(context.Background()); err != nil {
		store.Close()
		return fmt.Errorf("initialize schema: %w", err)
	}

	// 2. Session secret management
	jwtSecret, err := sessionSecret(cfg, logger)
	if err != nil {
		store.Close()
		return err
	}

	svc := service.New(store, service.Options{
		JWTSecret:  jwtSecret,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     logger.Named("service"),
	})

	// 3. Processor dispatches /world operations onto the service
	proc := processor.New(svc, logger.Named("processor"))

	// 4. Fiber app, injecting processor and service
	app := http.NewFiberApp(proc, svc, cfg, logger.Named("http"))

	addr := cfg.Addr()
	go func() {
		logger.Info("worldforge API server starting",
			zap.String("addr", "http://"+addr),
			zap.Bool("dev", cfg.Server.Dev),
			zap.Bool("rate_limit", cfg.RateLimit.Enabled),
			zap.Int("world_ops", len(proc.Ops())),
		)
		if err := app.Listen(addr); err != nil {
			logger.Error("API server listen error", zap.Error(err))
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	if err := svc.Shutdown(); err != nil {
		logger.Warn("service shutdown error", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// sessionSecret returns the configured secret, a fixed one in dev mode, or a
// random one that invalidates sessions on restart
func sessionSecret(cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	switch {
	case cfg.Auth.Secret != "":
		return []byte(cfg.Auth.Secret), nil
	case cfg.Server.Dev:
		logger.Info("using fixed session secret (dev mode)")
		return []byte(devSecret), nil
	default:
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Info("session secret generated (sessions valid until restart)")
		return secret, nil
	}
}
