package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"tush00nka/taskboard/internal/config"
	"tush00nka/taskboard/internal/handler"
	"tush00nka/taskboard/internal/metrics"
	"tush00nka/taskboard/internal/pkg/auth"
	"tush00nka/taskboard/internal/pkg/storage"
	"tush00nka/taskboard/internal/repository"
	"tush00nka/taskboard/internal/service"
	"tush00nka/taskboard/internal/ws"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"pkt.systems/pslog"
)

// App holds the wired components for one process.
type App struct {
	Server *Server
	Hub    *ws.Hub

	closers []func() error
}

// New wires the application on top of an open database.
func New(cfg *config.Config, db *gorm.DB, logger pslog.Logger) (*App, error) {
	app := &App{}

	store, uploads, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.JWTKey)
	if tokens.Insecure {
		if !cfg.IsDevelopment() {
			return nil, errors.New("JWT_KEY is required outside development")
		}
		logger.Warn("auth.insecure_key", "hint", "set JWT_KEY for production")
	}

	hub := ws.NewHub(logger)
	app.Hub = hub
	publishers := service.Publishers{hub}

	if cfg.RedisAddr != "" {
		rdb, err := repository.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)
		publishers = append(publishers, repository.NewEventRepository(rdb))
		logger.Info("events.redis.enabled", "addr", cfg.RedisAddr)
	}

	registry := prometheus.NewRegistry()
	collectors := metrics.New(registry)

	taskRepo := repository.NewTaskRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	attachmentService := service.NewAttachmentService(
		taskRepo,
		attachmentRepo,
		store,
		publishers,
		logger,
		service.AttachmentOptions{
			MaxFileSize: cfg.MaxFileSize,
			URLPrefix:   cfg.UploadURLPrefix,
		},
	)

	attachmentHandler := handler.NewAttachmentHandler(attachmentService, tokens, collectors, logger)
	eventsHandler := handler.NewEventsHandler(
		hub,
		ws.NewUpgrader(cfg.Origins(), cfg.IsDevelopment()),
		tokens,
		taskRepo,
		logger,
	)

	app.Server = NewServer(logger, ServerOptions{
		AllowedOrigins: cfg.Origins(),
		Metrics:        metrics.Handler(registry),
		Uploads:        uploads,
		UploadsPrefix:  cfg.UploadURLPrefix,
	}, attachmentHandler, eventsHandler)

	return app, nil
}

// newStore returns the configured file store and, for the local backend,
// a handler serving its directory.
func newStore(cfg *config.Config) (storage.Store, http.Handler, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		store, err := storage.NewS3Store(storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3BucketName,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Prefix:          cfg.S3Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.HealthCheck(ctx); err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return store, fileServer(store.Root()), nil
	}
}

func (a *App) Close() {
	a.Hub.Shutdown()
	for _, c := range a.closers {
		c()
	}
}

// Run connects to the database, migrates, and serves until ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger pslog.Logger) error {
	db, err := repository.NewDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := repository.Migrate(db); err != nil {
		return err
	}

	app, err := New(cfg, db, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer app.Close()

	return app.Server.Run(ctx, cfg.ServerPort)
}
