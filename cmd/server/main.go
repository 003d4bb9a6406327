package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appidentity "github.com/clientportal/backend/internal/application/identity"
	appproject "github.com/clientportal/backend/internal/application/project"
	"github.com/clientportal/backend/internal/infrastructure/auth"
	"github.com/clientportal/backend/internal/infrastructure/billing"
	"github.com/clientportal/backend/internal/infrastructure/cache"
	"github.com/clientportal/backend/internal/infrastructure/config"
	"github.com/clientportal/backend/internal/infrastructure/logger"
	"github.com/clientportal/backend/internal/infrastructure/persistence"
	"github.com/clientportal/backend/internal/infrastructure/storage"
	"github.com/clientportal/backend/internal/interfaces/http/handler"
	"github.com/clientportal/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("starting portal backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	gormLevel := gormlogger.Warn
	if cfg.App.Env == "development" {
		gormLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, gormLevel)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable at startup, caching degraded", zap.Error(err))
		}
		cancel()
	}

	tokenStore := billing.NewRedisTokenStore(redisClient, cfg.Billing.TokenTTL)
	billingClient := billing.NewClient(&cfg.Billing,
		billing.ResolveTokenProvider(tokenStore, cfg.Billing.FallbackToken), log)

	objectStore, err := buildObjectStorage(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	views := cache.NewProjectViewCache(&cfg.Cache, redisClient, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	noteRepo := persistence.NewGormNoteRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Application services
	resolver := appproject.NewResolver(projectRepo, userRepo, billingClient, log)
	projectService := appproject.NewService(resolver, projectRepo, userRepo, billingClient, views, log)
	noteService := appproject.NewNoteService(resolver, noteRepo, log)
	documentService := appproject.NewDocumentService(resolver, documentRepo, objectStore, log)
	invoiceService := appproject.NewInvoiceService(resolver, invoiceRepo, billingClient, log)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)

	// HTTP layer
	r, err := router.New(cfg, jwtService, log)
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}
	r.Register(
		handler.NewAuthHandler(authService, log),
		handler.NewProjectHandler(projectService, log),
		handler.NewNoteHandler(noteService, log),
		handler.NewDocumentHandler(documentService, log),
		handler.NewInvoiceHandler(invoiceService, log),
		handler.NewBillingConnectHandler(billingClient, tokenStore, redisClient, log),
	)
	handler.NewSystemHandler(db, redisClient, log).RegisterRoutes(r.Engine())

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Engine(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// buildObjectStorage picks S3 when an endpoint is configured, otherwise the
// in-memory stub so local development works without MinIO.
func buildObjectStorage(cfg *config.Config, log *zap.Logger) (storage.ObjectStorage, error) {
	if cfg.Storage.Endpoint == "" && cfg.Storage.Bucket == "" {
		log.Warn("no object storage configured, using in-memory stub")
		return storage.NewStubObjectStorage(), nil
	}

	store, err := storage.NewS3ObjectStorage(&cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
