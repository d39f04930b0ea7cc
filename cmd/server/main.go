package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/application/reconcile"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	"github.com/storesync/backend/internal/infrastructure/scheduler"
	"github.com/storesync/backend/internal/infrastructure/storefront"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
	"github.com/storesync/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting catalog sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize database connection with SQL logging through zap
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	bundleRepo := persistence.NewGormBundleRepository(db.DB)
	salesRepo := persistence.NewGormSalesHistoryRepository(db.DB)
	translationRepo := persistence.NewGormTranslationRepository(db.DB)
	serverRepo := persistence.NewGormServerRepository(db.DB)
	linkRepo := persistence.NewGormLinkRepository(db.DB)

	// Storefront gateway
	gateway := storefront.NewWooAdapter(cfg.Sync.RemoteTimeout, log)

	// Reconciliation engine
	reconciler := reconcile.NewReconciler(reconcile.Options{
		Items:        itemRepo,
		Bundles:      bundleRepo,
		Sales:        salesRepo,
		Translations: translationRepo,
		Servers:      serverRepo,
		Links:        linkRepo,
		Gateway:      gateway,
		BranchNamer:  reconcile.DefaultBranchNamer(),
		Logger:       log,
	})

	batch := reconcile.NewBatchService(reconciler, itemRepo, serverRepo, linkRepo, log)

	// Per-item gate: Redis when configured, process-local otherwise
	var gate reconcile.Gate
	if cfg.Redis.Host != "" {
		redisGate, err := cache.NewRedisSyncGate(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisGate.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		gate = redisGate
		log.Info("Redis sync gate enabled",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	} else {
		gate = cache.NewInMemorySyncGate()
		log.Info("In-memory sync gate enabled")
	}
	batch.WithGate(gate, cfg.Sync.GateTTL)

	// Background sync worker (if enabled)
	var worker *scheduler.ItemSyncWorker
	if cfg.Sync.WorkerEnabled {
		workerCfg := scheduler.DefaultItemSyncWorkerConfig()
		workerCfg.PollInterval = cfg.Sync.WorkerInterval
		workerCfg.PollBatchLimit = cfg.Sync.WorkerBatchLimit

		worker, err = scheduler.NewItemSyncWorker(workerCfg, batch, log)
		if err != nil {
			log.Fatal("Failed to create sync worker", zap.Error(err))
		}
		if err := worker.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync worker", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := worker.Stop(ctx); err != nil {
				log.Error("Error stopping sync worker", zap.Error(err))
			}
		}()
		log.Info("Sync worker started",
			zap.Duration("poll_interval", workerCfg.PollInterval),
			zap.Int("poll_batch_limit", workerCfg.PollBatchLimit),
		)
	}

	// Initialize HTTP handlers. The job queue is nil without a worker, in
	// which case batches always run inline.
	var queue handler.JobQueue
	if worker != nil {
		queue = worker
	}
	syncHandler := handler.NewSyncHandler(reconciler, batch, serverRepo, queue, cfg.Sync.DeferThreshold)
	serverHandler := handler.NewServerHandler(serverRepo)
	itemHandler := handler.NewItemHandler(itemRepo, linkRepo)
	systemHandler := handler.NewSystemHandler(db, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so recovery and logging carry it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Liveness endpoint outside API versioning for load balancers
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(systemHandler).
		Register(syncHandler).
		Register(serverHandler).
		Register(itemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
