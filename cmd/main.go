package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fdv-chatbot-platform/internal/app"
	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/database"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/internal/queue"
	"fdv-chatbot-platform/internal/scheduler"
	"fdv-chatbot-platform/internal/telemetry"
	"fdv-chatbot-platform/middleware"
	"fdv-chatbot-platform/routes"
	"fdv-chatbot-platform/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize tracing:", err)
	}
	defer shutdownTracer()

	meterProvider, err := telemetry.InitMeterProvider(cfg)
	if err != nil {
		log.Fatal("Failed to initialize metrics exporter:", err)
	}
	defer meterProvider.Shutdown(context.Background())
	metrics, err := telemetry.InitMetrics(cfg.ServiceName)
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Redis backs shared sessions, the rebuild queue and the rate limiter.
	var rdb *redis.Client
	if cfg.SessionBackend == "redis" || cfg.AsyncRebuild {
		rdb, err = config.NewRedisClient(cfg)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer rdb.Close()
	}

	core, err := app.NewCore(cfg, metrics)
	if err != nil {
		log.Fatal("Failed to assemble index:", err)
	}
	sessions, err := core.NewSessionStore(ctx, rdb)
	if err != nil {
		log.Fatal("Failed to create session store:", err)
	}
	answerer, closeAnswerer, err := core.NewAnswerer(false)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer closeAnswerer()

	var transcripts services.TranscriptStore
	if cfg.MongoURI != "" {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		}()
		transcripts = database.NewMessageStore(mongoClient.Database(cfg.DBName), metrics)
	}

	assistant := services.NewAssistant(core.NewRetriever(sessions), answerer, transcripts, cfg.AITimeout)

	var enqueuer queue.Enqueuer
	if cfg.AsyncRebuild {
		redisOpt, err := config.AsynqRedisOpt(cfg)
		if err != nil {
			log.Fatal("Invalid Redis configuration:", err)
		}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		enqueuer = client
	} else if cfg.RebuildCron != "" {
		// without a worker the server runs the periodic rebuild itself
		sched := scheduler.NewScheduler()
		err := sched.ScheduleCron(scheduler.RebuildTag, cfg.RebuildCron, func(ctx context.Context) error {
			_, err := core.Indexer.BuildAll(ctx)
			return err
		})
		if err != nil {
			log.Fatal("Invalid REBUILD_CRON:", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware(cfg.ServiceName))
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	var limiterStore redis.Cmdable
	if rdb != nil {
		limiterStore = rdb
	}
	router.Use(middleware.NewRateLimiter(limiterStore, cfg.RateLimitReqs, time.Duration(cfg.RateLimitWindow)*time.Second).Middleware())

	routes.SetupHealthRoutes(router, meterProvider.Handler())
	routes.SetupDashboardRoutes(router)
	routes.SetupChatRoutes(router, assistant, core.Library, core.Store)
	routes.SetupAdminRoutes(router, cfg, core.Library, core.Indexer, enqueuer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			"port", cfg.Port,
			"documents_dir", cfg.DocumentsDir,
			"index_dir", cfg.IndexDir,
			"session_backend", cfg.SessionBackend,
			"async_rebuild", cfg.AsyncRebuild,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
