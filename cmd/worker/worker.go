package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fdv-chatbot-platform/internal/app"
	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/internal/queue"
	"fdv-chatbot-platform/internal/scheduler"
	"fdv-chatbot-platform/internal/telemetry"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	cfg.ServiceName += "-worker"
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer(cfg)
	if err != nil {
		log.Printf("Tracing disabled: %v", err)
	} else {
		defer shutdownTracer()
	}
	metrics, err := telemetry.InitMetrics(cfg.ServiceName)
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	core, err := app.NewCore(cfg, metrics)
	if err != nil {
		log.Fatal("Failed to assemble indexer:", err)
	}

	redisOpt, err := config.AsynqRedisOpt(cfg)
	if err != nil {
		log.Fatal("Invalid Redis configuration:", err)
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				queue.QueueCritical: 6,
				queue.QueueDefault:  3,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	queue.NewTaskProcessor(core.Indexer).Register(mux)

	// The worker owns the periodic rebuild so that several API replicas do
	// not each run it.
	if cfg.RebuildCron != "" {
		client := asynq.NewClient(redisOpt)
		defer client.Close()

		sched := scheduler.NewScheduler()
		err := sched.ScheduleCron(scheduler.RebuildTag, cfg.RebuildCron, func(ctx context.Context) error {
			_, err := client.EnqueueContext(ctx, queue.NewRebuildAllTask())
			return err
		})
		if err != nil {
			log.Fatal("Invalid REBUILD_CRON:", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	logger.Info("Starting Asynq worker",
		"concurrency", cfg.WorkerConcurrency,
		"documents_dir", cfg.DocumentsDir,
		"index_dir", cfg.IndexDir,
		"rebuild_cron", cfg.RebuildCron,
	)

	if err := server.Start(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker")
	server.Shutdown()
}
