package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/mediascribe/mediascribe/internal/config"
	"github.com/mediascribe/mediascribe/internal/database"
	"github.com/mediascribe/mediascribe/internal/queue"
	"github.com/mediascribe/mediascribe/internal/queue/workers"
	"github.com/mediascribe/mediascribe/internal/transcription"
	"github.com/mediascribe/mediascribe/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// The processor caches model handles and must not run
			// concurrently, one job at a time.
			Concurrency: 1,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	processor := transcription.NewProcessor(cfg)
	processorFactory := func(model string) *transcription.Processor {
		c := *cfg
		c.Speech.Model = model
		return transcription.NewProcessor(&c)
	}
	svc := transcription.NewService(db)
	dispatcher := webhook.NewDispatcher(db)
	webhookSvc := webhook.NewService(db, dispatcher)

	registry := queue.NewHandlersRegistry()

	transcriptionWorker := workers.NewTranscriptionWorker(processor, processorFactory, svc, webhookSvc)
	registry.Register(queue.TypeTranscriptionProcess, asynq.HandlerFunc(transcriptionWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 1)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
