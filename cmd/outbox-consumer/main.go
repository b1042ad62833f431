package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/infra"
	"github.com/packvault/platform/internal/projection"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	groupID := os.Getenv("KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = "packvault-projections"
	}

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, groupID, cfg.KafkaEnabled, logger)
	defer consumer.Close()

	store := projection.NewInMemoryStore()
	logger.Info("outbox-consumer starting", "topic", cfg.KafkaTopic, "group_id", groupID)

	for {
		msg, err := consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("outbox-consumer shutting down")
				return nil
			}
			logger.Error("fetch message", "error", err)
			continue
		}

		var event domain.OutboxDraft
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("decode event", "error", err, "offset", msg.Offset)
			consumer.Commit(ctx, msg)
			continue
		}

		if err := projection.Apply(ctx, store, event.EventType, event.Payload); err != nil {
			logger.Error("apply event",
				"error", err,
				"event_id", event.EventID,
				"event_type", event.EventType,
			)
			consumer.Commit(ctx, msg)
			continue
		}

		logger.Info("event applied",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"aggregate_id", event.AggregateID,
		)
		if err := consumer.Commit(ctx, msg); err != nil {
			logger.Error("commit offset", "error", err)
		}
	}
}
