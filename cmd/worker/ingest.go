package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/swiftbulk/campaign-gateway/internal/config"
	"github.com/swiftbulk/campaign-gateway/internal/db"
	"github.com/swiftbulk/campaign-gateway/internal/events"
	"github.com/swiftbulk/campaign-gateway/internal/logger"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
	"github.com/swiftbulk/campaign-gateway/internal/worker"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Consume delivery events from Kafka into the ClickHouse delivery log",
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level)
	defer func() { _ = logger.Log.Sync() }()

	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka is disabled in config; nothing to ingest")
	}

	chDB, err := db.NewClickHouse(cfg.ClickHouse)
	if err != nil {
		return fmt.Errorf("clickhouse connect: %w", err)
	}
	defer func() { _ = chDB.Close() }()

	consumer := events.NewConsumer(events.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.DeliveryTopic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := &worker.IngestWorker{
		Consumer:   consumer,
		Deliveries: repository.NewDeliveriesRepository(chDB),
		Log:        logger.Log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("delivery ingest starting")
	return w.Run(ctx)
}
