package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/swiftbulk/campaign-gateway/internal/config"
	"github.com/swiftbulk/campaign-gateway/internal/db"
	"github.com/swiftbulk/campaign-gateway/internal/events"
	"github.com/swiftbulk/campaign-gateway/internal/logger"
	"github.com/swiftbulk/campaign-gateway/internal/metrics"
	"github.com/swiftbulk/campaign-gateway/internal/provider"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
	"github.com/swiftbulk/campaign-gateway/internal/worker"
)

var passCmd = &cobra.Command{
	Use:   "pass",
	Short: "Process all queued/running campaigns once, then exit",
	Long: `Runs one send pass: every eligible campaign is advanced through its
recipients sequentially, then the process exits. Scheduling repeated
passes is the supervisor's job (cron, systemd timer).`,
	RunE: runPass,
}

func runPass(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level)
	defer func() { _ = logger.Log.Sync() }()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	dbx, err := db.NewMySQL(cfg.MySQL)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	w := &worker.SendWorker{
		Campaigns:           repository.NewCampaignsRepository(dbx),
		Recipients:          repository.NewRecipientsRepository(dbx),
		Provider:            provider.NewClient(cfg.Provider),
		RatePerSec:          cfg.Send.RatePerSec,
		MaxAttempts:         cfg.Send.MaxAttempts,
		PerMessageReference: cfg.Provider.PerMessageReference,
		Log:                 logger.Log,
	}

	// Advisory locking is best-effort: a worker without Redis falls back
	// to the store's plain last-write-wins behavior.
	if rds, err := db.NewRedisClient(cfg.Redis); err == nil {
		defer func() { _ = rds.Close() }()
		w.Locker = worker.NewRedisLocker(rds, cfg.Send.LockTTL)
	} else {
		logger.Log.Warn("redis unavailable, running without campaign locks")
	}

	if cfg.Kafka.Enabled {
		pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.DeliveryTopic)
		defer func() { _ = pub.Close() }()
		w.Events = pub
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("send pass starting")
	return w.Run(ctx)
}
