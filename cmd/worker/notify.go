package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/urocare/clinic/internal/config"
	"github.com/urocare/clinic/internal/db"
	"github.com/urocare/clinic/internal/dispatcher"
	"github.com/urocare/clinic/internal/i18n"
	"github.com/urocare/clinic/internal/kafka"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/metrics"
	"github.com/urocare/clinic/internal/worker"
	"go.uber.org/zap"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Alert clinic staff about new bookings and messages",
	RunE:  runNotify,
}

func runNotify(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is empty")
	}

	// 2) webhooks -> dispatcher
	var provs []dispatcher.Provider
	for _, wc := range cfg.Alerts.Webhooks {
		if !wc.Enabled || strings.TrimSpace(wc.URL) == "" {
			continue
		}
		provs = append(provs, dispatcher.NewWebhookProvider(
			wc.Name,
			wc.URL,
			wc.Token,
			wc.TimeoutMs,
			wc.Breaker.FailThreshold,
			wc.Breaker.OpenForMs,
		))
	}
	if len(provs) == 0 {
		return fmt.Errorf("no alert webhooks enabled in config")
	}
	disp := dispatcher.NewDispatcher(provs, cfg.Alerts.MaxAttempts)

	// 3) optional redis dedup
	var dedup worker.Deduper
	if cfg.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		dedup = worker.NewRedisDeduper(rdb, cfg.Alerts.DedupTTL)
	}

	// 4) kafka consumer
	consumer := kafka.NewConsumerFromConfig(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewNotifier(consumer, disp, dedup, i18n.ParseLang(cfg.Alerts.Lang))
	if cfg.Alerts.Workers > 0 {
		w.Workers = cfg.Alerts.Workers
	}

	// 5) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("notifier started",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Int("webhooks", len(provs)),
		zap.Int("workers", w.Workers),
	)

	return w.Run(ctx)
}
