package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/urocare/clinic/internal/auth"
	"github.com/urocare/clinic/internal/config"
	"github.com/urocare/clinic/internal/db"
	httpSrv "github.com/urocare/clinic/internal/http"
	"github.com/urocare/clinic/internal/kafka"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/recordstore"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		deps := httpSrv.Deps{
			Gate: auth.NewHTTPGate(cfg.Auth.BaseURL, cfg.RecordStore.APIKey, cfg.Auth.TimeoutMs),
		}

		// record store
		switch cfg.RecordStore.Driver {
		case "mysql":
			mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOptsFrom(cfg.MySQL))
			if err != nil {
				return fmt.Errorf("mysql connect: %w", err)
			}
			defer mysqlDB.Close()
			deps.Store = recordstore.NewSQLStore(mysqlDB)
			deps.Checks = append(deps.Checks, db.MySQLCheck(mysqlDB))
		case "rest", "":
			deps.Store = recordstore.NewRESTStore(
				cfg.RecordStore.BaseURL,
				cfg.RecordStore.APIKey,
				cfg.RecordStore.TimeoutMs,
				cfg.RecordStore.Breaker.FailThreshold,
				cfg.RecordStore.Breaker.OpenForMs,
			)
		default:
			return fmt.Errorf("unknown record_store.driver %q", cfg.RecordStore.Driver)
		}

		// optional redis (rate limiting)
		if cfg.Redis.Addr != "" {
			redisClient, err := db.NewRedisClient(db.RedisOptsFrom(cfg.Redis))
			if err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			defer func() { _ = redisClient.Close() }()
			deps.Redis = redisClient
			deps.Checks = append(deps.Checks, db.RedisCheck(redisClient))
		}

		// optional kafka (intake events)
		if len(cfg.Kafka.Brokers) > 0 {
			pub := kafka.NewPublisherFromConfig(kafka.Config{
				Brokers:      cfg.Kafka.Brokers,
				Topic:        cfg.Kafka.Topic,
				BatchTimeout: cfg.Kafka.BatchTimeout,
			})
			defer func() { _ = pub.Close() }()
			deps.Publisher = pub
		}

		server := httpSrv.NewServer(cfg, deps)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
