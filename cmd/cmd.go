package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/sensor-rewards/internal/pkg/config"
	"github.com/anicoll/sensor-rewards/internal/pkg/ingest"
	"github.com/anicoll/sensor-rewards/internal/pkg/ledger"
	"github.com/anicoll/sensor-rewards/internal/pkg/mqtt"
	"github.com/anicoll/sensor-rewards/internal/pkg/rewards"
	"github.com/anicoll/sensor-rewards/internal/pkg/server"
	"github.com/anicoll/sensor-rewards/internal/pkg/store"
	"github.com/anicoll/sensor-rewards/internal/pkg/wallet"
)

func ServeCommand(ctx *cli.Context) error {
	cfg := &config.Config{
		MqttCfg: &config.MqttConfig{
			Host:     ctx.String("mqtt-host"),
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
			ClientID: ctx.String("mqtt-client-id"),
			Topic:    ctx.String("mqtt-topic"),
		},
		StoreCfg: &config.StoreConfig{
			URL:        ctx.String("mongo-url"),
			Database:   ctx.String("mongo-database"),
			Collection: ctx.String("mongo-collection"),
			Timeout:    ctx.Duration("store-timeout"),
		},
		LedgerCfg: &config.LedgerConfig{
			RPCURL:          ctx.String("eth-rpc-url"),
			ContractAddress: ctx.String("token-contract"),
			ChainID:         ctx.Int64("chain-id"),
			CallTimeout:     ctx.Duration("ledger-call-timeout"),
			SendTimeout:     ctx.Duration("ledger-send-timeout"),
		},
		ServerCfg: &config.ServerConfig{
			Address:      ctx.String("listen-address"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		RewardCfg: &config.RewardConfig{
			QueueSize:        ctx.Int("reward-queue-size"),
			Workers:          ctx.Int("reward-workers"),
			SnapshotSchedule: ctx.String("balance-snapshot-schedule"),
		},
		LogLevel: ctx.String("log-level"),
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	return run(ctx.Context, cfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	errorChan := make(chan error, 1000)
	var err error

	eg, ctx := errgroup.WithContext(ctx)
	logCfg := zap.NewProductionConfig()

	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	st, err := store.New(ctx, cfg.StoreCfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	ledgerClient, err := ledger.New(ctx, cfg.LedgerCfg)
	if err != nil {
		return err
	}
	defer ledgerClient.Close()

	wallets := wallet.Default()
	dispatcher := rewards.NewDispatcher(ledgerClient, cfg.RewardCfg.QueueSize, cfg.RewardCfg.Workers)
	aggregator := rewards.NewAggregator(ledgerClient, wallets)
	pipeline := ingest.New(st, wallets, dispatcher, cfg.StoreCfg.Timeout)
	broker := mqtt.New(cfg.MqttCfg, pipeline.Handle)

	eg.Go(func() error {
		return dispatcher.Run(ctx)
	})

	eg.Go(func() error {
		if err := broker.Connect(); err != nil {
			return err
		}
		<-ctx.Done()
		broker.Disconnect()
		return ctx.Err()
	})

	eg.Go(func() error {
		srv := &http.Server{
			Handler:      server.New(st, aggregator).Router(),
			Addr:         cfg.ServerCfg.Address,
			WriteTimeout: cfg.ServerCfg.WriteTimeout,
			ReadTimeout:  cfg.ServerCfg.ReadTimeout,
		}
		return srv.ListenAndServe()
	})

	if cfg.RewardCfg.SnapshotSchedule != "" {
		eg.Go(func() error {
			return cronBalanceSnapshot(ctx, aggregator, cfg.RewardCfg.SnapshotSchedule, errorChan)
		})
	}

	eg.Go(func() error {
		// handle any async errors from the services
		for {
			select {
			case err := <-errorChan:
				logger.Error("async error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

// cronBalanceSnapshot logs the fleet's reward balances on a schedule so
// balance drift shows up without anyone polling the API.
func cronBalanceSnapshot(ctx context.Context, aggregator *rewards.Aggregator, schedule string, errChan chan error) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		reportCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		entries, err := aggregator.Report(reportCtx)
		if err != nil {
			zap.L().Error("balance snapshot failed", zap.Error(err))
			errChan <- err
			return
		}
		total := 0.0
		errored := 0
		for _, entry := range entries {
			if entry.Error != "" {
				errored++
				continue
			}
			total += entry.Balance
		}
		zap.L().Info("reward balance snapshot",
			zap.Int("wallets", len(entries)),
			zap.Float64("total_balance", total),
			zap.Int("errored", errored))
	}); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	c.Run()
	return ctx.Err()
}
