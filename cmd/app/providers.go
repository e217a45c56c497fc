package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/solar-dashboard/internal/domain/auth"
	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/infra/archive"
	"github.com/yanqian/solar-dashboard/internal/infra/config"
	"github.com/yanqian/solar-dashboard/internal/infra/events"
	"github.com/yanqian/solar-dashboard/internal/infra/historyrepo"
	"github.com/yanqian/solar-dashboard/internal/infra/predictor/solarapi"
	"github.com/yanqian/solar-dashboard/internal/infra/statestore"
	httpiface "github.com/yanqian/solar-dashboard/internal/interface/http"
	"github.com/yanqian/solar-dashboard/pkg/metrics"
)

func provideDashboardConfig(cfg *config.Config) dashboard.Config {
	return dashboard.Config{
		Shaping:        cfg.Dashboard.Shaping,
		HistoryLimit:   cfg.Dashboard.HistoryLimit,
		MaxHistory:     cfg.Dashboard.MaxHistory,
		LabelStep:      cfg.Dashboard.LabelStep,
		ArchiveReports: cfg.Dashboard.ArchiveReports && cfg.Archive.Enabled,
	}
}

func providePredictor(cfg *config.Config) *solarapi.Client {
	return solarapi.NewClient(cfg.Predictor.BaseURL, cfg.Predictor.Timeout)
}

func provideObserver(recorder *metrics.Recorder) dashboard.Observer {
	return recorder
}

// provideHistoryRepository prefers Postgres, then ClickHouse, then memory.
func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) (dashboard.HistoryRepository, func()) {
	fallback := historyrepo.NewMemoryRepository(cfg.Dashboard.MaxHistory)
	if repo, cleanup, ok := openPostgresHistory(cfg, logger); ok {
		return repo, cleanup
	}
	if addr := strings.TrimSpace(cfg.History.ClickHouse.Addr); addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		repo, err := historyrepo.OpenClickHouse(ctx, historyrepo.ClickHouseOptions{
			Addr:     addr,
			Database: cfg.History.ClickHouse.Database,
			Username: cfg.History.ClickHouse.Username,
			Password: cfg.History.ClickHouse.Password,
		})
		if err != nil {
			logger.Error("clickhouse unavailable, using memory history", "error", err)
			return fallback, func() {}
		}
		logger.Info("clickhouse history repository enabled", "addr", addr)
		return repo, func() { _ = repo.Close() }
	}
	logger.Info("history backend not configured, using memory repository")
	return fallback, func() {}
}

func openPostgresHistory(cfg *config.Config, logger *slog.Logger) (dashboard.HistoryRepository, func(), bool) {
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		return nil, nil, false
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, skipping postgres history", "error", err)
		return nil, nil, false
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, skipping postgres history", "error", err)
		return nil, nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, skipping postgres history", "error", err)
		pool.Close()
		return nil, nil, false
	}
	repo := historyrepo.NewPostgresRepository(pool)
	if err := repo.InitSchema(ctx); err != nil {
		logger.Error("postgres schema init failed, skipping postgres history", "error", err)
		pool.Close()
		return nil, nil, false
	}
	logger.Info("postgres history repository enabled")
	return repo, pool.Close, true
}

func provideStateStore(cfg *config.Config, logger *slog.Logger) (dashboard.StateStore, func()) {
	if !cfg.State.Redis.Enabled {
		return statestore.NewMemoryStore(), func() {}
	}
	opt, err := buildValkeyOptions(cfg.State.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory state", "error", err)
		return statestore.NewMemoryStore(), func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory state", "error", err)
		return statestore.NewMemoryStore(), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory state", "error", err)
		client.Close()
		return statestore.NewMemoryStore(), func() {}
	}
	logger.Info("valkey state store enabled", "addr", cfg.State.Redis.Addr)
	return statestore.NewValkeyStore(client, cfg.State.Redis.Key), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideEventPublisher(cfg *config.Config, logger *slog.Logger) (dashboard.EventPublisher, func()) {
	var (
		sinks   []dashboard.EventPublisher
		closers []func() error
	)
	if cfg.Events.MQTT.Enabled {
		pub, err := events.DialMQTT(events.MQTTConfig{
			Broker:   cfg.Events.MQTT.Broker,
			ClientID: cfg.Events.MQTT.ClientID,
			Username: cfg.Events.MQTT.Username,
			Password: cfg.Events.MQTT.Password,
			Topic:    cfg.Events.MQTT.Topic,
			QoS:      cfg.Events.MQTT.QoS,
		}, logger)
		if err != nil {
			logger.Error("mqtt publisher disabled", "error", err)
		} else {
			sinks = append(sinks, pub)
			closers = append(closers, pub.Close)
		}
	}
	if cfg.Events.Kafka.Enabled {
		pub := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic))
		logger.Info("kafka publisher enabled", "topic", cfg.Events.Kafka.Topic)
		sinks = append(sinks, pub)
		closers = append(closers, pub.Close)
	}
	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("event publisher close failed", "error", err)
			}
		}
	}
	if len(sinks) == 0 {
		return events.Nop{}, cleanup
	}
	return events.NewFanout(sinks...), cleanup
}

func provideReportArchive(cfg *config.Config, logger *slog.Logger) dashboard.ReportArchive {
	if !cfg.Archive.Enabled {
		return archive.NewMemory()
	}
	store, err := archive.NewS3Archive(archive.S3Options{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		Region:    cfg.Archive.Region,
	}, logger)
	if err != nil {
		logger.Error("report archive disabled", "error", err)
		return archive.NewMemory()
	}
	logger.Info("s3 report archive enabled", "bucket", cfg.Archive.Bucket)
	return store
}

func provideTokenValidator(cfg *config.Config) httpiface.TokenValidator {
	if !cfg.HTTP.Auth.Enabled {
		return nil
	}
	return auth.NewTokens(cfg.HTTP.Auth.Secret, cfg.HTTP.Auth.Issuer)
}
