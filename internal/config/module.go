package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module exposes configuration loader for fx graphs and logs the
// effective settings once the graph is built.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logEffective),
)

// logEffective never prints secrets or the database DSN.
func logEffective(cfg *Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("component", "config"),
		slog.String("run_address", cfg.RunAddress),
		slog.String("match_strategy", cfg.MatchStrategy),
		slog.Int("worker_pool_size", cfg.WorkerPoolSize),
		slog.Duration("archive_sweep_interval", cfg.ArchiveSweepInterval),
		slog.Duration("reconcile_interval", cfg.ReconcileInterval),
		slog.Duration("outbox_interval", cfg.OutboxInterval),
		slog.Bool("kafka_enabled", len(cfg.KafkaBrokers) > 0),
		slog.Int("admin_phones", len(cfg.AdminPhones)),
	)
}
