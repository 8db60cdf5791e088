package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/parceltrack/internal/adapter/kafka"
	"github.com/polkiloo/parceltrack/internal/config"
	"github.com/polkiloo/parceltrack/internal/logger"
	"github.com/polkiloo/parceltrack/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewParcelFacade,
		newHTTPServer,
		newArchiveSweeper,
		newReconciler,
		newOutboxRelay,
	),
	fx.Invoke(registerLifecycle),
)

// Runner is a background component started and stopped with the app.
type Runner interface {
	Start(ctx context.Context)
	Stop()
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *ParcelFacade
	Config *config.Config
	Logger *slog.Logger
}

func newArchiveSweeper(p workerParams) *worker.ArchiveSweeper {
	return worker.NewArchiveSweeper(
		p.Facade,
		p.Config.ArchiveSweepInterval,
		p.Config.ArchiveSweepBatch,
		p.Config.WorkerPoolSize,
		logger.Component(p.Logger, "archive_sweeper"),
	)
}

func newReconciler(p workerParams) *worker.Reconciler {
	return worker.NewReconciler(
		p.Facade,
		p.Config.ReconcileInterval,
		p.Config.ArchiveSweepBatch,
		logger.Component(p.Logger, "reconciler"),
	)
}

type relayParams struct {
	fx.In

	Facade    *ParcelFacade
	Publisher kafka.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newOutboxRelay(p relayParams) *worker.OutboxRelay {
	return worker.NewOutboxRelay(
		p.Facade,
		p.Publisher,
		p.Config.OutboxInterval,
		p.Config.OutboxBatch,
		p.Config.WorkerPoolSize,
		logger.Component(p.Logger, "outbox_relay"),
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.ArchiveSweeper
	Reconciler *worker.Reconciler
	Relay      *worker.OutboxRelay
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	runners := []Runner{p.Sweeper, p.Reconciler, p.Relay}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting parceltrack", slog.String("addr", p.Server.Addr))
			// Workers outlive the start context.
			runCtx := context.WithoutCancel(ctx)
			for _, r := range runners {
				r.Start(runCtx)
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			serverErr := p.Server.Shutdown(shutdownCtx)
			for _, r := range runners {
				r.Stop()
			}
			if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
				return serverErr
			}
			p.Logger.Info("parceltrack stopped")
			return nil
		},
	})
}
