package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/parceltrack/internal/adapter/kafka"
	"github.com/polkiloo/parceltrack/internal/app"
	"github.com/polkiloo/parceltrack/internal/config"
	"github.com/polkiloo/parceltrack/internal/logger"
	"github.com/polkiloo/parceltrack/internal/pkg/auth"
	"github.com/polkiloo/parceltrack/internal/server/http/router"
	"github.com/polkiloo/parceltrack/internal/storage/postgres"
	"github.com/polkiloo/parceltrack/internal/usecase"
)

// Module assembles the whole application graph. Extra options are appended
// last so callers can replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		kafka.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
