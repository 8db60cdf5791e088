package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/parceltrack/internal/app"
	"github.com/polkiloo/parceltrack/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(func(f *app.ParcelFacade) handlers.ParcelFacade { return f }),
	fx.Provide(Setup),
)
