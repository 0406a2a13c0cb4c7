package app

import (
	"time"

	"go.uber.org/fx"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/app/appcontext"
	"catrank.dev/backend/internal/controller"
	"catrank.dev/backend/internal/infra"
	"catrank.dev/backend/internal/model/cache"
	"catrank.dev/backend/internal/pkg/logger"
	"catrank.dev/backend/internal/repo"
	"catrank.dev/backend/internal/server"
	"catrank.dev/backend/internal/service"
	"catrank.dev/backend/internal/workers/calcwkr"
	"catrank.dev/backend/internal/workers/ingestwkr"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx graph
	// because some other packages need them to be initialized before fx starts
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Repositories
		repo.Module(),

		// Services
		service.Module(),

		// Global Singleton Inits: Keep those before controllers to ensure they are initialized
		// before controllers are registered as controllers are also fx#Invoke functions which
		// are called in the order of their registration.
		fx.Invoke(infra.SentryInit),
		fx.Invoke(infra.Datadog),
		fx.Invoke(cache.Initialize),
	}

	if ctx.Serving() {
		baseOpts = append(baseOpts,
			// Servers
			server.Module(),

			// Controllers
			controller.Module(controller.OptIncludeSwagger),

			// Workers
			fx.Invoke(calcwkr.Start),
			fx.Invoke(ingestwkr.Start),
		)
	}

	baseOpts = append(baseOpts,
		// fx Extra Options
		// Postgres and NATS are retried with a delay on startup
		fx.StartTimeout(time.Duration(conf.InfraConnectAttempts+1)*10*time.Second),
		// StopTimeout is not typically needed, since we're using fiber's Shutdown(),
		// in which fiber has its own IdleTimeout for controlling the shutdown timeout.
		// It acts as a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(5*time.Minute),
	)

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
