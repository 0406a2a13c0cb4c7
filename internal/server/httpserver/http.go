package httpserver

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/helmet/v2"
	"github.com/rs/zerolog/log"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/bininfo"
	"catrank.dev/backend/internal/pkg/middlewares"
	"catrank.dev/backend/internal/pkg/observability"
)

var registerPromOnce sync.Once

func Create(conf *appconfig.Config, tp *tracesdk.TracerProvider) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Catrank Backend",
		ServerHeader: fmt.Sprintf("Catrank/%s", bininfo.Version),
		// NOTICE: exports of large workbooks are bounded by WriteTimeout as well.
		ReadTimeout:    time.Second * 20,
		WriteTimeout:   time.Second * 60,
		ReadBufferSize: 8192,
		// allow possibility for graceful shutdown, otherwise app#Shutdown() will block forever
		IdleTimeout:             conf.HTTPServerShutdownTimeout,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          conf.TrustedProxies,
		ErrorHandler:            ErrorHandler,
		Immutable:               true,
		JSONEncoder:             json.Marshal,
		JSONDecoder:             json.Unmarshal,
	})

	app.Use(favicon.New())
	app.Use(fibersentry.New(fibersentry.Config{
		Repanic: true,
		Timeout: time.Second * 5,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		AllowHeaders:  "Content-Type, Authorization, X-Requested-With, Idempotency-Key, sentry-trace",
		ExposeHeaders: strings.Join([]string{"Content-Type", "Content-Disposition", constant.RequestIDHeader, constant.IdempotencyHeader, constant.CacheHeader}, ", "),
	}))
	middlewares.Logger(app)
	// the logger middleware injects RequestID into the context,
	// and we need an extra middleware to extract it and repopulate it into ctx.Locals
	app.Use(middlewares.RequestID())

	app.Use(helmet.New(helmet.Config{
		HSTSMaxAge:         31356000,
		HSTSPreloadEnabled: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		PermissionPolicy:   "interest-cohort=()",
	}))
	app.Use(middlewares.InjectI18n())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			log.Error().Msgf("panic: %v\n%s\n", e, buf)
		},
	}))
	registerPromOnce.Do(func() {
		fiberprom := fiberprometheus.New(observability.ServiceName)
		fiberprom.RegisterAt(app, "/metrics")
		app.Use(fiberprom.Middleware)
	})

	if conf.TracingEnabled {
		app.Use(otelfiber.Middleware(
			otelfiber.WithTracerProvider(tp),
			otelfiber.WithNext(func(c *fiber.Ctx) bool {
				return c.Get(constant.SlimHeaderKey) != ""
			}),
			otelfiber.WithSpanNameFormatter(func(c *fiber.Ctx) string {
				return "HTTP " + c.Method() + " " + c.Route().Path
			}),
		))
	}

	if conf.DevMode {
		log.Info().Msg("Running in DEV mode")
		app.Use(pprof.New())
	}

	if !conf.DevMode {
		app.Use(middlewares.EnrichSentry())

		// analytics responses only change when a snapshot lands, so a short
		// shared cache absorbs dashboards that poll eagerly.
		log.Info().Msg("enabling fiber-level cache & limiter for public API requests.")
		app.Use(limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return !strings.HasPrefix(c.Path(), "/api/v1/")
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"code":    "TOO_MANY_REQUESTS",
					"message": "Your client is sending requests too frequently. Rankings are updated periodically and should not be requested too frequently.",
				})
			},
			Max:        300,
			Expiration: time.Minute * 5,
		}))

		app.Use(cache.New(cache.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.Method() != fiber.MethodGet ||
					!strings.HasPrefix(c.Path(), "/api/v1/") ||
					strings.HasPrefix(c.Path(), "/api/v1/snapshots/")
			},
			CacheHeader:  constant.CacheHeader,
			CacheControl: true,
			Expiration:   time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return utils.CopyString(c.OriginalURL())
			},
		}))
	}

	return app
}
