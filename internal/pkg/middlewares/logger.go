package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/flog"
)

func Logger(app *fiber.App) {
	Chained(
		app,
		injectLogger(),
		flog.RequestIDHandler("request_id", constant.RequestIDHeader),
		flog.RemoteAddrHandler("ip"),
		flog.MethodHandler("method"),
		flog.URLHandler("url"),
		flog.UserAgentHandler("user_agent"),
		requestLogger(),
	)
}

func injectLogger() func(ctx *fiber.Ctx) error {
	return flog.NewHandlerMiddleware(log.With().Logger())
}

func requestLogger() func(ctx *fiber.Ctx) error {
	return flog.AccessHandler(func(ctx *fiber.Ctx, duration time.Duration) {
		status := ctx.Response().StatusCode()
		e := flog.InfoFrom(ctx)
		if status >= fiber.StatusInternalServerError {
			e = flog.WarnFrom(ctx)
		}
		e.Str("evt.name", "http.request").
			Int("status", status).
			Int("size", len(ctx.Response().Body())).
			Dur("duration", duration).
			Msg("handled request")
	})
}
