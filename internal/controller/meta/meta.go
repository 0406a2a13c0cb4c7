package meta

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/pkg/bininfo"
	"catrank.dev/backend/internal/server/svr"
	"catrank.dev/backend/internal/service"
)

type Meta struct {
	fx.In

	HealthService *service.Health
}

func RegisterMeta(meta *svr.Meta, c Meta) {
	meta.Get("/bininfo", c.BinInfo)

	meta.Get("/health", cache.New(cache.Config{
		// cache it for a second to mitigate potential DDoS
		Expiration: time.Second,
	}), c.Health)
}

// @Summary      Get Build Information
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  object  "version and build time"
// @Router       /api/_/bininfo [GET]
func (c *Meta) BinInfo(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"version": bininfo.Version,
		"build":   bininfo.BuildTime,
	})
}

// @Summary      Health Check
// @Description  Pings Postgres, Redis and NATS.
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  object        "status ok"
// @Failure      500  {object}  apperr.Error  "A dependency is unreachable"
// @Router       /api/_/health [GET]
func (c *Meta) Health(ctx *fiber.Ctx) error {
	if err := c.HealthService.Ping(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"status": "ok",
	})
}
