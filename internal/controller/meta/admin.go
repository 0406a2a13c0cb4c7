package meta

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/model/cache"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/pkg/fiberstore"
	"catrank.dev/backend/internal/server/svr"
	"catrank.dev/backend/internal/service"
	"catrank.dev/backend/internal/util/rekuest"
)

type AdminController struct {
	fx.In

	Redis            *redis.Client
	CollectorService *service.Collector
	ArchiveService   *service.Archive
	AnalyticsService *service.Analytics
}

func RegisterAdmin(admin *svr.Admin, c AdminController) {
	admin.Post("/collect", limiter.New(limiter.Config{
		Max:        constant.AdminCollectLimiterMax,
		Expiration: constant.AdminCollectLimiterWindowLength,
		Storage:    fiberstore.NewRedis(c.Redis, constant.AdminCollectLimiterRedisKey),
	}), c.Collect)
	admin.Get("/cache", c.ListCaches)
	admin.Post("/cache/flush", c.FlushCache)
	admin.Post("/archive", c.Archive)
}

// @Summary      Collect a Snapshot Now
// @Description  Runs the collector once outside its schedule. `skipped` is true when another replica holds the collector lock.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  types.CollectResponse
// @Failure      401  {object}  apperr.Error  "Missing or invalid admin key"
// @Failure      503  {object}  apperr.Error  "The collector is not configured"
// @Security     AdminKeyAuth
// @Router       /api/_/admin/collect [POST]
func (c *AdminController) Collect(ctx *fiber.Ctx) error {
	resp, err := c.CollectorService.Collect(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(resp)
}

// @Summary      List Cache Names
// @Tags         Admin
// @Produce      json
// @Success      200  {array}  string
// @Security     AdminKeyAuth
// @Router       /api/_/admin/cache [GET]
func (c *AdminController) ListCaches(ctx *fiber.Ctx) error {
	return ctx.JSON(cache.Names())
}

// @Summary      Flush Caches
// @Description  Deletes the given cache entries, or every cache when no pairs are given. A pair without a key flushes the whole named cache.
// @Tags         Admin
// @Accept       json
// @Param        request  body  types.PurgeCacheRequest  false  "Cache entries to delete"
// @Success      204
// @Failure      400  {object}  apperr.Error  "Unknown cache name"
// @Security     AdminKeyAuth
// @Router       /api/_/admin/cache/flush [POST]
func (c *AdminController) FlushCache(ctx *fiber.Ctx) error {
	var request types.PurgeCacheRequest
	if len(ctx.Body()) > 0 {
		if err := rekuest.ValidBody(ctx, &request); err != nil {
			return err
		}
	}

	if len(request.Pairs) == 0 {
		if err := cache.FlushAll(); err != nil {
			return err
		}
	} else {
		for _, pair := range request.Pairs {
			if err := cache.Delete(pair.Name, pair.Key); err != nil {
				return err
			}
		}
	}
	c.AnalyticsService.Invalidate()

	log.Info().
		Str("evt.name", "admin.cache.flush").
		Int("pairs", len(request.Pairs)).
		Msg("caches flushed")

	return ctx.SendStatus(fiber.StatusNoContent)
}

// @Summary      Archive a Day of Snapshots
// @Description  Uploads every snapshot taken on the given UTC day to the archive bucket. Days that were already archived are left untouched.
// @Tags         Admin
// @Accept       json
// @Param        request  body  types.ArchiveRequest  true  "Day to archive"
// @Success      204
// @Failure      400  {object}  apperr.Error  "Invalid date"
// @Failure      503  {object}  apperr.Error  "Archiving is not configured"
// @Security     AdminKeyAuth
// @Router       /api/_/admin/archive [POST]
func (c *AdminController) Archive(ctx *fiber.Ctx) error {
	var request types.ArchiveRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	date, err := time.ParseInLocation(time.DateOnly, request.Date, time.UTC)
	if err != nil {
		return err
	}

	if err := c.ArchiveService.ArchiveByDate(ctx.UserContext(), date); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
