package cachectrl

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// OptIn marks the response cacheable for the default hour, with t as Last-Modified.
func OptIn(ctx *fiber.Ctx, t time.Time) {
	OptInCustom(ctx, t, time.Hour)
}

func OptInCustom(ctx *fiber.Ctx, t time.Time, offset time.Duration) {
	ctx.Set(fiber.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(offset.Seconds())))
	ctx.Set(fiber.HeaderExpires, t.Add(offset).UTC().Format(time.RFC1123))

	ctx.Response().Header.SetLastModified(t)
}

func OptOut(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
}
