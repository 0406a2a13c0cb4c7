package meta

import (
	"github.com/gofiber/fiber/v2"

	"catrank.dev/backend/internal/pkg/bininfo"
)

func RegisterIndex(app *fiber.App) {
	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"@link":   "/swagger/index.html",
			"message": "Welcome to the Catrank API v1",
			"version": bininfo.Version,
		})
	})
}
