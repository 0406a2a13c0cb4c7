package meta

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"catrank.dev/backend/docs"
	"catrank.dev/backend/internal/pkg/bininfo"
)

func RegisterSwagger(app *fiber.App) {
	docs.SwaggerInfo.Version = bininfo.Version
	app.Get("/swagger/*", swagger.New(swagger.Config{
		Title:        docs.SwaggerInfo.Title,
		DeepLinking:  true,
		DocExpansion: "list",
	}))
}
