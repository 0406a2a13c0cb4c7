package svr

import (
	"github.com/gofiber/fiber/v2"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/pkg/middlewares"
)

// V1 serves the public analytics API.
type V1 struct {
	fiber.Router
}

// Meta serves health and build information for probes and operators.
type Meta struct {
	fiber.Router
}

// Admin serves operator endpoints. Every route requires the admin key.
type Admin struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App, conf *appconfig.Config) (*V1, *Meta, *Admin) {
	v1 := app.Group("/api/v1")
	meta := app.Group("/api/_")
	admin := app.Group("/api/_/admin", middlewares.AdminAuth(conf.AdminKey))

	return &V1{Router: v1}, &Meta{Router: meta}, &Admin{Router: admin}
}
