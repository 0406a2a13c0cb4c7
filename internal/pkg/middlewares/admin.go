package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/pkg/apperr"
)

// AdminAuth requires `Authorization: Bearer <key>`. An empty key locks every
// admin endpoint.
func AdminAuth(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return apperr.ErrUnauthorized.Msg("admin endpoints are disabled: no admin key is configured")
		}

		given, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			log.Warn().
				Str("evt.name", "http.admin.unauthorized").
				Str("ip", c.IP()).
				Str("path", c.Path()).
				Msg("rejected admin request")
			return apperr.ErrUnauthorized
		}

		return c.Next()
	}
}
