package util

import (
	"github.com/gofiber/fiber/v2"

	"catrank.dev/backend/internal/constant"
)

// IdempotencyKeyFromLocals returns the key the idempotency middleware accepted, if any.
func IdempotencyKeyFromLocals(ctx *fiber.Ctx) string {
	l, ok := ctx.Locals(constant.IdempotencyKeyLocalsKey).(string)
	if !ok {
		return ""
	}

	return l
}
