package httpserver

import (
	"strconv"

	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/model/cache"
	"catrank.dev/backend/internal/pkg/apperr"
	"catrank.dev/backend/internal/pkg/rankcsv"
	"catrank.dev/backend/internal/service"
)

// invalidRequestCauses are domain errors that are caused by the caller and
// are rendered as INVALID_REQUEST with the original message.
var invalidRequestCauses = []error{
	analytics.ErrUnknownSortKey,
	analytics.ErrInvalidExpr,
	analytics.ErrUnknownMetric,
	rankcsv.ErrMissingColumns,
	rankcsv.ErrInvalidRow,
	cache.ErrUnknownCache,
}

func handleCustomError(ctx *fiber.Ctx, e *apperr.Error) error {
	log.Warn().
		Err(e).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}

	if e.Extras != nil && len(*e.Extras) > 0 {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

// translate maps known errors onto the API error they are rendered as. It
// returns nil for errors that are not expected to reach the client.
func translate(err error) *apperr.Error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e
	}

	for _, cause := range invalidRequestCauses {
		if errors.Is(err, cause) {
			return apperr.ErrInvalidReq.Msg("invalid request: %s", err)
		}
	}

	switch {
	case errors.Is(err, service.ErrCollectorNotConfigured), errors.Is(err, service.ErrArchiveDisabled):
		return apperr.New(fiber.StatusServiceUnavailable, "NOT_CONFIGURED", err.Error())
	}

	return nil
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if e := translate(err); e != nil {
		return handleCustomError(ctx, e)
	}

	// Default 500 statuscode
	re := *apperr.ErrInternalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
	}

	if re.StatusCode < fiber.StatusInternalServerError {
		return handleCustomError(ctx, &re)
	}

	log.Error().
		Stack().
		Err(err).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Int("status", re.StatusCode).
		Msg("Internal Server Error")

	if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
		hub.CaptureException(err)
	}

	return handleCustomError(ctx, &re)
}
