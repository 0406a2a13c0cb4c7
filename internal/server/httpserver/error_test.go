package httpserver

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"catrank.dev/backend/internal/core/analytics"
	"catrank.dev/backend/internal/pkg/apperr"
)

func respond(t *testing.T, handlerErr error) (int, gjson.Result) {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error {
		return handlerErr
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, gjson.ParseBytes(body)
}

func TestErrorHandlerAppError(t *testing.T) {
	status, body := respond(t, apperr.ErrNotFound)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, apperr.CodeNotFound, body.Get("code").String())
}

func TestErrorHandlerExtras(t *testing.T) {
	status, body := respond(t, apperr.NewInvalidViolations([]string{"rank is required"}))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "rank is required", body.Get("violations.0").String())
}

func TestErrorHandlerDomainError(t *testing.T) {
	status, body := respond(t, errors.Wrap(analytics.ErrUnknownSortKey, "sort=banana"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeInvalidRequest, body.Get("code").String())
	assert.Contains(t, body.Get("message").String(), "unknown sort key")
}

func TestErrorHandlerFiberError(t *testing.T) {
	status, body := respond(t, fiber.ErrMethodNotAllowed)
	assert.Equal(t, fiber.StatusMethodNotAllowed, status)
	assert.Equal(t, "UNKNOWN_ERROR", body.Get("code").String())
}

func TestErrorHandlerInternal(t *testing.T) {
	status, body := respond(t, errors.New("connection refused"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, apperr.CodeInternalError, body.Get("code").String())
	assert.NotContains(t, body.Get("message").String(), "connection refused")
}

func TestErrorHandlerDuplicateObservationIsInternal(t *testing.T) {
	status, body := respond(t, errors.Wrap(analytics.ErrDuplicateObservation, "Chess at 2025-01-01T00:00:00Z"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, apperr.CodeInternalError, body.Get("code").String())
}
