package middlewares

import (
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dchest/uniuri"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/apperr"
)

type memStorage struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{m: map[string][]byte{}}
}

func (s *memStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *memStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = val
	return nil
}

func (s *memStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = map[string][]byte{}
	return nil
}

func (s *memStorage) Close() error { return nil }

func newIdempotentApp(storage fiber.Storage, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *apperr.Error
			if errors.As(err, &e) {
				return c.Status(e.StatusCode).SendString(e.ErrorCode)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	// RedSync stays nil: none of these requests reach the locking step.
	app.Post("/", Idempotency(&IdempotencyConfig{
		Lifetime:  time.Hour,
		KeyHeader: constant.IdempotencyKeyHeader,
		Storage:   storage,
	}), handler)
	return app
}

func TestIdempotencyWithoutKey(t *testing.T) {
	app := newIdempotentApp(newMemStorage(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusAccepted).SendString("queued")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(constant.IdempotencyHeader))
}

func TestIdempotencyRejectsInvalidKey(t *testing.T) {
	app := newIdempotentApp(newMemStorage(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTeapot)
	})

	for _, key := range []string{uniuri.NewLen(129), "not-alphanumeric"} {
		req := httptest.NewRequest(fiber.MethodPost, "/", nil)
		req.Header.Set(constant.IdempotencyKeyHeader, key)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, key)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	key := "test" + uniuri.NewLen(32)
	stored, err := msgpack.Marshal(idempotencyResponse{
		StatusCode: fiber.StatusAccepted,
		Headers:    map[string]string{"X-Task": "01hq"},
		Body:       []byte(`{"taskId":"01hq"}`),
	})
	require.NoError(t, err)

	storage := newMemStorage()
	require.NoError(t, storage.Set(key, stored, time.Hour))

	app := newIdempotentApp(storage, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTeapot)
	})

	req := httptest.NewRequest(fiber.MethodPost, "/", nil)
	req.Header.Set(constant.IdempotencyKeyHeader, key)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "hit", resp.Header.Get(constant.IdempotencyHeader))
	assert.Equal(t, "01hq", resp.Header.Get("X-Task"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"taskId":"01hq"}`, string(body))
}
