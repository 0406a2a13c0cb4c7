package middlewares

import (
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/apperr"
	"catrank.dev/backend/internal/util/rekuest"
)

type IdempotencyConfig struct {
	// Lifetime is the maximum lifetime of an idempotency key.
	Lifetime time.Duration

	// KeyHeader is the name of the header that contains the idempotency key.
	KeyHeader string

	// KeepResponseHeaders is a list of headers that should be kept from the original response.
	// By default, all headers are kept.
	KeepResponseHeaders []string

	keepResponseHeadersMap map[string]struct{}

	// Storage is the storage backend for the idempotency key & its response data.
	Storage fiber.Storage

	RedSync *redsync.Redsync

	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool
}

type idempotencyResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

func Idempotency(config *IdempotencyConfig) fiber.Handler {
	config.keepResponseHeadersMap = make(map[string]struct{})
	for _, header := range config.KeepResponseHeaders {
		config.keepResponseHeadersMap[strings.ToLower(header)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if config.Next != nil && config.Next(c) {
			return c.Next()
		}

		key := c.Get(config.KeyHeader)
		if key == "" {
			if l := log.Trace(); l.Enabled() {
				l.
					Str("evt.name", "http.idempotency.no_key").
					Msg("idempotency key is missing. Skipping middleware.")
			}
			return c.Next()
		}

		if err := rekuest.Validate.Var(key, "max=128,alphanum"); err != nil {
			if l := log.Trace(); l.Enabled() {
				l.
					Err(err).
					Str("evt.name", "http.idempotency.invalid_key").
					Msg("idempotency key is invalid. Returning error.")
			}
			return apperr.ErrInvalidReq.Msg("invalid idempotency key: idempotency key can only be at most %d characters, consist of only alphanumeric characters", 128)
		}

		c.Locals(constant.IdempotencyKeyLocalsKey, key)

		if exist, err := checkWriteIdempotencyCachedMessage(c, config, key); exist {
			return err
		}

		if l := log.Debug(); l.Enabled() {
			l.
				Str("evt.name", "http.idempotency.lock").
				Str("key", key).
				Msg("idempotency key not found in storage. Locking key.")
		}

		lockKey := "mutex:idempotency:" + key
		mutex := config.RedSync.NewMutex(lockKey, redsync.WithExpiry(time.Minute), redsync.WithTries(5), redsync.WithRetryDelay(time.Millisecond*250))

		if err := mutex.Lock(); err != nil {
			log.Err(err).
				Str("evt.name", "http.idempotency.lock.failed").
				Str("key", key).
				Msg("failed to lock idempotency key. Returning error.")
			return apperr.ErrInternalError.Msg("failed to lock idempotency key: idempotency key is locked by another request; is the same request being sent concurrently?")
		}

		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				log.Err(err).
					Str("evt.name", "http.idempotency.unlock.failed").
					Str("key", key).
					Msg("failed to unlock idempotency key.")
			}
		}()

		// another holder of the lock may have stored a response meanwhile
		if exist, err := checkWriteIdempotencyCachedMessage(c, config, key); exist {
			return err
		}

		err := c.Next()
		if err != nil {
			if l := log.Trace(); l.Enabled() {
				l.
					Str("evt.name", "http.idempotency.handler.error").
					Msg("request handler returned an error. Skipping saving the idempotency response.")
			}
			return err
		}

		responseBytes, err := marshalResponseToBytes(c, config)
		if err != nil {
			log.Error().
				Str("evt.name", "http.idempotency.response.marshal.failed").
				Err(err).
				Msg("error marshaling response to bytes. Skipping saving the idempotency response.")
			return err
		}

		if err := config.Storage.Set(key, responseBytes, config.Lifetime); err != nil {
			log.Error().
				Str("evt.name", "http.idempotency.response.save.failed").
				Err(err).
				Msg("error saving the idempotency response. Skipping saving the idempotency response.")
			return err
		}

		c.Set(constant.IdempotencyHeader, "saved")

		if l := log.Debug(); l.Enabled() {
			l.
				Str("evt.name", "http.idempotency.saved").
				Str("key", key).
				Msg("idempotency response saved")
		}

		return nil
	}
}

func marshalResponseToBytes(c *fiber.Ctx, conf *IdempotencyConfig) ([]byte, error) {
	var response idempotencyResponse

	response.StatusCode = c.Response().StatusCode()

	response.Headers = make(map[string]string)
	c.Response().Header.VisitAll(func(k, v []byte) {
		header := string(k)
		if conf.KeepResponseHeaders != nil {
			if _, ok := conf.keepResponseHeadersMap[strings.ToLower(header)]; !ok {
				return
			}
		}
		response.Headers[header] = string(v)
	})

	if body := c.Response().Body(); body != nil {
		response.Body = append([]byte(nil), body...)
	}

	return msgpack.Marshal(response)
}

func unmarshalResponseToFiberResponse(c *fiber.Ctx, conf *IdempotencyConfig, responseBytes []byte) error {
	var response idempotencyResponse
	if err := msgpack.Unmarshal(responseBytes, &response); err != nil {
		return err
	}

	c.Status(response.StatusCode)

	for header, value := range response.Headers {
		c.Set(header, value)
	}

	c.Set(constant.IdempotencyHeader, "hit")

	if len(response.Body) > 0 {
		return c.Send(response.Body)
	}

	return nil
}

func checkWriteIdempotencyCachedMessage(c *fiber.Ctx, conf *IdempotencyConfig, key string) (bool, error) {
	response, err := conf.Storage.Get(key)
	if err == nil && response != nil {
		if l := log.Debug(); l.Enabled() {
			l.
				Str("evt.name", "http.idempotency.hit").
				Str("key", key).
				Msg("idempotency key found in storage")
		}
		return true, unmarshalResponseToFiberResponse(c, conf, response)
	}

	return false, nil
}
