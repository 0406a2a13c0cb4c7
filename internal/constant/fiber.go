package constant

import "time"

const (
	ContextKeyRequestID  = "requestId"
	ContextKeyTranslator = "T"

	RequestIDHeader = "X-Catrank-Request-ID"
	CacheHeader     = "X-Catrank-Cache"

	// SlimHeaderKey marks probe requests that tracing and Sentry transactions skip.
	SlimHeaderKey = "X-Slim"
)

const (
	IdempotencyHeader       = "X-Catrank-Idempotency"
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotencyKeyLocalsKey = "idempotencyKey"

	SnapshotIdempotencyLifetime     = 24 * time.Hour
	SnapshotIdempotencyRedisKey     = "idempotency:snapshots"
	AdminCollectLimiterRedisKey     = "limiter:admin:collect"
	AdminCollectLimiterMax          = 6
	AdminCollectLimiterWindowLength = 10 * time.Minute
)
