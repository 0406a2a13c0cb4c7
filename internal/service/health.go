package service

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"catrank.dev/backend/internal/pkg/async"
)

var (
	ErrDatabaseNotReachable = errors.New("database not reachable")
	ErrRedisNotReachable    = errors.New("redis not reachable")
	ErrNATSNotReachable     = errors.New("nats not reachable")
)

type Health struct {
	DB    *bun.DB
	Redis *redis.Client
	NATS  *nats.Conn
}

func NewHealth(db *bun.DB, redis *redis.Client, nats *nats.Conn) *Health {
	return &Health{
		DB:    db,
		Redis: redis,
		NATS:  nats,
	}
}

func (s *Health) Ping(ctx context.Context) error {
	// nats pings itself every 20 seconds (see infra/nats.go), so its status is current
	status := s.NATS.Status()
	if status != nats.CONNECTED && status != nats.DRAINING_PUBS && status != nats.DRAINING_SUBS {
		return errors.Wrap(ErrNATSNotReachable, status.String())
	}

	return async.WaitAll(
		async.Errable(func() error {
			if err := s.DB.PingContext(ctx); err != nil {
				return errors.Wrap(ErrDatabaseNotReachable, err.Error())
			}
			return nil
		}),
		async.Errable(func() error {
			if err := s.Redis.Ping(ctx).Err(); err != nil {
				return errors.Wrap(ErrRedisNotReachable, err.Error())
			}
			return nil
		}),
	)
}
