package infra

import (
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedSync hands out the distributed locks that keep collector and archive
// runs exclusive across replicas.
func RedSync(client *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(client))
}
