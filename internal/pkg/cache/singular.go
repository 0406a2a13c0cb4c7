package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// Singular is a single in-process value of type T.
type Singular[T any] struct {
	// m serializes the slow path of MutexGetSet
	m sync.Mutex

	key string

	c *cache.Cache
}

func NewSingular[T any](key string) *Singular[T] {
	return &Singular[T]{
		key: key,
		c:   cache.New(cache.NoExpiration, time.Minute*10),
	}
}

// Get returns ErrNotFound when the value is absent or expired.
func (c *Singular[T]) Get(dest *T) error {
	result, ok := c.c.Get(c.key)
	if !ok {
		return ErrNotFound
	}
	*dest = result.(T)
	return nil
}

func (c *Singular[T]) Set(value T, expire time.Duration) {
	c.c.Set(c.key, value, expire)
}

// MutexGetSet reads the value into dest, computing it with valueFunc at most
// once across concurrent misses.
func (c *Singular[T]) MutexGetSet(dest *T, valueFunc func() (T, error), expire time.Duration) error {
	if err := c.Get(dest); err == nil {
		return nil
	}

	c.m.Lock()
	defer c.m.Unlock()
	if err := c.Get(dest); err == nil {
		return nil
	}

	value, err := valueFunc()
	if err != nil {
		log.Error().Err(err).Str("key", c.key).Msg("failed to get value from valueFunc() in MutexGetSet")
		return err
	}

	c.Set(value, expire)
	*dest = value
	return nil
}

func (c *Singular[T]) Delete() error {
	c.c.Flush()
	return nil
}
