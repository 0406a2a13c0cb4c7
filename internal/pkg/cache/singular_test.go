package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingularGetSet(t *testing.T) {
	c := NewSingular[[]string]("names")

	var dest []string
	assert.True(t, errors.Is(c.Get(&dest), ErrNotFound))

	c.Set([]string{"Chess"}, time.Minute)
	require.NoError(t, c.Get(&dest))
	assert.Equal(t, []string{"Chess"}, dest)

	require.NoError(t, c.Delete())
	assert.True(t, errors.Is(c.Get(&dest), ErrNotFound))
}

func TestSingularMutexGetSetComputesOnce(t *testing.T) {
	c := NewSingular[int]("answer")
	var calls int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var dest int
			err := c.MutexGetSet(&dest, func() (int, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return 42, nil
			}, time.Minute)
			assert.NoError(t, err)
			assert.Equal(t, 42, dest)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSingularMutexGetSetError(t *testing.T) {
	c := NewSingular[int]("broken")
	var dest int
	err := c.MutexGetSet(&dest, func() (int, error) {
		return 0, errors.New("boom")
	}, time.Minute)
	assert.EqualError(t, err, "boom")
	assert.True(t, errors.Is(c.Get(&dest), ErrNotFound))
}
