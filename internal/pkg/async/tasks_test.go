package async

import (
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRespectsLimit(t *testing.T) {
	var inFlight, peak int32
	src := []int{1, 2, 3, 4, 5, 6, 7, 8}

	got, err := Map(src, 3, func(i int) (int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return i * 10, nil
	})
	require.NoError(t, err)
	sort.Ints(got)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80}, got)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestMapCollectsErrors(t *testing.T) {
	got, err := Map([]int{1, 2, 3, 4}, 0, func(i int) (string, error) {
		if i%2 == 0 {
			return "", fmt.Errorf("even %d", i)
		}
		return fmt.Sprint(i), nil
	})
	require.Error(t, err)
	assert.Len(t, err.(Errors).E, 2)
	assert.Len(t, got, 2)
}

func TestMapEmpty(t *testing.T) {
	got, err := Map([]int{}, 2, func(i int) (int, error) { return i, nil })
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWaitAll(t *testing.T) {
	assert.NoError(t, WaitAll(Errable(func() error { return nil }), Errable(func() error { return nil })))

	err := WaitAll(
		Errable(func() error { return nil }),
		Errable(func() error { return fmt.Errorf("redis down") }),
	)
	assert.EqualError(t, err, "redis down")
}
