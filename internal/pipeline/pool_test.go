package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPreservesOrder(t *testing.T) {
	got := Map(context.Background(), 20, 4,
		func(_ context.Context, i int) int {
			time.Sleep(time.Duration(20-i) * time.Millisecond)
			return i * i
		},
		func(int, any) int { return -1 },
	)
	require.Len(t, got, 20)
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

func TestMapBoundsConcurrency(t *testing.T) {
	const limit = 5
	var active, peak atomic.Int32

	Map(context.Background(), 60, limit,
		func(_ context.Context, i int) struct{} {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
			return struct{}{}
		},
		func(int, any) struct{} { return struct{}{} },
	)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Positive(t, peak.Load())
}

func TestMapIsolatesPanics(t *testing.T) {
	got := Map(context.Background(), 5, 2,
		func(_ context.Context, i int) string {
			if i == 2 {
				panic("bad record")
			}
			return fmt.Sprint(i)
		},
		func(i int, p any) string { return fmt.Sprintf("recovered %d: %v", i, p) },
	)
	assert.Equal(t, []string{"0", "1", "recovered 2: bad record", "3", "4"}, got)
}

func TestMapEmpty(t *testing.T) {
	got := Map(context.Background(), 0, 3,
		func(context.Context, int) int { return 1 },
		func(int, any) int { return 0 },
	)
	assert.Empty(t, got)
}
