package memo_test

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/modcache/internal/engine/memo"
)

func TestMap_GetOrCompute(t *testing.T) {
	m := memo.New[int]()

	calls := 0
	compute := func() int {
		calls++
		return 42
	}

	assert.Equal(t, 42, m.GetOrCompute("a", compute))
	assert.Equal(t, 42, m.GetOrCompute("a", compute))
	assert.Equal(t, 1, calls)

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = m.Get("b")
	assert.False(t, ok)
}

func TestMap_Concurrent(t *testing.T) {
	m := memo.New[string]()

	var computed atomic.Int64
	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := strconv.Itoa(i % 8)
			got := m.GetOrCompute(key, func() string {
				computed.Add(1)
				return "v" + key
			})
			assert.Equal(t, "v"+key, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, m.Len())
	assert.GreaterOrEqual(t, computed.Load(), int64(8))
}
