package resilience

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errProduce = errors.New("upstream unavailable")

func TestCache_NoneBeforeWrite(t *testing.T) {
	c := NewCache()

	_, ok := c.Get(KindPlaylist)
	assert.False(t, ok)
	_, ok = c.Get(KindXMLTV)
	assert.False(t, ok)
}

func TestCache_LastWriteWins(t *testing.T) {
	c := NewCache()

	for i := 0; i < 5; i++ {
		require.True(t, c.Put(KindPlaylist, "v"+strconv.Itoa(i)))
	}
	got, ok := c.Get(KindPlaylist)
	require.True(t, ok)
	assert.Equal(t, "v4", got)

	// 不同类型互不影响
	_, ok = c.Get(KindXMLTV)
	assert.False(t, ok)
}

func TestCache_Resolve(t *testing.T) {
	c := NewCache()

	res := c.Resolve(KindXMLTV, func() (string, error) { return "", errProduce })
	assert.Equal(t, StateUnavailable, res.State)
	assert.ErrorIs(t, res.Err, errProduce)
	assert.Empty(t, res.Payload)

	res = c.Resolve(KindXMLTV, func() (string, error) { return "<tv/>", nil })
	assert.Equal(t, Result{State: StateFresh, Payload: "<tv/>"}, res)

	res = c.Resolve(KindXMLTV, func() (string, error) { return "", errProduce })
	assert.Equal(t, StateStale, res.State)
	assert.Equal(t, "<tv/>", res.Payload)
	assert.ErrorIs(t, res.Err, errProduce)
}

func TestCache_ConcurrentResolve(t *testing.T) {
	c := NewCacheWithTimeout(time.Second)
	require.True(t, c.Put(KindPlaylist, "v1"))

	// 成功和失败的调用同时进行，失败的调用不会写入
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			res := c.Resolve(KindPlaylist, func() (string, error) { return "", errProduce })
			assert.Equal(t, StateStale, res.State)
			assert.Contains(t, []string{"v1", "v2"}, res.Payload)
		}()
		go func() {
			defer wg.Done()
			res := c.Resolve(KindPlaylist, func() (string, error) { return "v2", nil })
			assert.Equal(t, StateFresh, res.State)
		}()
	}
	wg.Wait()

	got, ok := c.Get(KindPlaylist)
	require.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestCache_LockTimeout(t *testing.T) {
	c := NewCacheWithTimeout(5 * time.Millisecond)
	require.True(t, c.Put(KindPlaylist, "v1"))

	// 持有写锁时读写都视为没有缓存
	c.mu.Lock()
	start := time.Now()
	_, ok := c.Get(KindPlaylist)
	assert.False(t, ok)
	assert.False(t, c.Put(KindPlaylist, "v2"))
	assert.Less(t, time.Since(start), time.Second)

	res := c.Resolve(KindPlaylist, func() (string, error) { return "", errProduce })
	assert.Equal(t, StateUnavailable, res.State)
	c.mu.Unlock()

	got, ok := c.Get(KindPlaylist)
	require.True(t, ok)
	assert.Equal(t, "v1", got)
}

func TestCache_ResolveStoreSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewCacheWithTimeout(5 * time.Millisecond)
	c.logger = zap.New(core)
	require.True(t, c.Put(KindXMLTV, "v1"))

	// 生成成功但写锁被占用，结果照常返回，缓存保持旧值并记录告警
	c.mu.Lock()
	res := c.Resolve(KindXMLTV, func() (string, error) { return "v2", nil })
	c.mu.Unlock()

	assert.Equal(t, StateFresh, res.State)
	assert.Equal(t, "v2", res.Payload)

	got, ok := c.Get(KindXMLTV)
	require.True(t, ok)
	assert.Equal(t, "v1", got)

	entries := logs.FilterMessage("Failed to store the artifact, lock not acquired.").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "xmltv", entries[0].ContextMap()["kind"])

	// 写入成功时不记录告警
	c.Resolve(KindXMLTV, func() (string, error) { return "v3", nil })
	assert.Equal(t, 1, logs.Len())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "fresh", StateFresh.String())
	assert.Equal(t, "stale", StateStale.String())
	assert.Equal(t, "unavailable", StateUnavailable.String())
}
