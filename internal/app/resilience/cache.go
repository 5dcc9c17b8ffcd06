package resilience

import (
	"sync"
	"time"

	"github.com/biner/iptv-proxy/internal/pkg/metrics"

	"go.uber.org/zap"
)

// storeSkipped 获取锁超时、新结果没有写入缓存时记录的指标状态
const storeSkipped = "store_skipped"

const (
	defaultLockTimeout = 50 * time.Millisecond
	lockPollInterval   = time.Millisecond
)

// Kind 缓存的产物类型，每种类型只保存一份
type Kind string

const (
	KindPlaylist Kind = "playlist"
	KindXMLTV    Kind = "xmltv"
)

// State 产物的来源
type State int

const (
	StateUnavailable State = iota // 本次生成失败且没有缓存
	StateFresh                    // 本次生成成功
	StateStale                    // 本次生成失败，返回上一次成功的结果
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unavailable"
	}
}

// Result Resolve的返回结果，Err为本次生成时的错误
type Result struct {
	State   State
	Payload string
	Err     error
}

// Cache 保存每种产物最近一次成功的结果，不会过期
// 获取锁超时视为没有缓存，避免阻塞请求
type Cache struct {
	mu          sync.RWMutex
	entries     map[Kind]string
	lockTimeout time.Duration
	logger      *zap.Logger
}

func NewCache() *Cache {
	return NewCacheWithTimeout(defaultLockTimeout)
}

// NewCacheWithTimeout 创建缓存并指定获取锁的最长等待时间
func NewCacheWithTimeout(lockTimeout time.Duration) *Cache {
	return &Cache{
		entries:     make(map[Kind]string),
		lockTimeout: lockTimeout,
		logger:      zap.L(),
	}
}

// Put 覆盖保存产物，获取锁超时返回false
func (c *Cache) Put(kind Kind, payload string) bool {
	if !tryAcquire(c.mu.TryLock, c.lockTimeout) {
		return false
	}
	defer c.mu.Unlock()

	c.entries[kind] = payload
	return true
}

// Get 获取最近一次保存的产物，没有保存过或获取锁超时返回false
func (c *Cache) Get(kind Kind) (string, bool) {
	if !tryAcquire(c.mu.TryRLock, c.lockTimeout) {
		return "", false
	}
	defer c.mu.RUnlock()

	payload, ok := c.entries[kind]
	return payload, ok
}

// Resolve 生成产物，成功时更新缓存，失败时尝试返回缓存
func (c *Cache) Resolve(kind Kind, produce func() (string, error)) Result {
	payload, err := produce()
	if err == nil {
		if !c.Put(kind, payload) {
			// 本次结果没有写入，之后的失败会返回更早的结果
			c.logger.Warn("Failed to store the artifact, lock not acquired.", zap.String("kind", string(kind)), zap.Duration("timeout", c.lockTimeout))
			metrics.RecordArtifact(string(kind), storeSkipped)
		}
		metrics.RecordArtifact(string(kind), StateFresh.String())
		return Result{State: StateFresh, Payload: payload}
	}

	if cached, ok := c.Get(kind); ok {
		metrics.RecordArtifact(string(kind), StateStale.String())
		return Result{State: StateStale, Payload: cached, Err: err}
	}

	metrics.RecordArtifact(string(kind), StateUnavailable.String())
	return Result{State: StateUnavailable, Err: err}
}

// tryAcquire 在超时时间内轮询获取锁
func tryAcquire(try func() bool, timeout time.Duration) bool {
	if try() {
		return true
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(lockPollInterval)
		if try() {
			return true
		}
	}
	return false
}
