package hwctc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/biner/iptv-proxy/internal/app/iptv"
	"github.com/biner/iptv-proxy/internal/pkg/metrics"

	"go.uber.org/zap"
)

// SessionState 登录会话的状态
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateHandshaking
	StateAuthenticated
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

// Session 认证后的HTTP客户端和EPG服务器地址，创建后不再修改
type Session struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	createdAt  time.Time
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.createdAt) >= ttl
}

// get 使用会话请求EPG服务器上的接口
func (s *Session) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	return doGet(ctx, s.httpClient, s.headers, op, s.baseURL+path, params)
}

// SessionManager 负责登录并缓存会话，会话过期后由下一个调用方重新登录
// 并发调用可能同时触发多次登录，以最后一次成功的结果为准
type SessionManager struct {
	config *Config
	opts   options

	current     atomic.Pointer[Session]
	handshaking atomic.Int32

	logger *zap.Logger
}

func newSessionManager(config *Config, opts options, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		config: config,
		opts:   opts,
		logger: logger,
	}
}

// Session 返回有效的会话，没有或已过期时重新登录
func (m *SessionManager) Session(ctx context.Context) (*Session, error) {
	if s := m.current.Load(); s != nil && !s.expired(m.opts.now(), m.opts.ttl) {
		metrics.RecordSessionReuse()
		return s, nil
	}

	m.handshaking.Add(1)
	s, err := m.login(ctx)
	m.handshaking.Add(-1)
	metrics.RecordHandshake(err == nil)
	if err != nil {
		m.logger.Error("Failed to login.", zap.String("user", m.config.User), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", iptv.ErrLogin, err)
	}

	if old := m.current.Swap(s); old != nil {
		old.httpClient.CloseIdleConnections()
	}
	m.logger.Info("Login succeeded.", zap.String("baseURL", s.baseURL))
	return s, nil
}

// State 返回当前会话的状态
func (m *SessionManager) State() SessionState {
	if m.handshaking.Load() > 0 {
		return StateHandshaking
	}

	s := m.current.Load()
	switch {
	case s == nil:
		return StateUnauthenticated
	case s.expired(m.opts.now(), m.opts.ttl):
		return StateExpired
	default:
		return StateAuthenticated
	}
}

// Close 关闭当前会话的空闲连接
func (m *SessionManager) Close() {
	if s := m.current.Load(); s != nil {
		s.httpClient.CloseIdleConnections()
	}
}
