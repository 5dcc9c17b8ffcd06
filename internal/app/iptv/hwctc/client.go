package hwctc

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/biner/iptv-proxy/internal/app/iptv"

	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 5 * time.Second
	defaultSessionTTL     = 30 * time.Minute
	maxNonce              = 10000000
)

type Client struct {
	config   *Config           // hwctc相关配置
	sessions *SessionManager   // 登录会话
	parser   ChannelListParser // 频道列表解析器

	now    func() time.Time
	logger *zap.Logger // 日志
}

var _ iptv.Client = (*Client)(nil)

type Option func(*options)

type options struct {
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time
	nonce   func() int
	parser  ChannelListParser
}

// WithRequestTimeout 设置单个HTTP请求的超时时间
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

// WithSessionTTL 设置登录会话的有效期
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock 替换时钟，用于测试
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithNonce 替换生成Authenticator时使用的随机数
func WithNonce(nonce func() int) Option {
	return func(o *options) { o.nonce = nonce }
}

// WithChannelListParser 替换频道列表的解析方式
func WithChannelListParser(parser ChannelListParser) Option {
	return func(o *options) { o.parser = parser }
}

func NewClient(config *Config, opts ...Option) (*Client, error) {
	// config不能为空
	if config == nil {
		return nil, fmt.Errorf("client config is nil")
	} else if err := config.Validate(); err != nil { // 校验config配置
		return nil, err
	}

	o := options{
		timeout: defaultRequestTimeout,
		ttl:     defaultSessionTTL,
		now:     time.Now,
		nonce:   func() int { return rand.IntN(maxNonce) },
		parser:  RegexChannelListParser{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := zap.L()
	return &Client{
		config:   config,
		sessions: newSessionManager(config, o, logger),
		parser:   o.parser,
		now:      o.now,
		logger:   logger,
	}, nil
}

// SessionState 当前登录会话的状态
func (c *Client) SessionState() SessionState {
	return c.sessions.State()
}

// Close 关闭当前会话的空闲连接
func (c *Client) Close() {
	c.sessions.Close()
}
