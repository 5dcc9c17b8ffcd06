package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/biner/iptv-proxy/internal/app/config"
	"github.com/biner/iptv-proxy/internal/app/iptv"
	"github.com/biner/iptv-proxy/internal/app/iptv/hwctc"
	"github.com/biner/iptv-proxy/internal/app/resilience"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const extraRequestTimeout = 10 * time.Second

// ErrNoChannels 频道列表为空时不生成直播源和节目单，由缓存兜底
var ErrNoChannels = errors.New("no channels found")

// Handler 处理HTTP请求，持有IPTV客户端和最近一次成功生成的结果
type Handler struct {
	client iptv.Client
	cache  *resilience.Cache
	index  *tvgIndex

	m3uOpts       iptv.M3UOptions
	extraPlaylist string
	extraXMLTV    string
	httpClient    *http.Client // 获取附加的播放列表和节目单

	now    func() time.Time
	logger *zap.Logger
}

// NewHandler 创建Handler，conf需已通过Validate()
func NewHandler(iptvClient iptv.Client, conf *config.Config) *Handler {
	return &Handler{
		client:        iptvClient,
		cache:         resilience.NewCache(),
		index:         newTvgIndex(),
		m3uOpts:       conf.M3UOptions(),
		extraPlaylist: conf.M3U8.ExtraPlaylist,
		extraXMLTV:    conf.M3U8.ExtraXMLTV,
		httpClient: &http.Client{
			Timeout: extraRequestTimeout,
		},
		now:    time.Now,
		logger: zap.L(),
	}
}

// NewIPTVClient 校验配置文件并创建IPTV客户端
func NewIPTVClient(conf *config.Config) (*hwctc.Client, error) {
	// 校验配置文件
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return hwctc.NewClient(conf.IPTV, hwctc.WithRequestTimeout(conf.RequestTimeout()))
}

func NewEngine(ctx context.Context, conf *config.Config, iptvClient iptv.Client) *gin.Engine {
	h := NewHandler(iptvClient, conf)

	// 后台预先生成直播源和节目单
	if conf.Server.WarmInterval > 0 {
		Schedule(ctx, h, conf.Server.WarmInterval)
	}

	return h.Engine()
}

// Engine 创建 Gin 路由引擎并注册所有接口
func (h *Handler) Engine() *gin.Engine {
	r := gin.New()

	// 日志记录
	r.Use(ginzap.Ginzap(h.logger, "", false))
	r.Use(ginzap.RecoveryWithZap(h.logger, true))

	// 查询直播源-m3u格式
	r.GET("/playlist", h.GetPlaylist)
	// 查询EPG-xml格式
	r.GET("/xmltv", h.GetXMLTV)
	// 查询EPG-json格式，单个频道某一天
	r.GET("/", h.GetJsonEPG)
	// 查询频道logo
	r.GET("/logo/:file", h.GetLogo)
	// 监控指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// writeArtifact 返回生成的结果，生成失败时使用缓存，都没有则返回500
func (h *Handler) writeArtifact(c *gin.Context, kind resilience.Kind, res resilience.Result, contentType string) {
	switch res.State {
	case resilience.StateFresh:
		c.Data(http.StatusOK, contentType, []byte(res.Payload))
	case resilience.StateStale:
		h.logger.Warn("Failed to refresh, serving the cached result.", zap.String("kind", string(kind)), zap.Error(res.Err))
		c.Data(http.StatusOK, contentType, []byte(res.Payload))
	default:
		h.logger.Error("Failed to refresh and no cached result.", zap.String("kind", string(kind)), zap.Error(res.Err))
		c.String(http.StatusInternalServerError, "Error getting channels: %v", res.Err)
	}
}
