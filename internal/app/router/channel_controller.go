package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/biner/iptv-proxy/internal/app/iptv"
	"github.com/biner/iptv-proxy/internal/app/resilience"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	m3uContentType = "application/vnd.apple.mpegurl"
	pngContentType = "image/png"
)

// GetPlaylist 查询直播源m3u
func (h *Handler) GetPlaylist(c *gin.Context) {
	res := h.cache.Resolve(resilience.KindPlaylist, func() (string, error) {
		return h.BuildPlaylist(c.Request.Context())
	})
	h.writeArtifact(c, resilience.KindPlaylist, res, m3uContentType)
}

// BuildPlaylist 获取最新的频道列表并生成m3u内容，同时更新频道名称索引
func (h *Handler) BuildPlaylist(ctx context.Context) (string, error) {
	var (
		channels []iptv.Channel
		extra    string
	)

	// 附加的播放列表和频道列表同时获取
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		channels, err = h.client.GetAllChannelList(gCtx)
		return err
	})
	g.Go(func() error {
		extra = h.fetchExtraPlaylist(gCtx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	if len(channels) == 0 {
		return "", ErrNoChannels
	}

	h.index.update(channels, &h.m3uOpts)
	h.logger.Sugar().Infof("The channel list has been updated, rows: %d.", len(channels))

	return iptv.ToM3UFormat(channels, h.m3uOpts, extra), nil
}

// GetLogo 查询频道台标，路径形如 /logo/{id}.png
func (h *Handler) GetLogo(c *gin.Context) {
	file := c.Param("file")
	id, ok := strings.CutSuffix(file, ".png")
	if !ok || id == "" {
		c.Status(http.StatusNotFound)
		return
	}

	icon, err := h.client.GetChannelIcon(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("Failed to get the channel icon.", zap.String("id", id), zap.Error(err))
		c.String(http.StatusNotFound, "Error getting channel icon: %v", err)
		return
	}

	c.Data(http.StatusOK, pngContentType, icon)
}
