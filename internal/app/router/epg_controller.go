package router

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/biner/iptv-proxy/internal/app/iptv"
	"github.com/biner/iptv-proxy/internal/app/resilience"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const xmlContentType = "text/xml"

// ChannelDateJsonEPG 频道的JSON格式EPG
type ChannelDateJsonEPG struct {
	Date        string    `json:"date"`
	ChannelName string    `json:"channel_name"`
	URL         string    `json:"url"`
	EPGData     []JsonEPG `json:"epg_data"`
}

// JsonEPG JSON格式EPG
type JsonEPG struct {
	Start string `json:"start"` // 开始时间，HH:MM
	End   string `json:"end"`   // 结束时间，HH:MM
	Title string `json:"title"` // 标题
}

// GetXMLTV 返回XMLTV格式的EPG
func (h *Handler) GetXMLTV(c *gin.Context) {
	res := h.cache.Resolve(resilience.KindXMLTV, func() (string, error) {
		return h.BuildXMLTV(c.Request.Context())
	})
	h.writeArtifact(c, resilience.KindXMLTV, res, xmlContentType)
}

// BuildXMLTV 获取所有频道的节目单并生成XMLTV内容
func (h *Handler) BuildXMLTV(ctx context.Context) (string, error) {
	var (
		channels []iptv.Channel
		extra    *iptv.XmlEPG
	)

	// 附加的节目单和频道节目单同时获取
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		channels, err = h.client.GetAllChannelProgramList(gCtx)
		return err
	})
	g.Go(func() error {
		extra = h.fetchExtraXMLTV(gCtx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	if len(channels) == 0 {
		return "", ErrNoChannels
	}

	h.logger.Sugar().Infof("EPG data updated, rows: %d.", len(channels))
	return iptv.ToXMLTVFormat(channels, extra)
}

// GetJsonEPG 获取单个频道某一天的JSON格式EPG，参数：ch频道名称、date日期、id频道ID（可选）
func (h *Handler) GetJsonEPG(c *gin.Context) {
	chName := c.Query("ch")
	dateStr := c.Query("date")
	if dateStr == "" {
		dateStr = h.now().In(iptv.Location).Format("2006-01-02")
	}
	dateStr = formatDateString(dateStr)

	// 校验日期
	if _, err := iptv.ParseDate(dateStr); err != nil {
		h.logger.Warn("Date format error.", zap.String("date", dateStr), zap.Error(err))
		c.PureJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 优先使用参数中的频道ID，其次按频道名称查找
	var channelID uint64
	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			c.PureJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("频道ID '%s' 无效", idStr)})
			return
		}
		channelID = id
	} else {
		if chName == "" {
			h.logger.Warn("The name of the channel is null.")
			c.PureJSON(http.StatusBadRequest, gin.H{"error": "缺少频道名称"})
			return
		}

		id, ok := h.index.lookup(chName)
		if !ok {
			h.logger.Error("Channel not found.", zap.String("ch", chName))
			c.PureJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("频道 '%s' 未找到", chName)})
			return
		}
		channelID = id
	}

	channel, err := h.client.GetChannelDateProgramList(c.Request.Context(), channelID, dateStr)
	if err != nil {
		// 获取失败时返回不含节目单的频道信息
		h.logger.Error("Failed to get the program list of the channel.", zap.Uint64("channelID", channelID), zap.Error(err))
		channel = &iptv.Channel{
			ID:   channelID,
			Name: chName,
		}
	}

	epgData := make([]JsonEPG, 0, len(channel.Programs))
	for _, program := range channel.Programs {
		epgData = append(epgData, JsonEPG{
			Start: iptv.FormatClock(program.Start),
			End:   iptv.FormatClock(program.Stop),
			Title: program.Title,
		})
	}

	c.PureJSON(http.StatusOK, &ChannelDateJsonEPG{
		Date:        dateStr,
		ChannelName: channel.Name,
		URL:         channel.MulticastURL,
		EPGData:     epgData,
	})
}

// formatDateString 将YYYYMMDD格式的日期转换为YYYY-MM-DD，其他格式原样返回
func formatDateString(dateStr string) string {
	if len(dateStr) != 8 {
		return dateStr
	}

	date, err := time.ParseInLocation("20060102", dateStr, iptv.Location)
	if err != nil {
		return dateStr
	}
	return date.Format("2006-01-02")
}
