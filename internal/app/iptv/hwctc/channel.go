package hwctc

import (
	"context"
	"regexp"

	"github.com/biner/iptv-proxy/internal/app/iptv"
	"github.com/biner/iptv-proxy/internal/pkg/metrics"

	"go.uber.org/zap"
)

const channelListPath = "/EPG/jsp/getchannellistHWCTC.jsp"

// ChannelListParser 从频道列表页面中提取频道
type ChannelListParser interface {
	ParseChannelList(document []byte) []iptv.Channel
}

// 频道列表页面中每个频道形如：
// Authentication.CTCSetConfig('Channel','ChannelID="10799",ChannelName="深圳都市",UserChannelID="1002",ChannelURL="igmp://239.77.1.176:5146|rtsp://...",...,TimeShiftURL="rtsp://...",...')
var chRegex = regexp.MustCompile(`(?m)Authentication.CTCSetConfig([^"]*)ChannelID="([^"]*)",ChannelName="([^"]*)",UserChannelID="([^"]*)",ChannelURL="([^|]*)\|([^"]*)",(.*?)TimeShiftURL="([^"]*)"`)

// RegexChannelListParser 使用正则表达式提取频道，不完整的频道会被跳过
type RegexChannelListParser struct{}

func (RegexChannelListParser) ParseChannelList(document []byte) []iptv.Channel {
	matchesList := chRegex.FindAllSubmatch(document, -1)

	channels := make([]iptv.Channel, 0, len(matchesList))
	for _, matches := range matchesList {
		if len(matches) != 9 {
			continue
		}

		channels = append(channels, iptv.Channel{
			ID:            iptv.ParseChannelID(string(matches[2])),
			Name:          iptv.NormalizeChannelName(string(matches[3])),
			UserChannelID: string(matches[4]),
			MulticastURL:  string(matches[5]),
			TimeShiftURL:  string(matches[8]),
		})
	}
	return channels
}

// GetAllChannelList 获取频道列表
func (c *Client) GetAllChannelList(ctx context.Context) ([]iptv.Channel, error) {
	s, err := c.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	return c.getChannelList(ctx, s)
}

func (c *Client) getChannelList(ctx context.Context, s *Session) ([]iptv.Channel, error) {
	result, err := s.get(ctx, "get channel list", channelListPath, nil)
	if err != nil {
		return nil, err
	}

	channels := c.parser.ParseChannelList(result)
	metrics.SetCatalogSize(len(channels))
	c.logger.Info("Got channel list.", zap.Int("count", len(channels)))
	return channels, nil
}
