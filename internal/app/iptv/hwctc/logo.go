package hwctc

import (
	"context"
	"net/url"
)

const channelIconPath = "/EPG/jsp/iptvsnmv3/en/list/images/channelIcon/"

// GetChannelIcon 获取频道台标
func (c *Client) GetChannelIcon(ctx context.Context, id string) ([]byte, error) {
	s, err := c.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, "get channel icon", channelIconPath+url.PathEscape(id)+".png", nil)
}
