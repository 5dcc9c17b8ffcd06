package iptv

import (
	"context"
)

// Client IPTV平台的客户端
type Client interface {
	// GetAllChannelList 获取所有频道列表，不含节目单
	GetAllChannelList(ctx context.Context) ([]Channel, error)
	// GetAllChannelProgramList 获取所有频道及其节目单，单个频道的节目单获取失败时该频道的节目单为空
	GetAllChannelProgramList(ctx context.Context) ([]Channel, error)
	// GetChannelDateProgramList 获取指定频道某一天的节目单
	GetChannelDateProgramList(ctx context.Context, channelID uint64, date string) (*Channel, error)
	// GetChannelIcon 获取频道台标，PNG格式
	GetChannelIcon(ctx context.Context, id string) ([]byte, error)
}
