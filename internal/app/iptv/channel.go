package iptv

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

type Channel struct {
	ID            uint64    `json:"id"`            // 频道ID
	UserChannelID string    `json:"userChannelID"` // 用户可见的频道号
	Name          string    `json:"name"`          // 频道名称（已规范化）
	MulticastURL  string    `json:"multicastURL"`  // 组播地址，例如：igmp://239.77.1.176:5146
	TimeShiftURL  string    `json:"timeShiftURL"`  // 时移地址（回放地址），rtsp
	Programs      []Program `json:"programs"`      // 节目单
}

// Program 节目单，上游数据不保证开始时间早于结束时间
type Program struct {
	Start int64  `json:"start"` // 开始时间，毫秒时间戳
	Stop  int64  `json:"stop"`  // 结束时间，毫秒时间戳
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// fullWidthPlus 只有全角加号转为半角，括号、冒号等其他全角字符保持原样
const fullWidthPlus = '＋'

// NormalizeChannelName 规范化频道名称：＋ -> +，去掉空白和连字符
func NormalizeChannelName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == fullWidthPlus {
			return width.LookupRune(r).Narrow()
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "")
	return strings.ReplaceAll(name, "-", "")
}

// ParseChannelID 解析频道ID，非数字ID使用各字符编码之和代替
// 这种校验和可能冲突，但结果稳定，改动会影响对外的频道ID
func ParseChannelID(raw string) uint64 {
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return id
	}

	var sum uint64
	for _, r := range raw {
		sum += uint64(r)
	}
	return sum
}

// FindChannel 根据频道ID查找频道
func FindChannel(channels []Channel, id uint64) (*Channel, error) {
	for i := range channels {
		if channels[i].ID == id {
			return &channels[i], nil
		}
	}
	return nil, NewError(ErrNotFound, "find channel "+strconv.FormatUint(id, 10), nil)
}
