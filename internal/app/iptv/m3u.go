package iptv

import (
	"fmt"
	"strconv"
	"strings"
)

const catchupPlayseek = "playseek=${(b)yyyyMMddHHmmss}-${(e)yyyyMMddHHmmss}"

// M3UOptions 生成M3U直播源的选项
type M3UOptions struct {
	XTvgURL      string              // 写入#EXTM3U头的x-tvg-url
	UdpProxyURI  string              // udpxy等组播转单播的代理地址，例如：http://192.168.1.1:4022
	RtspProxyURI string              // rtsp代理地址
	LogoURL      string              // 台标地址模板
	NameFormat   *NameFormatter      // 为空时tvg-name使用原频道名称
	GroupRules   []ChannelGroupRules // 频道分组规则
}

// TvgName 获取频道的tvg-name
func (o *M3UOptions) TvgName(channel *Channel) string {
	if o.NameFormat == nil {
		return channel.Name
	}
	return o.NameFormat.Format(channel.Name)
}

// ToM3UFormat 转换为M3U格式内容，extra为附加的播放列表（不含#EXTM3U头）
func ToM3UFormat(channels []Channel, opts M3UOptions, extra string) string {
	var sb strings.Builder
	if opts.XTvgURL == "" {
		sb.WriteString("#EXTM3U\n")
	} else {
		sb.WriteString(fmt.Sprintf("#EXTM3U x-tvg-url=\"%s\"\n", opts.XTvgURL))
	}

	for i := range channels {
		channel := &channels[i]
		tvgName := opts.TvgName(channel)
		groupName := GetChannelGroupName(opts.GroupRules, channel.Name)

		// 回看地址
		rtspURL := channel.TimeShiftURL
		if opts.RtspProxyURI != "" {
			rtspURL = strings.Replace(rtspURL, "rtsp://", strings.TrimSuffix(opts.RtspProxyURI, "/")+"/rtsp/", 1)
		}
		connector := "?"
		if strings.Contains(rtspURL, "?") {
			connector = "&"
		}

		// 直播地址
		playURL := channel.MulticastURL
		if opts.UdpProxyURI != "" {
			playURL = strings.Replace(playURL, "igmp://", strings.TrimSuffix(opts.UdpProxyURI, "/")+"/udp/", 1)
		}

		sb.WriteString(fmt.Sprintf("#EXTINF:-1 tvg-id=\"%s\" tvg-name=\"%s\" tvg-chno=\"%s\" catchup=\"default\" catchup-source=\"%s%s%s\" tvg-logo=\"%s\" group-title=\"%s\",%s\n%s\n",
			strconv.FormatUint(channel.ID, 10), tvgName, channel.UserChannelID,
			rtspURL, connector, catchupPlayseek,
			ResolveLogoURL(opts.LogoURL, channel, tvgName), groupName, channel.Name,
			playURL))
	}

	if extra != "" {
		sb.WriteString(strings.TrimPrefix(extra, "\n"))
		if !strings.HasSuffix(extra, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// StripM3UHeader 去掉播放列表的#EXTM3U头，用于合并附加的播放列表
func StripM3UHeader(content string) string {
	if !strings.HasPrefix(content, "#EXTM3U") {
		return ""
	}
	content = strings.TrimPrefix(content, "#EXTM3U")
	// 头部可能带有属性，例如x-tvg-url
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		return content[idx+1:]
	}
	return ""
}
