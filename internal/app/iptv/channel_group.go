package iptv

import (
	"regexp"
)

const otherGroupName = "普通频道"

type ChannelGroupRules struct {
	Name  string
	Rules []*regexp.Regexp
}

// DefaultChannelGroupRules 缺省的频道分组规则，按顺序匹配
func DefaultChannelGroupRules() []ChannelGroupRules {
	return []ChannelGroupRules{
		{
			Name:  "超清频道",
			Rules: []*regexp.Regexp{regexp.MustCompile("超清")},
		},
		{
			Name:  "高清频道",
			Rules: []*regexp.Regexp{regexp.MustCompile("高清")},
		},
	}
}

// GetChannelGroupName 根据频道名称自动获取分组名称
func GetChannelGroupName(chGroupRulesList []ChannelGroupRules, channelName string) string {
	for _, groupRules := range chGroupRulesList {
		for _, groupRule := range groupRules.Rules {
			if groupRule.MatchString(channelName) {
				return groupRules.Name
			}
		}
	}
	return otherGroupName
}
