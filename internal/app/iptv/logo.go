package iptv

import (
	"strconv"
	"strings"
)

// ResolveLogoURL 根据台标地址模板生成台标地址，支持{name}和{id}占位符
func ResolveLogoURL(template string, channel *Channel, tvgName string) string {
	if template == "" {
		return ""
	}
	return strings.NewReplacer(
		"{name}", tvgName,
		"{id}", strconv.FormatUint(channel.ID, 10),
	).Replace(template)
}
