package iptv

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// NameFormatter 格式化tvg-name：先按清理规则去掉多余字样，再按映射表替换
type NameFormatter struct {
	patterns []string
	mapping  map[string]string
}

func NewNameFormatter(nameClean []string, nameMapping map[string]string) *NameFormatter {
	patterns := slices.Clone(nameClean)
	// 长的优先，避免复合词被拆开
	slices.SortStableFunc(patterns, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	patterns = slices.Compact(patterns)
	patterns = slices.DeleteFunc(patterns, func(s string) bool { return s == "" })

	return &NameFormatter{
		patterns: patterns,
		mapping:  nameMapping,
	}
}

// Format 返回格式化后的频道名称
func (f *NameFormatter) Format(name string) string {
	cleaned := name
	for _, pattern := range f.patterns {
		cleaned = strings.ReplaceAll(cleaned, pattern, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	if mapped, ok := f.mapping[cleaned]; ok {
		zap.L().Debug("Channel name mapped.", zap.String("from", cleaned), zap.String("to", mapped))
		return mapped
	}
	return cleaned
}
