package router

import (
	"sync"

	"github.com/biner/iptv-proxy/internal/app/iptv"
)

// tvgIndex 频道名称到频道ID的映射，每次成功生成直播源后整体替换
type tvgIndex struct {
	mu    sync.RWMutex
	names map[string]uint64
}

func newTvgIndex() *tvgIndex {
	return &tvgIndex{names: make(map[string]uint64)}
}

// update 同时登记tvg-name和原频道名称，tvg-name优先
func (idx *tvgIndex) update(channels []iptv.Channel, opts *iptv.M3UOptions) {
	names := make(map[string]uint64, len(channels)*2)
	for i := range channels {
		if _, ok := names[channels[i].Name]; !ok {
			names[channels[i].Name] = channels[i].ID
		}
	}
	for i := range channels {
		names[opts.TvgName(&channels[i])] = channels[i].ID
	}

	idx.mu.Lock()
	idx.names = names
	idx.mu.Unlock()
}

func (idx *tvgIndex) lookup(name string) (uint64, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	id, ok := idx.names[name]
	return id, ok
}
