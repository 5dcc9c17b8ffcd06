package router

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/biner/iptv-proxy/internal/app/iptv"

	"go.uber.org/zap"
)

// fetchExtra 下载附加的播放列表或节目单
func (h *Handler) fetchExtra(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// fetchExtraPlaylist 获取附加的播放列表（去掉#EXTM3U头），失败时忽略
func (h *Handler) fetchExtraPlaylist(ctx context.Context) string {
	if h.extraPlaylist == "" {
		return ""
	}

	data, err := h.fetchExtra(ctx, h.extraPlaylist)
	if err != nil {
		h.logger.Warn("Failed to get the extra playlist. Skip it.", zap.String("url", h.extraPlaylist), zap.Error(err))
		return ""
	}
	return iptv.StripM3UHeader(string(data))
}

// fetchExtraXMLTV 获取附加的节目单，失败时忽略
func (h *Handler) fetchExtraXMLTV(ctx context.Context) *iptv.XmlEPG {
	if h.extraXMLTV == "" {
		return nil
	}

	data, err := h.fetchExtra(ctx, h.extraXMLTV)
	if err != nil {
		h.logger.Warn("Failed to get the extra xmltv. Skip it.", zap.String("url", h.extraXMLTV), zap.Error(err))
		return nil
	}

	xmlEPG, err := iptv.ParseXmlEPG(bytes.NewReader(data))
	if err != nil {
		h.logger.Warn("Failed to parse the extra xmltv. Skip it.", zap.String("url", h.extraXMLTV), zap.Error(err))
		return nil
	}
	return xmlEPG
}
