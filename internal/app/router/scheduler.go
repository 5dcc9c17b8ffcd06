package router

import (
	"context"
	"time"

	"github.com/biner/iptv-proxy/internal/app/resilience"

	"go.uber.org/zap"
)

// Schedule 定时在后台生成直播源和节目单，成功的结果写入缓存，启动时先执行一次
func Schedule(ctx context.Context, h *Handler, interval time.Duration) {
	if interval <= 0 {
		return
	}

	// 创建定时任务
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		h.warm(ctx)
		for {
			select {
			case <-ctx.Done():
				h.logger.Info("The scheduling task has been stopped.")
				return
			case <-ticker.C:
				h.warm(ctx)
			}
		}
	}()
}

// warm 生成一次直播源和节目单
func (h *Handler) warm(ctx context.Context) {
	h.logger.Info("Start executing the scheduling task.")

	tasks := []struct {
		kind  resilience.Kind
		build func(context.Context) (string, error)
	}{
		{resilience.KindPlaylist, h.BuildPlaylist},
		{resilience.KindXMLTV, h.BuildXMLTV},
	}
	for _, task := range tasks {
		res := h.cache.Resolve(task.kind, func() (string, error) {
			return task.build(ctx)
		})
		if res.Err != nil {
			h.logger.Error("Failed to execute the scheduling task.", zap.String("kind", string(task.kind)), zap.Error(res.Err))
		}
	}

	h.logger.Info("The scheduling task has been completed.")
}
