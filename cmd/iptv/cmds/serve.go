package cmds

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/biner/iptv-proxy/internal/app/router"
	"github.com/biner/iptv-proxy/internal/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var listen string

func NewServeCLI() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "启动HTTP服务，提供直播源、EPG等查询接口。",
		RunE: func(cmd *cobra.Command, args []string) error {
			// L()：获取全局logger
			logger := zap.L()

			// 创建IPTV客户端
			iptvClient, err := router.NewIPTVClient(conf)
			if err != nil {
				return err
			}
			defer iptvClient.Close()

			if listen != "" {
				conf.Server.Listen = listen
			}

			gin.SetMode(gin.ReleaseMode)
			r := router.NewEngine(cmd.Context(), conf, iptvClient)

			logger.Info("IPTV proxy is starting.",
				zap.String("user", conf.IPTV.User),
				zap.String("passwd", util.MaskPassword(conf.IPTV.Passwd)),
				zap.String("listen", conf.Server.Listen))
			logger.Sugar().Infof("Playlist: http://%s/playlist, XMLTV: http://%s/xmltv", conf.Server.Listen, conf.Server.Listen)

			srv := &http.Server{
				Addr:    conf.Server.Listen,
				Handler: r,
			}

			// 收到退出信号后关闭HTTP服务
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("Failed to shutdown the HTTP server.", zap.Error(err))
				}
			}()

			if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("IPTV proxy has been stopped.")
			return nil
		},
	}

	serveCmd.Flags().StringVarP(&listen, "listen", "l", "", "HTTP服务的监听地址，覆盖配置文件中的server.listen，e.g `0.0.0.0:7878`。")

	return serveCmd
}
