package cmds

import (
	"context"
	"path/filepath"

	"github.com/biner/iptv-proxy/internal/app/router"
	"github.com/biner/iptv-proxy/internal/pkg/util"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	playlistFileName = "iptv.m3u"
	xmltvFileName    = "epg.xml"
)

var (
	playlistOutput string
	xmltvOutput    string
)

func NewPlaylistCLI() *cobra.Command {
	playlistCmd := &cobra.Command{
		Use:   "playlist",
		Short: "获取频道列表，并生成m3u直播源文件。",
		RunE: func(cmd *cobra.Command, args []string) error {
			return export(cmd.Context(), playlistOutput, playlistFileName, (*router.Handler).BuildPlaylist)
		},
	}

	playlistCmd.Flags().StringVarP(&playlistOutput, "output", "o", "", "输出文件的路径，缺省为程序所在目录下的iptv.m3u。")

	return playlistCmd
}

func NewXMLTVCLI() *cobra.Command {
	xmltvCmd := &cobra.Command{
		Use:   "xmltv",
		Short: "获取所有频道的节目单，并生成XMLTV文件。",
		RunE: func(cmd *cobra.Command, args []string) error {
			return export(cmd.Context(), xmltvOutput, xmltvFileName, (*router.Handler).BuildXMLTV)
		},
	}

	xmltvCmd.Flags().StringVarP(&xmltvOutput, "output", "o", "", "输出文件的路径，缺省为程序所在目录下的epg.xml。")

	return xmltvCmd
}

// export 生成内容并原子地写入文件
func export(ctx context.Context, output, defaultName string, build func(*router.Handler, context.Context) (string, error)) error {
	// L()：获取全局logger
	logger := zap.L()

	// 创建IPTV客户端
	iptvClient, err := router.NewIPTVClient(conf)
	if err != nil {
		return err
	}
	defer iptvClient.Close()

	content, err := build(router.NewHandler(iptvClient, conf), ctx)
	if err != nil {
		return err
	}

	// 缺省写入程序所在目录
	if output == "" {
		currDir, err := util.GetCurrentAbPathByExecutable()
		if err != nil {
			return err
		}
		output = filepath.Join(currDir, defaultName)
	}

	if err = renameio.WriteFile(output, []byte(content), 0o644); err != nil {
		logger.Error("Failed to write to file.", zap.String("file", output), zap.Error(err))
		return err
	}

	logger.Sugar().Infof("The content has been written to the file %s.", output)
	return nil
}
