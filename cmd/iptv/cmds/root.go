package cmds

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/biner/iptv-proxy/internal/app/config"
	"github.com/biner/iptv-proxy/internal/pkg/logging"
	"github.com/biner/iptv-proxy/internal/pkg/util"

	"github.com/spf13/cobra"
)

const defaultConfigFileName = "config.yml"

var (
	cfgFile string

	conf *config.Config
)

func init() {
	cobra.OnInitialize(initConfig)
}

func NewRootCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "iptv",
		Short:         "IPTV代理，提供直播源、节目单等查询接口",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(NewServeCLI())
	rootCmd.AddCommand(NewPlaylistCLI())
	rootCmd.AddCommand(NewXMLTVCLI())
	rootCmd.AddCommand(NewAuthInfoCLI())
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML配置文件的路径")

	return rootCmd
}

// initConfig 在执行子命令前加载配置文件并初始化日志
func initConfig() {
	fPath, err := configFilePath()
	cobra.CheckErr(err)

	conf, err = config.Load(fPath)
	cobra.CheckErr(err)
	cobra.CheckErr(logging.InitLogger(conf.Log))
}

// configFilePath 优先使用--config，否则使用程序所在目录下的config.yml，不存在时写入缺省配置
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}

	exeDir, err := util.GetCurrentAbPathByExecutable()
	if err != nil {
		return "", err
	}
	fPath := filepath.Join(exeDir, defaultConfigFileName)
	if created, err := config.EnsureFile(fPath); err != nil {
		return "", err
	} else if created {
		fmt.Fprintf(os.Stderr, "Default config written to %s.\n", fPath)
	}
	return fPath, nil
}
