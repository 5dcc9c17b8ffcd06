package cmds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/biner/iptv-proxy/internal/app/iptv"

	"github.com/spf13/cobra"
)

var authenticator string

func NewAuthInfoCLI() *cobra.Command {
	authInfoCmd := &cobra.Command{
		Use:   "authinfo",
		Short: "使用配置的密码解密机顶盒的Authenticator，用于核对账号和设备信息。",
		RunE: func(cmd *cobra.Command, args []string) error {
			if conf.IPTV == nil || conf.IPTV.Passwd == "" {
				return errors.New("iptv.passwd is required")
			}

			// 使用密码派生的密钥解密
			crypto := iptv.NewTripleDESCrypto(iptv.DeriveKey(conf.IPTV.Passwd))
			decodedText, err := crypto.ECBDecrypt(strings.TrimSpace(authenticator))
			if err != nil {
				return err
			}

			// 格式：random$EncryToken$UserID$IMEI$IP$MAC$Reserved$CTC
			infos := strings.Split(decodedText, "$")
			if len(infos) < 8 {
				return fmt.Errorf("unexpected plaintext: %s", decodedText)
			}

			fmt.Printf("Plaintext: %s\nDetails:\n  Random: %s\n  EncryToken: %s\n  UserID: %s\n  IMEI: %s\n  IP: %s\n  MAC: %s\n  Reserved: %s\n  CTC: %s\n",
				decodedText, infos[0], infos[1], infos[2], infos[3], infos[4], infos[5], infos[6], infos[7])
			return nil
		},
	}

	authInfoCmd.Flags().StringVarP(&authenticator, "authenticator", "a", "", "请输入Authenticator值，可通过抓包获取。")

	// 必填参数
	_ = authInfoCmd.MarkFlagRequired("authenticator")

	return authInfoCmd
}
