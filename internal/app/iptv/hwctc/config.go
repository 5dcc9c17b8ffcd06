package hwctc

import (
	"errors"
)

const (
	defaultEDSURL = "http://eds.iptv.gd.cn:8082/EDS/jsp/AuthenticationURL"
	defaultIMEI   = "default_imei"
	defaultIP     = "0.0.0.0"
)

type Config struct {
	User      string `json:"user" yaml:"user"`                               // 必填，IPTV账号
	Passwd    string `json:"passwd" yaml:"passwd"`                           // 必填，IPTV密码，用于生成Authenticator的密钥
	MAC       string `json:"mac" yaml:"mac"`                                 // 必填，机顶盒MAC地址，机顶盒背面也可查
	IMEI      string `json:"imei,omitempty" yaml:"imei,omitempty"`           // 可不填
	IP        string `json:"ip,omitempty" yaml:"ip,omitempty"`               // 生成Authenticator所需的IP地址，可不填
	Interface string `json:"interface,omitempty" yaml:"interface,omitempty"` // 网络接口的名称，若配置则所有请求都从该接口发出
	EDSURL    string `json:"edsURL,omitempty" yaml:"eds_url,omitempty"`      // 获取EPG服务器地址的入口

	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // 自定义HTTP请求头
}

func (c *Config) Validate() error {
	// 校验config配置
	if c.User == "" ||
		c.Passwd == "" ||
		c.MAC == "" {
		return errors.New("invalid HWCTC IPTV client config")
	}

	// 填充缺省值
	if c.IMEI == "" {
		c.IMEI = defaultIMEI
	}
	if c.IP == "" {
		c.IP = defaultIP
	}
	if c.EDSURL == "" {
		c.EDSURL = defaultEDSURL
	}
	return nil
}
