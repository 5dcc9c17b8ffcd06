package config

import (
	"errors"
	"os"
	"regexp"
	"time"

	"github.com/biner/iptv-proxy/internal/app/iptv"
	"github.com/biner/iptv-proxy/internal/app/iptv/hwctc"
	"github.com/biner/iptv-proxy/internal/pkg/logging"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	defaultListen  = "0.0.0.0:7878"
	defaultTimeout = 5
)

type OptionChannelGroupRules struct {
	Name  string   `json:"name" yaml:"name"`   // 分组名称
	Rules []string `json:"rules" yaml:"rules"` // 分组规则
}

type ServerConfig struct {
	Listen       string        `json:"listen" yaml:"listen"`                                   // HTTP服务的监听地址
	Timeout      int           `json:"timeout,omitempty" yaml:"timeout,omitempty"`             // 请求IPTV服务器的超时时间，单位秒
	WarmInterval time.Duration `json:"warmInterval,omitempty" yaml:"warm_interval,omitempty"` // 后台预先生成直播源和节目单的间隔，为0则不启用
}

type M3U8Config struct {
	XTvgURL       string `json:"xTvgURL,omitempty" yaml:"x_tvg_url,omitempty"`            // m3u头部的x-tvg-url
	FormatTvg     bool   `json:"formatTvg,omitempty" yaml:"format_tvg,omitempty"`         // 是否格式化tvg-name，例如：CCTV1高清 -> CCTV1
	ExtraPlaylist string `json:"extraPlaylist,omitempty" yaml:"extra_playlist,omitempty"` // 附加的m3u地址
	ExtraXMLTV    string `json:"extraXMLTV,omitempty" yaml:"extra_xmltv,omitempty"`       // 附加的xmltv地址
	UdpProxyURI   string `json:"udpProxyURI,omitempty" yaml:"udp_proxy_uri,omitempty"`    // udpxy、msd_lite、rtp2httpd等提供的UDP代理地址
	RtspProxyURI  string `json:"rtspProxyURI,omitempty" yaml:"rtsp_proxy_uri,omitempty"`  // rtp2httpd等提供的rtsp代理地址
	LogoURL       string `json:"logoURL,omitempty" yaml:"logo_url,omitempty"`             // 台标地址模板，支持{name}和{id}
}

type Config struct {
	Server ServerConfig  `json:"server" yaml:"server"`
	IPTV   *hwctc.Config `json:"iptv" yaml:"iptv"`
	M3U8   M3U8Config    `json:"m3u8" yaml:"m3u8"`

	NameMapping map[string]string   `json:"nameMapping,omitempty" yaml:"name_mapping,omitempty"` // tvg-name映射表
	NameClean   []string            `json:"nameClean,omitempty" yaml:"name_clean,omitempty"`     // tvg-name需要去掉的字样
	NameFormat  *iptv.NameFormatter `json:"-" yaml:"-"`                                          // Validate()时进行填充

	OptionChGroupRulesList []OptionChannelGroupRules `json:"groupRules,omitempty" yaml:"group_rules,omitempty"` // 自定义频道分组规则
	ChGroupRulesList       []iptv.ChannelGroupRules  `json:"-" yaml:"-"`                                        // Validate()时进行填充

	Log *logging.LogConfig `json:"log,omitempty" yaml:"log,omitempty"`
}

func (c *Config) Validate() error {
	// 校验config配置
	if c.IPTV == nil {
		return errors.New("invalid IPTV config: missing iptv section")
	}
	if err := c.IPTV.Validate(); err != nil {
		return err
	}

	// 填充缺省值
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListen
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = defaultTimeout
	}
	if c.Server.WarmInterval < 0 {
		c.Server.WarmInterval = 0
	}
	if c.Log == nil {
		c.Log = DefaultLogConfig()
	}

	// 填充tvg-name的格式化规则
	if c.M3U8.FormatTvg {
		c.NameFormat = iptv.NewNameFormatter(c.NameClean, c.NameMapping)
	}

	// L()：获取全局logger
	logger := zap.L()

	// 填充频道分组的正则表达式规则
	c.ChGroupRulesList = make([]iptv.ChannelGroupRules, 0, len(c.OptionChGroupRulesList))
	for _, opChGroupRules := range c.OptionChGroupRulesList {
		if opChGroupRules.Name == "" {
			logger.Warn("The channel group name is empty. Skip it.")
			continue
		} else if len(opChGroupRules.Rules) == 0 {
			logger.Warn("The channel group rule is empty. Skip it.", zap.String("name", opChGroupRules.Name))
			continue
		}

		rules := make([]*regexp.Regexp, 0, len(opChGroupRules.Rules))
		for _, ruleStr := range opChGroupRules.Rules {
			rule, err := regexp.Compile(ruleStr)
			if err != nil {
				logger.Warn("The channel group rule is incorrect. Skip it.", zap.String("name", opChGroupRules.Name), zap.String("rule", ruleStr), zap.Error(err))
				continue
			}

			rules = append(rules, rule)
		}
		if len(rules) > 0 {
			c.ChGroupRulesList = append(c.ChGroupRulesList, iptv.ChannelGroupRules{
				Name:  opChGroupRules.Name,
				Rules: rules,
			})
		}
	}
	// 没有可用的自定义规则时按清晰度分组
	if len(c.ChGroupRulesList) == 0 {
		c.ChGroupRulesList = iptv.DefaultChannelGroupRules()
	}

	return nil
}

// RequestTimeout 请求IPTV服务器的超时时间
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.Timeout) * time.Second
}

// M3UOptions 生成M3U直播源的选项，需在Validate()之后调用
func (c *Config) M3UOptions() iptv.M3UOptions {
	return iptv.M3UOptions{
		XTvgURL:      c.M3U8.XTvgURL,
		UdpProxyURI:  c.M3U8.UdpProxyURI,
		RtspProxyURI: c.M3U8.RtspProxyURI,
		LogoURL:      c.M3U8.LogoURL,
		NameFormat:   c.NameFormat,
		GroupRules:   c.ChGroupRulesList,
	}
}

// DefaultLogConfig 缺省的日志配置
func DefaultLogConfig() *logging.LogConfig {
	return &logging.LogConfig{
		Level:      zapcore.InfoLevel,
		FileName:   "logs/iptv.log",
		MaxSize:    10,
		MaxAge:     7,
		MaxBackups: 3,
		IsStdout:   true,
	}
}

// Load 读取配置文件，没有日志配置时使用缺省值，其余校验由Validate()完成
func Load(fPath string) (*Config, error) {
	data, err := os.ReadFile(fPath)
	if err != nil {
		return nil, err
	}
	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// 日志需要在校验之前初始化
	if config.Log == nil {
		config.Log = DefaultLogConfig()
	}
	return &config, nil
}

// EnsureFile 配置文件不存在时写入缺省配置，返回是否新建了文件
func EnsureFile(fPath string) (bool, error) {
	_, err := os.Stat(fPath)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	return true, CreateDefaultCfg(fPath)
}

func CreateDefaultCfg(fPath string) error {
	// 写入默认配置
	f, err := os.Create(fPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// 创建编码器
	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)

	// 缺省配置
	defaultCfg := Config{
		Server: ServerConfig{
			Listen:  defaultListen,
			Timeout: defaultTimeout,
		},
		IPTV: &hwctc.Config{},
		M3U8: M3U8Config{
			LogoURL: "https://live.fanmingming.com/tv/{name}.png",
		},
		NameClean: []string{"超高清", "高清", "超清", "标清", "4K"},
		OptionChGroupRulesList: []OptionChannelGroupRules{
			{
				Name:  "超清频道",
				Rules: []string{"超清"},
			},
			{
				Name:  "高清频道",
				Rules: []string{"高清"},
			},
		},
		Log: DefaultLogConfig(),
	}

	return encoder.Encode(&defaultCfg)
}
