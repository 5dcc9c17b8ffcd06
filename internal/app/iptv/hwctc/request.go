package hwctc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/biner/iptv-proxy/internal/app/iptv"

	"golang.org/x/net/publicsuffix"
)

// newHTTPClient 创建带Cookie的HTTP客户端，配置了网络接口时从该接口的IPv4地址发出请求
func newHTTPClient(interfaceName string, timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	if interfaceName != "" {
		ipv4Addr, err := getInterfaceIPv4Addr(interfaceName)
		if err != nil {
			return nil, err
		}
		dialer.LocalAddr = &net.TCPAddr{IP: ipv4Addr}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Jar:       jar,
		Transport: transport,
	}, nil
}

// getInterfaceIPv4Addr 获取指定网络接口的IPv4地址
func getInterfaceIPv4Addr(interfaceName string) (net.IP, error) {
	iface, err := net.InterfaceByName(interfaceName)
	if err != nil {
		return nil, err
	}

	// 获取网络接口的所有地址
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}

	for _, addr := range addrs {
		// 检查地址类型是否是IPv4
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			return ipnet.IP.To4(), nil
		}
	}
	return nil, fmt.Errorf("no IPv4 address found on network interface %s", interfaceName)
}

// doGet 发送GET请求并返回响应内容，非2xx的响应视为错误
func doGet(ctx context.Context, httpClient *http.Client, headers map[string]string, op, endpoint string, params url.Values) ([]byte, error) {
	// 创建请求
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, iptv.NewError(iptv.ErrParse, op, err)
	}

	// 增加请求参数
	if len(params) > 0 {
		query := req.URL.Query()
		for k, vs := range params {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
		req.URL.RawQuery = query.Encode()
	}

	// 设置自定义HTTP请求头
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// 执行请求
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, iptv.NewError(iptv.ErrTransport, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, iptv.NewStatusError(op, resp.StatusCode)
	}

	// 读取响应内容
	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, iptv.NewError(iptv.ErrTransport, op, err)
	}
	return result, nil
}

// getJSON 发送GET请求并解析JSON响应
func getJSON(ctx context.Context, httpClient *http.Client, headers map[string]string, op, endpoint string, params url.Values, v any) error {
	result, err := doGet(ctx, httpClient, headers, op, endpoint, params)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(result, v); err != nil {
		return iptv.NewError(iptv.ErrDecode, op, err)
	}
	return nil
}

// isContextErr 请求是否因为调用方取消而失败
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
