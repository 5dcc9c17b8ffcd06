package hwctc

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/biner/iptv-proxy/internal/app/iptv"

	"go.uber.org/zap"
)

const clientID = "smcphone"

type authJSON struct {
	EPGURL string `json:"epgurl"`
}

type tokenJSON struct {
	EncryToken string `json:"EncryToken"`
}

// login 完成一次完整的认证流程：获取EPG服务器地址、获取EncryToken、提交Authenticator
func (m *SessionManager) login(ctx context.Context) (*Session, error) {
	httpClient, err := newHTTPClient(m.config.Interface, m.opts.timeout)
	if err != nil {
		return nil, iptv.NewError(iptv.ErrTransport, "create http client", err)
	}

	s := &Session{
		httpClient: httpClient,
		headers:    m.config.Headers,
	}

	// 第一步：获取EPG服务器地址
	s.baseURL, err = m.getBaseURL(ctx, s)
	if err != nil {
		httpClient.CloseIdleConnections()
		return nil, err
	}
	m.logger.Debug("Got base url.", zap.String("baseURL", s.baseURL))

	// 第二步：获取EncryToken
	token, err := m.authorize(ctx, s)
	if err != nil {
		httpClient.CloseIdleConnections()
		return nil, err
	}
	m.logger.Debug("Got encry token.", zap.String("token", token))

	// 第三步：使用Authenticator换取登录态，服务器通过Cookie保存
	if err = m.exchangeToken(ctx, s, token); err != nil {
		httpClient.CloseIdleConnections()
		return nil, err
	}

	s.createdAt = m.opts.now()
	return s, nil
}

// getBaseURL 请求EDS入口，返回EPG服务器的scheme://host:port
func (m *SessionManager) getBaseURL(ctx context.Context, s *Session) (string, error) {
	const op = "get base url"

	params := url.Values{}
	params.Add("Action", "Login")
	params.Add("return_type", "1")
	params.Add("UserID", m.config.User)

	var result authJSON
	if err := getJSON(ctx, s.httpClient, s.headers, op, m.config.EDSURL, params, &result); err != nil {
		return "", err
	}

	epgURL, err := url.Parse(result.EPGURL)
	if err != nil {
		return "", iptv.NewError(iptv.ErrDecode, op, err)
	}
	if epgURL.Scheme == "" || epgURL.Hostname() == "" {
		return "", iptv.NewError(iptv.ErrDecode, op, errors.New("no host in epgurl: "+result.EPGURL))
	}

	port := epgURL.Port()
	if port == "" {
		switch epgURL.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", iptv.NewError(iptv.ErrDecode, op, errors.New("no port in epgurl: "+result.EPGURL))
		}
	}
	return epgURL.Scheme + "://" + net.JoinHostPort(epgURL.Hostname(), port), nil
}

// authorize 获取用于生成Authenticator的EncryToken
func (m *SessionManager) authorize(ctx context.Context, s *Session) (string, error) {
	const op = "authorize"

	params := url.Values{}
	params.Add("response_type", "EncryToken")
	params.Add("client_id", clientID)
	params.Add("userid", m.config.User)

	var result tokenJSON
	if err := getJSON(ctx, s.httpClient, s.headers, op, s.baseURL+"/EPG/oauth/v2/authorize", params, &result); err != nil {
		return "", err
	}
	if result.EncryToken == "" {
		return "", iptv.NewError(iptv.ErrDecode, op, errors.New("empty EncryToken"))
	}
	return result.EncryToken, nil
}

// exchangeToken 提交Authenticator，响应内容无需解析
func (m *SessionManager) exchangeToken(ctx context.Context, s *Session, token string) error {
	authenticator, err := iptv.BuildAuthenticator(m.config.Passwd, m.opts.nonce(), iptv.AuthInfo{
		Token:  token,
		UserID: m.config.User,
		IMEI:   m.config.IMEI,
		IP:     m.config.IP,
		MAC:    m.config.MAC,
	})
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Add("client_id", clientID)
	params.Add("DeviceType", "deviceType")
	params.Add("UserID", m.config.User)
	params.Add("DeviceVersion", "deviceVersion")
	params.Add("userdomain", "2")
	params.Add("datadomain", "3")
	params.Add("accountType", "1")
	params.Add("authinfo", authenticator)
	params.Add("grant_type", "EncryToken")

	_, err = s.get(ctx, "token", "/EPG/oauth/v2/token", params)
	return err
}
