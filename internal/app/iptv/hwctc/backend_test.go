package hwctc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/biner/iptv-proxy/internal/app/iptv"

	"github.com/stretchr/testify/require"
)

const (
	testUser     = "020000000001"
	testPasswd   = "123456"
	testMAC      = "00:11:22:33:44:55"
	testToken    = "ABCDEF0123456789"
	testNonce    = 42
	testSession  = "JSESSIONID"
	testIconPNG  = "\x89PNG fake"
	testPlaybill = `{"playbillLites":[{"name":"体育新闻","startTime":1732982400000,"endTime":1732986000000},{"name":"赛事直播","startTime":"1732986000000","endTime":"1732989600000"}]}`
)

// testChannelList 两个完整的频道和一个缺少TimeShiftURL的频道
const testChannelList = `<html><script>
var iRet;
iRet = Authentication.CTCSetConfig('Channel','ChannelID="10799",ChannelName="CCTV-5＋ 体育",UserChannelID="5",ChannelURL="igmp://239.77.1.5:5146|rtsp://10.0.0.1/PLTV/5.smil?rrsip=",TimeShift="1",TimeShiftLength="7200",TimeShiftURL="rtsp://10.0.0.1/PLTV/5.smil?rrsip=1",ChannelType="1"');
iRet = Authentication.CTCSetConfig('Channel','ChannelID="10800",ChannelName="广东卫视",UserChannelID="6",ChannelURL="igmp://239.77.1.6:5146|rtsp://10.0.0.1/PLTV/6.smil",TimeShift="1",ChannelType="1"');
iRet = Authentication.CTCSetConfig('Channel','ChannelID="ch3",ChannelName="深圳 都市",UserChannelID="1002",ChannelURL="igmp://239.77.1.176:5146|rtsp://10.0.0.1/PLTV/176.smil",TimeShift="1",TimeShiftURL="rtsp://10.0.0.1/PLTV/176.smil",ChannelType="1"');
</script></html>`

// 上面文档中完整频道的解析结果，按文档顺序
var testCatalog = []iptv.Channel{
	{
		ID:            10799,
		UserChannelID: "5",
		Name:          "CCTV5+体育",
		MulticastURL:  "igmp://239.77.1.5:5146",
		TimeShiftURL:  "rtsp://10.0.0.1/PLTV/5.smil?rrsip=1",
	},
	{
		ID:            99 + 104 + 51,
		UserChannelID: "1002",
		Name:          "深圳都市",
		MulticastURL:  "igmp://239.77.1.176:5146",
		TimeShiftURL:  "rtsp://10.0.0.1/PLTV/176.smil",
	},
}

// fakeBackend 模拟EDS和EPG服务器
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	edsHits       atomic.Int32
	authorizeHits atomic.Int32
	tokenHits     atomic.Int32
	channelHits   atomic.Int32
	playbillHits  atomic.Int32

	tokenStatus   atomic.Int32 // 为0时返回200
	edsBody       atomic.Value // 为空时返回正常的epgurl
	lastAuthInfo  atomic.Value
	failPlaybills sync.Map // channelId -> struct{}
	playbillQuery sync.Map // channelId -> url.Values
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/EDS/jsp/AuthenticationURL", b.handleEDS)
	mux.HandleFunc("/EPG/oauth/v2/authorize", b.handleAuthorize)
	mux.HandleFunc("/EPG/oauth/v2/token", b.handleToken)
	mux.HandleFunc(channelListPath, b.requireSession(b.handleChannelList))
	mux.HandleFunc(playbillListPath, b.requireSession(b.handlePlaybill))
	mux.HandleFunc(channelIconPath, b.requireSession(b.handleIcon))
	b.server = httptest.NewServer(mux)
	return b
}

func (b *fakeBackend) Close() {
	b.server.Close()
}

func (b *fakeBackend) config() *Config {
	return &Config{
		User:   testUser,
		Passwd: testPasswd,
		MAC:    testMAC,
		EDSURL: b.server.URL + "/EDS/jsp/AuthenticationURL",
	}
}

// newClient 创建使用固定随机数和可控时钟的客户端
func (b *fakeBackend) newClient(clock *fakeClock) *Client {
	client, err := NewClient(b.config(), WithNonce(func() int { return testNonce }), WithClock(clock.Now))
	require.NoError(b.t, err)
	return client
}

func (b *fakeBackend) handleEDS(w http.ResponseWriter, r *http.Request) {
	b.edsHits.Add(1)
	if r.URL.Query().Get("UserID") != testUser || r.URL.Query().Get("Action") != "Login" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if body, ok := b.edsBody.Load().(string); ok && body != "" {
		_, _ = w.Write([]byte(body))
		return
	}
	writeJSON(w, map[string]string{"epgurl": b.server.URL + "/EPG/jsp/defaultHWCTC/en/go_auth.jsp"})
}

func (b *fakeBackend) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	b.authorizeHits.Add(1)
	q := r.URL.Query()
	if q.Get("client_id") != clientID || q.Get("userid") != testUser || q.Get("response_type") != "EncryToken" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"EncryToken": testToken})
}

func (b *fakeBackend) handleToken(w http.ResponseWriter, r *http.Request) {
	b.tokenHits.Add(1)
	q := r.URL.Query()
	b.lastAuthInfo.Store(q.Get("authinfo"))
	if status := b.tokenStatus.Load(); status != 0 {
		w.WriteHeader(int(status))
		return
	}
	if q.Get("grant_type") != "EncryToken" || q.Get("UserID") != testUser || q.Get("authinfo") == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: testSession, Value: "session-" + time.Now().Format("150405.000"), Path: "/"})
	writeJSON(w, map[string]string{"access_token": "ok"})
}

// requireSession 没有登录后的Cookie时返回401
func (b *fakeBackend) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(testSession); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) handleChannelList(w http.ResponseWriter, _ *http.Request) {
	b.channelHits.Add(1)
	_, _ = w.Write([]byte(testChannelList))
}

func (b *fakeBackend) handlePlaybill(w http.ResponseWriter, r *http.Request) {
	b.playbillHits.Add(1)
	channelID := r.URL.Query().Get("channelId")
	b.playbillQuery.Store(channelID, r.URL.Query())
	if _, ok := b.failPlaybills.Load(channelID); ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(testPlaybill))
}

func (b *fakeBackend) handleIcon(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/10799.png") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write([]byte(testIconPNG))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 1, 12, 0, 0, 0, iptv.Location)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
