package hwctc

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"strconv"
	"testing"

	"github.com/biner/iptv-proxy/internal/app/iptv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var testPrograms = []iptv.Program{
	{Start: 1732982400000, Stop: 1732986000000, Title: "体育新闻", Desc: "体育新闻"},
	{Start: 1732986000000, Stop: 1732989600000, Title: "赛事直播", Desc: "赛事直播"},
}

func TestGetAllChannelProgramList(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreCurrent(),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)

	backend := newFakeBackend(t)
	defer backend.Close()

	clock := newFakeClock()
	client := backend.newClient(clock)
	defer client.Close()

	// 第二个频道的节目单获取失败
	failedID := strconv.FormatUint(testCatalog[1].ID, 10)
	backend.failPlaybills.Store(failedID, struct{}{})

	channels, err := client.GetAllChannelProgramList(context.Background())
	require.NoError(t, err)

	// 获取失败的频道不会丢失
	require.Len(t, channels, len(testCatalog))
	assert.EqualValues(t, len(testCatalog), backend.playbillHits.Load())

	// 结果按完成顺序排列，比较前先排序
	slices.SortFunc(channels, func(a, b iptv.Channel) int {
		return int(int64(b.ID) - int64(a.ID))
	})
	assert.Equal(t, testCatalog[0].ID, channels[0].ID)
	assert.Equal(t, testPrograms, channels[0].Programs)
	assert.Equal(t, testCatalog[1].ID, channels[1].ID)
	assert.Empty(t, channels[1].Programs)

	// 时间范围为过去7天到未来2天
	window := iptv.BulkWindow(clock.Now())
	v, ok := backend.playbillQuery.Load("10799")
	require.True(t, ok)
	query := v.(url.Values)
	assert.Equal(t, strconv.FormatInt(window.Begin, 10), query.Get("begin"))
	assert.Equal(t, strconv.FormatInt(window.End, 10), query.Get("end"))
}

func TestGetAllChannelProgramList_AllFailed(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()

	client := backend.newClient(newFakeClock())
	defer client.Close()

	for _, channel := range testCatalog {
		backend.failPlaybills.Store(strconv.FormatUint(channel.ID, 10), struct{}{})
	}

	channels, err := client.GetAllChannelProgramList(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, len(testCatalog))
	for _, channel := range channels {
		assert.Empty(t, channel.Programs)
	}
}

func TestGetChannelDateProgramList(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()

	client := backend.newClient(newFakeClock())
	defer client.Close()

	for _, date := range []string{"20241201", "2024-12-01"} {
		channel, err := client.GetChannelDateProgramList(context.Background(), 10799, date)
		require.NoError(t, err)
		assert.Equal(t, "CCTV5+体育", channel.Name)
		assert.Equal(t, testPrograms, channel.Programs)

		v, ok := backend.playbillQuery.Load("10799")
		require.True(t, ok)
		query := v.(url.Values)
		assert.Equal(t, "1732982400000", query.Get("begin"))
		assert.Equal(t, "1733068800000", query.Get("end"))
	}
	assert.EqualValues(t, 2, backend.playbillHits.Load())
}

func TestGetChannelDateProgramList_Errors(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()

	client := backend.newClient(newFakeClock())
	defer client.Close()

	ctx := context.Background()

	// 日期格式错误时不发送请求
	_, err := client.GetChannelDateProgramList(ctx, 10799, "2024.12.01")
	assert.ErrorIs(t, err, iptv.ErrParse)
	assert.EqualValues(t, 0, backend.edsHits.Load())

	// 频道不存在
	_, err = client.GetChannelDateProgramList(ctx, 1, "20241201")
	assert.ErrorIs(t, err, iptv.ErrNotFound)

	// 节目单获取失败时返回错误
	backend.failPlaybills.Store("10799", struct{}{})
	_, err = client.GetChannelDateProgramList(ctx, 10799, "20241201")
	assert.ErrorIs(t, err, iptv.ErrUpstreamStatus)
}

func TestFillChannelDatePrograms_Replaces(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()

	client := backend.newClient(newFakeClock())
	defer client.Close()

	ctx := context.Background()
	s, err := client.sessions.Session(ctx)
	require.NoError(t, err)

	channel := testCatalog[0]
	channel.Programs = []iptv.Program{{Start: 1, Stop: 2, Title: "old"}}

	dateRange, err := iptv.ParseDateRange("20241201")
	require.NoError(t, err)
	require.NoError(t, client.fillChannelDatePrograms(ctx, s, &channel, dateRange))
	assert.Equal(t, testPrograms, channel.Programs)

	// 失败时不修改原有节目单
	backend.failPlaybills.Store("10799", struct{}{})
	assert.Error(t, client.fillChannelDatePrograms(ctx, s, &channel, dateRange))
	assert.Equal(t, testPrograms, channel.Programs)
}

func TestEpochMillis(t *testing.T) {
	var list playbillList
	require.NoError(t, json.Unmarshal([]byte(testPlaybill), &list))
	require.Len(t, list.List, 2)
	assert.EqualValues(t, 1732986000000, list.List[1].StartTime)

	assert.Error(t, json.Unmarshal([]byte(`{"playbillLites":[{"startTime":"abc"}]}`), &list))
}

func TestGetChannelIcon(t *testing.T) {
	backend := newFakeBackend(t)
	defer backend.Close()

	client := backend.newClient(newFakeClock())
	defer client.Close()

	icon, err := client.GetChannelIcon(context.Background(), "10799")
	require.NoError(t, err)
	assert.Equal(t, []byte(testIconPNG), icon)

	_, err = client.GetChannelIcon(context.Background(), "404")
	assert.ErrorIs(t, err, iptv.ErrUpstreamStatus)
}
