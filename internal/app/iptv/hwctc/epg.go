package hwctc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"

	"github.com/biner/iptv-proxy/internal/app/iptv"
	"github.com/biner/iptv-proxy/internal/pkg/metrics"

	"go.uber.org/zap"
)

const (
	playbillListPath = "/EPG/jsp/iptvsnmv3/en/play/ajax/_ajax_getPlaybillList.jsp"

	guideModeBulk     = "bulk"
	guideModeTargeted = "targeted"
)

type playbillList struct {
	List []playbill `json:"playbillLites"`
}

type playbill struct {
	Name      string      `json:"name"`
	StartTime epochMillis `json:"startTime"`
	EndTime   epochMillis `json:"endTime"`
}

// epochMillis 毫秒时间戳，部分服务器以字符串返回
type epochMillis int64

func (m *epochMillis) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*m = epochMillis(v)
	return nil
}

// GetAllChannelProgramList 获取所有频道及其节目单，时间范围为过去7天到未来2天
// 单个频道的节目单获取失败时保留该频道，节目单为空；结果按完成顺序排列
func (c *Client) GetAllChannelProgramList(ctx context.Context) ([]iptv.Channel, error) {
	s, err := c.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	channels, err := c.getChannelList(ctx, s)
	if err != nil {
		return nil, err
	}

	return c.fillChannelPrograms(ctx, s, channels, iptv.BulkWindow(c.now())), nil
}

// fillChannelPrograms 并发获取每个频道的节目单
func (c *Client) fillChannelPrograms(ctx context.Context, s *Session, channels []iptv.Channel, dateRange iptv.DateRange) []iptv.Channel {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result = make([]iptv.Channel, 0, len(channels))
	)
	// 单个频道失败只记录日志，不影响其他频道
	for _, channel := range channels {
		wg.Add(1)
		go func() {
			defer wg.Done()

			programs, err := c.getChannelProgramList(ctx, s, channel.ID, dateRange)
			metrics.RecordGuideFetch(guideModeBulk, err == nil)
			if err != nil {
				if !isContextErr(err) {
					c.logger.Sugar().Warnf("Failed to get the program list for channel %s. Error: %v", channel.Name, err)
				}
			} else {
				channel.Programs = append(channel.Programs, programs...)
			}

			mu.Lock()
			result = append(result, channel)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return result
}

// GetChannelDateProgramList 获取指定频道某一天的节目单，date支持多种日期格式
func (c *Client) GetChannelDateProgramList(ctx context.Context, channelID uint64, date string) (*iptv.Channel, error) {
	dateRange, err := iptv.ParseDateRange(date)
	if err != nil {
		return nil, err
	}

	s, err := c.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	channels, err := c.getChannelList(ctx, s)
	if err != nil {
		return nil, err
	}

	channel, err := iptv.FindChannel(channels, channelID)
	if err != nil {
		return nil, err
	}

	if err = c.fillChannelDatePrograms(ctx, s, channel, dateRange); err != nil {
		return nil, err
	}
	return channel, nil
}

// fillChannelDatePrograms 获取节目单并替换频道原有的节目单
func (c *Client) fillChannelDatePrograms(ctx context.Context, s *Session, channel *iptv.Channel, dateRange iptv.DateRange) error {
	programs, err := c.getChannelProgramList(ctx, s, channel.ID, dateRange)
	metrics.RecordGuideFetch(guideModeTargeted, err == nil)
	if err != nil {
		return err
	}

	channel.Programs = programs
	return nil
}

// getChannelProgramList 请求单个频道在时间范围内的节目单
func (c *Client) getChannelProgramList(ctx context.Context, s *Session, channelID uint64, dateRange iptv.DateRange) ([]iptv.Program, error) {
	const op = "get playbill list"

	params := url.Values{}
	params.Add("channelId", strconv.FormatUint(channelID, 10))
	params.Add("begin", strconv.FormatInt(dateRange.Begin, 10))
	params.Add("end", strconv.FormatInt(dateRange.End, 10))

	result, err := s.get(ctx, op, playbillListPath, params)
	if err != nil {
		return nil, err
	}

	var list playbillList
	if err = json.Unmarshal(result, &list); err != nil {
		return nil, iptv.NewError(iptv.ErrDecode, op, err)
	}

	programs := make([]iptv.Program, 0, len(list.List))
	for _, bill := range list.List {
		programs = append(programs, iptv.Program{
			Start: int64(bill.StartTime),
			Stop:  int64(bill.EndTime),
			Title: bill.Name,
			Desc:  bill.Name,
		})
	}
	c.logger.Debug("Got program list.", zap.Uint64("channelID", channelID), zap.Int("count", len(programs)))
	return programs, nil
}
