package iptv

import (
	"fmt"
	"time"
)

const (
	bulkBackDays    = 7
	bulkForwardDays = 2
)

// Location IPTV服务器使用的时区（UTC+8）
var Location = time.FixedZone("CST", 8*60*60)

// dateLayouts 按优先级尝试的日期格式
var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

// DateRange 毫秒时间戳表示的时间范围，左闭右开
type DateRange struct {
	Begin int64
	End   int64
}

// DayRange 指定日期当天0点到次日0点（UTC+8）
func DayRange(day time.Time) DateRange {
	day = day.In(Location)
	begin := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, Location)
	return DateRange{
		Begin: begin.UnixMilli(),
		End:   begin.AddDate(0, 0, 1).UnixMilli(),
	}
}

// ParseDate 依次尝试支持的日期格式解析日期
func ParseDate(dateStr string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if date, err := time.ParseInLocation(layout, dateStr, Location); err == nil {
			return date, nil
		}
	}
	return time.Time{}, NewError(ErrParse, "parse date",
		fmt.Errorf("%q does not match any of %v", dateStr, dateLayouts))
}

// ParseDateRange 解析日期并返回当天的时间范围
func ParseDateRange(dateStr string) (DateRange, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return DateRange{}, err
	}
	return DayRange(date), nil
}

// BulkWindow 批量查询节目单的时间范围：过去7天到未来2天
func BulkWindow(now time.Time) DateRange {
	const day = 24 * time.Hour
	return DateRange{
		Begin: now.Add(-bulkBackDays * day).UnixMilli(),
		End:   now.Add(bulkForwardDays * day).UnixMilli(),
	}
}

// FormatClock 毫秒时间戳转换为HH:MM（UTC+8）
func FormatClock(ms int64) string {
	return time.UnixMilli(ms).In(Location).Format("15:04")
}

// FormatXMLTVTime 毫秒时间戳转换为XMLTV的时间格式
func FormatXMLTVTime(ms int64) string {
	return time.UnixMilli(ms).In(Location).Format("20060102150405") + " +0800"
}
