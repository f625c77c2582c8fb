package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将 iCalendar (RFC 5545) 课表解析为课程草稿（课程名 + 每周上课日）。
//
//   - SUMMARY 作为课程名，空名称事件忽略
//   - DTSTART 所在星期计入上课日
//   - RRULE 中的 BYDAY（MO,TU,…）一并计入
//   - 同名事件合并，上课日按周一到周日排序
// ─────────────────────────────────────────────────────────────

// weekdayNames 与 Subject.WeeklySchedule 使用的星期名称一致
var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var icsByDay = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// subjectDraft ICS 解析得到的课程草稿
type subjectDraft struct {
	Name     string
	Location string
	Days     []time.Weekday
}

// FetchICSContent 从 URL 获取 ICS 内容，响应体大小受 maxSize 限制
func FetchICSContent(ctx context.Context, rawURL string, timeout time.Duration, maxSize int64) (io.ReadCloser, error) {
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 ICS 请求失败: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, maxSize),
		Closer: resp.Body,
	}, nil
}

// ParseICS 解析 ICS 内容为课程草稿，按首次出现顺序返回
func ParseICS(reader io.Reader, loc *time.Location) ([]subjectDraft, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	merged := make(map[string]*subjectDraft)
	var order []string

	for _, evt := range cal.Events() {
		summary := evt.GetProperty(ics.ComponentPropertySummary)
		if summary == nil || strings.TrimSpace(summary.Value) == "" {
			continue
		}
		name := strings.TrimSpace(summary.Value)

		days := eventWeekdays(evt, loc)
		if len(days) == 0 {
			continue
		}

		draft, ok := merged[name]
		if !ok {
			draft = &subjectDraft{Name: name}
			if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
				draft.Location = strings.TrimSpace(p.Value)
			}
			merged[name] = draft
			order = append(order, name)
		}
		draft.Days = mergeWeekdays(draft.Days, days)
	}

	result := make([]subjectDraft, 0, len(order))
	for _, name := range order {
		result = append(result, *merged[name])
	}
	return result, nil
}

// eventWeekdays DTSTART 所在星期 + RRULE BYDAY
func eventWeekdays(evt *ics.VEvent, loc *time.Location) []time.Weekday {
	var days []time.Weekday

	if start, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc); err == nil {
		days = append(days, start.Weekday())
	}

	if rrule := evt.GetProperty(ics.ComponentPropertyRrule); rrule != nil {
		for _, part := range strings.Split(rrule.Value, ";") {
			kv := strings.SplitN(part, "=", 2)
			if len(kv) != 2 || strings.ToUpper(kv[0]) != "BYDAY" {
				continue
			}
			for _, token := range strings.Split(kv[1], ",") {
				token = strings.ToUpper(strings.TrimSpace(token))
				// 允许带序号前缀，如 1MO、-1FR
				if len(token) > 2 {
					token = token[len(token)-2:]
				}
				if wd, ok := icsByDay[token]; ok {
					days = append(days, wd)
				}
			}
		}
	}
	return days
}

// mergeWeekdays 合并去重，按周一 … 周日排序
func mergeWeekdays(a, b []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, 7)
	var out []time.Weekday
	for _, wd := range append(append([]time.Weekday{}, a...), b...) {
		if !seen[wd] {
			seen[wd] = true
			out = append(out, wd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return isoWeekday(out[i]) < isoWeekday(out[j]) })
	return out
}

// isoWeekday 将 Go 的 time.Weekday (0=Sunday) 转为 ISO 8601 (1=Monday … 7=Sunday)
func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func weekdayStrings(days []time.Weekday) []string {
	out := make([]string, 0, len(days))
	for _, wd := range days {
		out = append(out, weekdayNames[wd])
	}
	return out
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// TZID 参数优先于默认时区
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			if tz, err := time.LoadLocation(v[0]); err == nil {
				loc = tz
			}
		}
	}

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, val, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", val)
}
