package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Subject 课程，序列化为 JSON 数组后存于键 "subjects"
type Subject struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Color          string    `json:"color"`
	WeeklySchedule []string  `json:"weeklySchedule"` // Monday … Sunday
	CreatedAt      time.Time `json:"createdAt"`
}

// Clone 深拷贝，避免调用方修改 WeeklySchedule 影响内部状态
func (s Subject) Clone() Subject {
	s.WeeklySchedule = append([]string(nil), s.WeeklySchedule...)
	return s
}

// UnmarshalJSON 兼容旧数据中不同格式的 createdAt：
// RFC 3339、YYYY-MM-DD、毫秒时间戳；无法解析时保持零值，由加载流程修复。
func (s *Subject) UnmarshalJSON(data []byte) error {
	type alias Subject
	var raw struct {
		alias
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Subject(raw.alias)
	s.CreatedAt, _ = ParseTimestamp(raw.CreatedAt)
	return nil
}

// ParseTimestamp 解析 JSON 中的时间值（字符串或毫秒数字）
func ParseTimestamp(raw json.RawMessage) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}

	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return time.Time{}, false
		}
		str = strings.TrimSpace(str)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z", DateLayout} {
			if t, err := time.Parse(layout, str); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(str, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).UTC(), true
		}
		return time.Time{}, false
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// TimestampFromLegacyID 旧版 ID 以 13 位毫秒时间戳开头，可据此还原创建时间
func TimestampFromLegacyID(id string) (time.Time, bool) {
	if len(id) < 13 {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(id[:13], 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
