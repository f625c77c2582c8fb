package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"attendly/config"
	apperrors "attendly/pkg/errors"
)

const sampleTimetable = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//timetable//EN
BEGIN:VEVENT
UID:ev1@test
DTSTART:20240304T080000Z
DTEND:20240304T093000Z
RRULE:FREQ=WEEKLY;BYDAY=MO,WE
SUMMARY:Linear Algebra
LOCATION:Room 101
END:VEVENT
BEGIN:VEVENT
UID:ev2@test
DTSTART;TZID=Asia/Shanghai:20240308T140000
SUMMARY:Physics
END:VEVENT
BEGIN:VEVENT
UID:ev3@test
DTSTART;VALUE=DATE:20240305
SUMMARY:Linear Algebra
END:VEVENT
BEGIN:VEVENT
UID:ev4@test
DTSTART:20240305T080000Z
SUMMARY:math
END:VEVENT
BEGIN:VEVENT
UID:ev5@test
DTSTART:20240305T080000Z
END:VEVENT
END:VCALENDAR
`

func icsBody(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func setupTestTimetableService(t *testing.T) (TimetableService, *AttendanceStore) {
	t.Helper()
	store, _ := setupTestStore()
	cfg := &config.Config{
		Alert:  *testAlertConfig(),
		Import: config.ImportConfig{MaxFileSize: 1 << 20, FetchTimeout: 5 * time.Second},
	}
	return NewTimetableService(store, cfg, zap.NewNop()), store
}

func TestParseICS(t *testing.T) {
	drafts, err := ParseICS(strings.NewReader(icsBody(sampleTimetable)), time.UTC)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("期望 3 门课程，实际 %d: %+v", len(drafts), drafts)
	}

	la := drafts[0]
	if la.Name != "Linear Algebra" || la.Location != "Room 101" {
		t.Errorf("课程信息不正确: %+v", la)
	}
	got := strings.Join(weekdayStrings(la.Days), ",")
	if got != "Monday,Tuesday,Wednesday" {
		t.Errorf("上课日应合并并排序，实际 %s", got)
	}
	if days := weekdayStrings(drafts[1].Days); len(days) != 1 || days[0] != "Friday" {
		t.Errorf("Physics 应为 Friday，实际 %v", days)
	}
}

func TestParseICS_Invalid(t *testing.T) {
	if _, err := ParseICS(strings.NewReader("not a calendar"), time.UTC); err == nil {
		t.Error("非法内容应返回错误")
	}
}

func TestTimetableService_ImportICS(t *testing.T) {
	svc, store := setupTestTimetableService(t)
	createMath(t, store)

	resp, err := svc.ImportICS(context.Background(), strings.NewReader(icsBody(sampleTimetable)))
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(resp.Created) != 2 {
		t.Fatalf("期望新建 2 门课程，实际 %d", len(resp.Created))
	}
	if len(resp.Skipped) != 1 || resp.Skipped[0] != "math" {
		t.Errorf("同名课程（不区分大小写）应跳过，实际 %v", resp.Skipped)
	}
	if resp.Created[0].Description != "Room 101" || resp.Created[0].Color == "" {
		t.Errorf("导入课程字段不正确: %+v", resp.Created[0])
	}
	if len(store.ListSubjects()) != 3 {
		t.Errorf("期望共 3 门课程，实际 %d", len(store.ListSubjects()))
	}

	// 再次导入全部跳过
	again, err := svc.ImportICS(context.Background(), strings.NewReader(icsBody(sampleTimetable)))
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Created) != 0 || len(again.Skipped) != 3 {
		t.Errorf("重复导入应全部跳过: %+v", again)
	}
}

func TestTimetableService_ImportICS_Errors(t *testing.T) {
	svc, _ := setupTestTimetableService(t)

	_, err := svc.ImportICS(context.Background(), strings.NewReader("garbage"))
	if !errors.Is(err, ErrICSParse) || !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("期望 ErrICSParse，实际 %v", err)
	}

	empty := icsBody("BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//x//EN\nEND:VCALENDAR\n")
	_, err = svc.ImportICS(context.Background(), strings.NewReader(empty))
	if !errors.Is(err, ErrICSEmpty) {
		t.Errorf("期望 ErrICSEmpty，实际 %v", err)
	}
}

func TestTimetableService_ImportICSFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cal.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(icsBody(sampleTimetable)))
	}))
	defer srv.Close()

	svc, _ := setupTestTimetableService(t)
	resp, err := svc.ImportICSFromURL(context.Background(), srv.URL+"/cal.ics")
	if err != nil {
		t.Fatalf("导入失败: %v", err)
	}
	if len(resp.Created) != 3 {
		t.Errorf("期望新建 3 门课程，实际 %d", len(resp.Created))
	}

	_, err = svc.ImportICSFromURL(context.Background(), srv.URL+"/missing.ics")
	if !errors.Is(err, ErrICSFetch) {
		t.Errorf("期望 ErrICSFetch，实际 %v", err)
	}
}
