package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"attendly/config"
	"attendly/internal/dto"
	"attendly/internal/model"
	"attendly/internal/service"
	apperrors "attendly/pkg/errors"
	"attendly/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	subject      *model.Subject
	subjectErr   error
	record       *model.AttendanceRecord
	saveErr      error
	deleteErr    error
	attendance   model.SubjectAttendance
	records      []model.AttendanceRecord
	stats        []model.SubjectStats
	overall      model.OverallStats
	loading      bool
	lastSave     *dto.SaveAttendanceRequest
	lastDeleteID string
}

func (m *mockAttendanceService) CreateSubject(_ context.Context, req *dto.CreateSubjectRequest) (*model.Subject, error) {
	if m.subjectErr != nil {
		return nil, m.subjectErr
	}
	return &model.Subject{ID: "s1", Name: req.Name, WeeklySchedule: req.WeeklySchedule}, nil
}
func (m *mockAttendanceService) UpdateSubject(_ context.Context, _ string, _ *dto.UpdateSubjectRequest) (*model.Subject, error) {
	return m.subject, m.subjectErr
}
func (m *mockAttendanceService) DeleteSubject(_ context.Context, id string) error {
	m.lastDeleteID = id
	return m.deleteErr
}
func (m *mockAttendanceService) SaveAttendance(_ context.Context, req *dto.SaveAttendanceRequest) (*model.AttendanceRecord, error) {
	m.lastSave = req
	return m.record, m.saveErr
}
func (m *mockAttendanceService) DeleteAttendance(_ context.Context, id string) error {
	m.lastDeleteID = id
	return m.deleteErr
}
func (m *mockAttendanceService) ListSubjects() []model.Subject { return nil }
func (m *mockAttendanceService) GetSubject(_ string) (*model.Subject, error) {
	return m.subject, m.subjectErr
}
func (m *mockAttendanceService) ListAttendance(_ string) []model.AttendanceRecord {
	return m.records
}
func (m *mockAttendanceService) GetSubjectAttendance(_ string) model.SubjectAttendance {
	return m.attendance
}
func (m *mockAttendanceService) GetAttendanceForDate(_, _ string) (*model.AttendanceRecord, bool) {
	return m.record, m.record != nil
}
func (m *mockAttendanceService) SubjectStats() []model.SubjectStats { return m.stats }
func (m *mockAttendanceService) OverallStats() model.OverallStats { return m.overall }
func (m *mockAttendanceService) IsLoading() bool { return m.loading }

// ── Mock NotificationService ──

type mockNotificationService struct {
	deadlines []model.Assignment
	low       []model.SubjectStats
	lastDays  int
}

func (m *mockNotificationService) CheckForAlerts() {}
func (m *mockNotificationService) GetAssignments() []model.Assignment { return m.deadlines }
func (m *mockNotificationService) GetLowAttendanceSubjects() []string { return nil }
func (m *mockNotificationService) GetLowAttendanceStats() []model.SubjectStats { return m.low }
func (m *mockNotificationService) GetUpcomingDeadlines(days int) []model.Assignment {
	m.lastDays = days
	return m.deadlines
}

// ── Mock ThemeService ──

type mockThemeService struct {
	dark   bool
	setErr error
}

func (m *mockThemeService) Load(_ context.Context) error { return nil }
func (m *mockThemeService) Get() model.Theme { return model.ThemeFor(m.dark) }
func (m *mockThemeService) IsLoading() bool { return false }
func (m *mockThemeService) Toggle(ctx context.Context) (model.Theme, error) {
	return m.Set(ctx, !m.dark)
}
func (m *mockThemeService) Set(_ context.Context, dark bool) (model.Theme, error) {
	if m.setErr != nil {
		return model.ThemeFor(m.dark), m.setErr
	}
	m.dark = dark
	return model.ThemeFor(dark), nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
	lastDays int
}

func (m *mockExportService) ExportAttendance(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportDeadlines(_ context.Context, days int) (*bytes.Buffer, string, error) {
	m.lastDays = days
	return m.buf, m.filename, m.err
}

// ── Mock TimetableService ──

type mockTimetableService struct {
	result  *dto.TimetableImportResponse
	err     error
	content string
	url     string
}

func (m *mockTimetableService) ImportICS(_ context.Context, r io.Reader) (*dto.TimetableImportResponse, error) {
	b, _ := io.ReadAll(r)
	m.content = string(b)
	return m.result, m.err
}
func (m *mockTimetableService) ImportICSFromURL(_ context.Context, url string) (*dto.TimetableImportResponse, error) {
	m.url = url
	return m.result, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, route, target string, body io.Reader, handle gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r := gin.New()
	r.Handle(method, route, handle)
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// SubjectHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSubjectHandler_CreateSubject_Success(t *testing.T) {
	h := NewSubjectHandler(&mockAttendanceService{}, 75)

	w := serve("POST", "/subjects", "/subjects", jsonBody(dto.CreateSubjectRequest{
		Name:           "Math",
		WeeklySchedule: []string{"Monday"},
	}), h.CreateSubject)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestSubjectHandler_CreateSubject_BadJSON(t *testing.T) {
	h := NewSubjectHandler(&mockAttendanceService{}, 75)

	w := serve("POST", "/subjects", "/subjects", strings.NewReader("invalid json"), h.CreateSubject)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeBadParams {
		t.Errorf("expected error code %d, got %d", response.CodeBadParams, resp.Code)
	}
}

func TestSubjectHandler_CreateSubject_Validation(t *testing.T) {
	h := NewSubjectHandler(&mockAttendanceService{subjectErr: service.ErrScheduleRequired}, 75)

	w := serve("POST", "/subjects", "/subjects", jsonBody(dto.CreateSubjectRequest{Name: "Math"}), h.CreateSubject)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeValidation {
		t.Errorf("expected error code %d, got %d", response.CodeValidation, resp.Code)
	}
}

func TestSubjectHandler_CreateSubject_PersistenceFailure(t *testing.T) {
	perr := fmt.Errorf("创建课程: %w", apperrors.NewPersistenceError("set", "subjects", io.ErrUnexpectedEOF))
	h := NewSubjectHandler(&mockAttendanceService{subjectErr: perr}, 75)

	w := serve("POST", "/subjects", "/subjects", jsonBody(dto.CreateSubjectRequest{
		Name: "Math", WeeklySchedule: []string{"Monday"},
	}), h.CreateSubject)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodePersistence {
		t.Errorf("expected error code %d, got %d", response.CodePersistence, resp.Code)
	}
}

func TestSubjectHandler_GetSubject(t *testing.T) {
	mock := &mockAttendanceService{
		subject:    &model.Subject{ID: "s1", Name: "Math"},
		attendance: model.SubjectAttendance{TotalClasses: 4, PresentClasses: 2, Percentage: 50},
	}
	h := NewSubjectHandler(mock, 75)

	w := serve("GET", "/subjects/:id", "/subjects/s1", nil, h.GetSubject)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data dto.SubjectDetailResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if !body.Data.IsLow || body.Data.Attendance.Percentage != 50 {
		t.Errorf("unexpected detail: %+v", body.Data)
	}
}

func TestSubjectHandler_GetSubject_NotFound(t *testing.T) {
	h := NewSubjectHandler(&mockAttendanceService{subjectErr: service.ErrSubjectNotFound}, 75)

	w := serve("GET", "/subjects/:id", "/subjects/missing", nil, h.GetSubject)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeSubjectNotFound {
		t.Errorf("expected error code %d, got %d", response.CodeSubjectNotFound, resp.Code)
	}
}

func TestSubjectHandler_DeleteSubject(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewSubjectHandler(mock, 75)

	w := serve("DELETE", "/subjects/:id", "/subjects/s1", nil, h.DeleteSubject)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastDeleteID != "s1" {
		t.Errorf("expected delete s1, got %q", mock.lastDeleteID)
	}
}

func TestSubjectHandler_GetRecordForDate(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewSubjectHandler(mock, 75)

	w := serve("GET", "/subjects/:id/records/:date", "/subjects/s1/records/01-02-2024", nil, h.GetRecordForDate)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", w.Code)
	}

	w = serve("GET", "/subjects/:id/records/:date", "/subjects/s1/records/2024-01-02", nil, h.GetRecordForDate)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeRecordNotFound {
		t.Errorf("expected error code %d, got %d", response.CodeRecordNotFound, resp.Code)
	}

	mock.record = &model.AttendanceRecord{ID: "r1", SubjectID: "s1", Date: "2024-01-02"}
	w = serve("GET", "/subjects/:id/records/:date", "/subjects/s1/records/2024-01-02", nil, h.GetRecordForDate)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_SaveAttendance(t *testing.T) {
	mock := &mockAttendanceService{record: &model.AttendanceRecord{ID: "r1"}}
	h := NewAttendanceHandler(mock, 75)

	w := serve("PUT", "/attendance", "/attendance", strings.NewReader(
		`{"subjectId":"s1","date":"2024-01-01","status":"absent","classCount":2,"notes":"sick"}`,
	), h.SaveAttendance)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastSave == nil || mock.lastSave.ClassCount != 2 || mock.lastSave.Notes == nil || *mock.lastSave.Notes != "sick" {
		t.Errorf("request not bound correctly: %+v", mock.lastSave)
	}
	if mock.lastSave.Assignment != nil {
		t.Error("omitted optional field should stay nil")
	}
}

func TestAttendanceHandler_SaveAttendance_UnknownSubject(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{saveErr: service.ErrSubjectNotFound}, 75)

	w := serve("PUT", "/attendance", "/attendance", jsonBody(dto.SaveAttendanceRequest{
		SubjectID: "missing", Date: "2024-01-01", Status: model.StatusPresent, ClassCount: 1,
	}), h.SaveAttendance)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAttendanceHandler_GetStats(t *testing.T) {
	mock := &mockAttendanceService{
		stats: []model.SubjectStats{
			{Subject: model.Subject{ID: "a"}, SubjectAttendance: model.SubjectAttendance{TotalClasses: 2, PresentClasses: 1, Percentage: 50}},
			{Subject: model.Subject{ID: "b"}, SubjectAttendance: model.SubjectAttendance{TotalClasses: 1, PresentClasses: 1, Percentage: 100}},
		},
		overall: model.OverallStats{Subjects: 2, TotalClasses: 3, PresentClasses: 2, Percentage: 67},
	}
	h := NewAttendanceHandler(mock, 75)

	w := serve("GET", "/stats", "/stats", nil, h.GetStats)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data struct {
			Overall  model.OverallStats `json:"overall"`
			Subjects []struct {
				ID         string `json:"id"`
				Percentage int    `json:"percentage"`
			} `json:"subjects"`
			Low []struct {
				ID string `json:"id"`
			} `json:"low"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Overall.Percentage != 67 {
		t.Errorf("expected overall 67, got %d", body.Data.Overall.Percentage)
	}
	if len(body.Data.Subjects) != 2 || body.Data.Subjects[0].ID != "b" {
		t.Errorf("subjects should be sorted by percentage desc: %+v", body.Data.Subjects)
	}
	if len(body.Data.Low) != 1 || body.Data.Low[0].ID != "a" {
		t.Errorf("unexpected low list: %+v", body.Data.Low)
	}
}

// ═══════════════════════════════════════════════════════════
// AlertHandler Tests
// ═══════════════════════════════════════════════════════════

func testAlertConfig() *config.AlertConfig {
	return &config.AlertConfig{Threshold: 75, DefaultDays: 7, DashboardDays: 3}
}

func TestAlertHandler_Deadlines(t *testing.T) {
	mock := &mockNotificationService{deadlines: []model.Assignment{{ID: "r1-assignment"}}}
	h := NewAlertHandler(mock, testAlertConfig())

	w := serve("GET", "/alerts/deadlines", "/alerts/deadlines", nil, h.Deadlines)
	if w.Code != http.StatusOK || mock.lastDays != 7 {
		t.Errorf("expected default window 7, got status %d days %d", w.Code, mock.lastDays)
	}

	w = serve("GET", "/alerts/deadlines", "/alerts/deadlines?days=1", nil, h.Deadlines)
	if w.Code != http.StatusOK || mock.lastDays != 1 {
		t.Errorf("expected window 1, got status %d days %d", w.Code, mock.lastDays)
	}

	w = serve("GET", "/alerts/deadlines", "/alerts/deadlines?days=-2", nil, h.Deadlines)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative days, got %d", w.Code)
	}
}

func TestAlertHandler_Dashboard(t *testing.T) {
	mock := &mockNotificationService{}
	h := NewAlertHandler(mock, testAlertConfig())

	w := serve("GET", "/dashboard", "/dashboard", nil, h.Dashboard)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastDays != 3 {
		t.Errorf("dashboard should use 3-day window, got %d", mock.lastDays)
	}
}

// ═══════════════════════════════════════════════════════════
// ThemeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestThemeHandler_SetAndToggle(t *testing.T) {
	mock := &mockThemeService{}
	h := NewThemeHandler(mock)

	w := serve("PUT", "/theme", "/theme", strings.NewReader(`{"isDark":true}`), h.SetTheme)
	if w.Code != http.StatusOK || !mock.dark {
		t.Errorf("expected dark theme, got status %d dark %v", w.Code, mock.dark)
	}

	w = serve("POST", "/theme/toggle", "/theme/toggle", nil, h.ToggleTheme)
	if w.Code != http.StatusOK || mock.dark {
		t.Errorf("expected light theme after toggle, got status %d dark %v", w.Code, mock.dark)
	}

	w = serve("PUT", "/theme", "/theme", strings.NewReader(`{}`), h.SetTheme)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without isDark, got %d", w.Code)
	}
}

func TestThemeHandler_PersistenceFailure(t *testing.T) {
	mock := &mockThemeService{setErr: apperrors.NewPersistenceError("set", "theme", io.ErrClosedPipe)}
	h := NewThemeHandler(mock)

	w := serve("POST", "/theme/toggle", "/theme/toggle", nil, h.ToggleTheme)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportAttendance_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("fake-excel-content"),
		filename: "出勤统计_20240310.xlsx",
	}
	h := NewExportHandler(mock)

	w := serve("GET", "/export/attendance", "/export/attendance", nil, h.ExportAttendance)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "filename*=UTF-8''") {
		t.Errorf("unexpected content disposition: %s", cd)
	}
}

func TestExportHandler_ExportAttendance_Empty(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoSubjects})

	w := serve("GET", "/export/attendance", "/export/attendance", nil, h.ExportAttendance)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeExportEmpty {
		t.Errorf("expected error code %d, got %d", response.CodeExportEmpty, resp.Code)
	}
}

func TestExportHandler_ExportDeadlines(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("BEGIN:VCALENDAR"), filename: "deadlines.ics"}
	h := NewExportHandler(mock)

	w := serve("GET", "/export/deadlines", "/export/deadlines", nil, h.ExportDeadlines)
	if w.Code != http.StatusOK || mock.lastDays != -1 {
		t.Errorf("expected default window, got status %d days %d", w.Code, mock.lastDays)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type: %s", ct)
	}

	serve("GET", "/export/deadlines", "/export/deadlines?days=14", nil, h.ExportDeadlines)
	if mock.lastDays != 14 {
		t.Errorf("expected 14, got %d", mock.lastDays)
	}
}

// ═══════════════════════════════════════════════════════════
// TimetableHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTimetableHandler_ImportICS_File(t *testing.T) {
	mock := &mockTimetableService{result: &dto.TimetableImportResponse{Created: []model.Subject{{ID: "s1"}}}}
	h := NewTimetableHandler(mock, 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "timetable.ics")
	fw.Write([]byte("BEGIN:VCALENDAR"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/timetables/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r := gin.New()
	r.POST("/timetables/import", h.ImportICS)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.content != "BEGIN:VCALENDAR" {
		t.Errorf("file content not passed through: %q", mock.content)
	}
}

func TestTimetableHandler_ImportICS_URL(t *testing.T) {
	mock := &mockTimetableService{result: &dto.TimetableImportResponse{}}
	h := NewTimetableHandler(mock, 1<<20)

	w := serve("POST", "/timetables/import", "/timetables/import",
		jsonBody(dto.ImportICSRequest{URL: "webcal://example.com/cal.ics"}), h.ImportICS)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.url != "webcal://example.com/cal.ics" {
		t.Errorf("unexpected url: %q", mock.url)
	}
}

func TestTimetableHandler_ImportICS_Errors(t *testing.T) {
	h := NewTimetableHandler(&mockTimetableService{}, 1<<20)
	w := serve("POST", "/timetables/import", "/timetables/import", strings.NewReader(`{}`), h.ImportICS)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without file or url, got %d", w.Code)
	}

	h = NewTimetableHandler(&mockTimetableService{err: service.ErrICSParse}, 1<<20)
	w = serve("POST", "/timetables/import", "/timetables/import",
		jsonBody(dto.ImportICSRequest{URL: "https://example.com/cal.ics"}), h.ImportICS)
	if resp := parseResponse(w); resp.Code != response.CodeTimetableInvalid {
		t.Errorf("expected error code %d, got %d", response.CodeTimetableInvalid, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(&mockAttendanceService{loading: true}, &mockThemeService{})

	w := serve("GET", "/health", "/health", nil, h.Health)

	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusOK || body["loading"] != true {
		t.Errorf("unexpected health response: %d %v", w.Code, body)
	}
}
