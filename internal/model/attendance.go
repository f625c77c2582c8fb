package model

// DateLayout 出勤日期格式
const DateLayout = "2006-01-02"

// AttendanceStatus 出勤状态
type AttendanceStatus string

const (
	StatusPresent   AttendanceStatus = "present"
	StatusAbsent    AttendanceStatus = "absent"
	StatusCancelled AttendanceStatus = "cancelled"
)

// AttendanceRecord 每日出勤记录，存于键 "attendance"
//
// (SubjectID, Date) 为自然键，同一课程同一天至多一条。
type AttendanceRecord struct {
	ID                string           `json:"id"`
	SubjectID         string           `json:"subjectId"`
	Date              string           `json:"date"`
	Status            AttendanceStatus `json:"status"`
	ClassCount        int              `json:"classCount"`
	Notes             string           `json:"notes,omitempty"`
	Assignment        string           `json:"assignment,omitempty"`
	AssignmentDueDate string           `json:"assignmentDueDate,omitempty"`
}

// SubjectAttendance 单门课程的出勤汇总（派生值，不落盘）
type SubjectAttendance struct {
	TotalClasses   int `json:"totalClasses"`
	PresentClasses int `json:"presentClasses"`
	Percentage     int `json:"percentage"`
}

// SubjectStats 课程及其出勤汇总
type SubjectStats struct {
	Subject
	SubjectAttendance
}

// OverallStats 全部课程的汇总
type OverallStats struct {
	Subjects       int `json:"subjects"`
	TotalClasses   int `json:"totalClasses"`
	PresentClasses int `json:"presentClasses"`
	Percentage     int `json:"percentage"`
}
