package model

// Assignment 由出勤记录中的作业字段派生，不单独持久化
type Assignment struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subjectId"`
	Title       string `json:"title"`
	DueDate     string `json:"dueDate"`
	IsCompleted bool   `json:"isCompleted"`
}

// AssignmentIDSuffix 派生作业 ID = 记录 ID + 后缀
const AssignmentIDSuffix = "-assignment"
