package service

import (
	"math"
	"sort"

	"attendly/internal/model"
)

// ── 出勤汇总（纯函数，不访问 store 状态） ──

// Percentage round(100*present/total)，total 为 0 时返回 0，结果截断到 [0,100]
func Percentage(present, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(present) / float64(total)))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// ComputeSubjectAttendance 汇总单门课程：已取消的课次也计入总数
func ComputeSubjectAttendance(records []model.AttendanceRecord, subjectID string) model.SubjectAttendance {
	var total, present int
	for _, r := range records {
		if r.SubjectID != subjectID {
			continue
		}
		total += r.ClassCount
		if r.Status == model.StatusPresent {
			present += r.ClassCount
		}
	}
	return model.SubjectAttendance{
		TotalClasses:   total,
		PresentClasses: present,
		Percentage:     Percentage(present, total),
	}
}

// BuildSubjectStats 按课程顺序组装汇总
func BuildSubjectStats(subjects []model.Subject, records []model.AttendanceRecord) []model.SubjectStats {
	out := make([]model.SubjectStats, 0, len(subjects))
	for _, sub := range subjects {
		out = append(out, model.SubjectStats{
			Subject:           sub.Clone(),
			SubjectAttendance: ComputeSubjectAttendance(records, sub.ID),
		})
	}
	return out
}

// ComputeOverallStats 全部课程合计
func ComputeOverallStats(stats []model.SubjectStats) model.OverallStats {
	var overall model.OverallStats
	for _, st := range stats {
		overall.Subjects++
		overall.TotalClasses += st.TotalClasses
		overall.PresentClasses += st.PresentClasses
	}
	overall.Percentage = Percentage(overall.PresentClasses, overall.TotalClasses)
	return overall
}

// RankByPercentage 按出勤率降序排列（稳定排序，返回新切片）
func RankByPercentage(stats []model.SubjectStats) []model.SubjectStats {
	out := append([]model.SubjectStats(nil), stats...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out
}

// IsLowAttendance 有课次记录且出勤率低于阈值
func IsLowAttendance(a model.SubjectAttendance, threshold int) bool {
	return a.TotalClasses > 0 && a.Percentage < threshold
}

// FilterLowAttendance 筛选出勤率偏低的课程，保持原顺序
func FilterLowAttendance(stats []model.SubjectStats, threshold int) []model.SubjectStats {
	out := []model.SubjectStats{}
	for _, st := range stats {
		if IsLowAttendance(st.SubjectAttendance, threshold) {
			out = append(out, st)
		}
	}
	return out
}
