// Package validator 提供排班验证功能
package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictOverlap     ConflictType = "overlap"     // 时间重叠
	ConflictRestTime    ConflictType = "rest_time"   // 休息时间不足
	ConflictMinHours    ConflictType = "min_hours"   // 月工时不足
	ConflictConsecutive ConflictType = "consecutive" // 连续天数过多
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType `json:"type"`
	Severity string       `json:"severity"` // error/warning
	NurseID  uuid.UUID    `json:"nurse_id"`
	Date     string       `json:"date"`
	Message  string       `json:"message"`
	Shifts   []uuid.UUID  `json:"shifts,omitempty"` // 相关的班次ID
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	MinRestHours       int // 班次间最小休息（小时），不足时告警
	MinMonthlyHours    int // 月最低工时，0 表示不检查
	MaxConsecutiveDays int // 最大连续工作天数，0 表示不检查
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		MinRestHours:       11,
		MaxConsecutiveDays: 7,
	}
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// DetectAll 检测所有冲突
// nurses 中没有的护士按 ID 显示
func (d *ConflictDetector) DetectAll(shifts []*model.Shift, nurses map[uuid.UUID]*model.Nurse) []Conflict {
	var conflicts []Conflict

	byNurse := groupByNurse(shifts)

	ids := make([]uuid.UUID, 0, len(byNurse))
	for id := range byNurse {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		name := displayName(id, nurses[id])
		sorted := sortByStart(byNurse[id])

		conflicts = append(conflicts, d.detectOverlaps(id, name, sorted)...)
		conflicts = append(conflicts, d.detectRestTimeViolations(id, name, sorted)...)
		conflicts = append(conflicts, d.detectConsecutiveDaysViolations(id, name, sorted)...)
	}

	if d.config.MinMonthlyHours > 0 {
		for id, nurse := range nurses {
			conflicts = append(conflicts, d.detectMinHours(id, displayName(id, nurse), byNurse[id])...)
		}
	}

	return conflicts
}

// HasErrors 是否存在错误级别的冲突
func HasErrors(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == "error" {
			return true
		}
	}
	return false
}

// detectOverlaps 检测时间重叠
func (d *ConflictDetector) detectOverlaps(id uuid.UUID, name string, sorted []*model.Shift) []Conflict {
	var conflicts []Conflict

	for i := 0; i < len(sorted)-1; i++ {
		current, next := sorted[i], sorted[i+1]

		if current.Range().Overlaps(next.Range()) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictOverlap,
				Severity: "error",
				NurseID:  id,
				Date:     current.Date(),
				Message:  fmt.Sprintf("护士 %s 在 %s 存在时间重叠的班次", name, current.Date()),
				Shifts:   []uuid.UUID{current.ID, next.ID},
			})
		}
	}

	return conflicts
}

// detectRestTimeViolations 检测休息时间不足
// 排班规则按天计算休息，这里按实际间隔小时数给出告警
func (d *ConflictDetector) detectRestTimeViolations(id uuid.UUID, name string, sorted []*model.Shift) []Conflict {
	var conflicts []Conflict

	for i := 0; i < len(sorted)-1; i++ {
		current, next := sorted[i], sorted[i+1]

		restHours := next.StartDate.Sub(current.EndDate).Hours()
		if restHours >= 0 && restHours < float64(d.config.MinRestHours) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictRestTime,
				Severity: "warning",
				NurseID:  id,
				Date:     next.Date(),
				Message:  fmt.Sprintf("护士 %s 班次间休息仅 %.1f 小时", name, restHours),
				Shifts:   []uuid.UUID{current.ID, next.ID},
			})
		}
	}

	return conflicts
}

// detectMinHours 检测月工时不足
func (d *ConflictDetector) detectMinHours(id uuid.UUID, name string, shifts []*model.Shift) []Conflict {
	var total float64
	for _, s := range shifts {
		total += s.WorkingHours()
	}

	if total >= float64(d.config.MinMonthlyHours) {
		return nil
	}
	return []Conflict{{
		Type:     ConflictMinHours,
		Severity: "error",
		NurseID:  id,
		Message:  fmt.Sprintf("护士 %s 当月工作 %.0f 小时，少于 %d 小时", name, total, d.config.MinMonthlyHours),
	}}
}

// detectConsecutiveDaysViolations 检测连续工作天数
func (d *ConflictDetector) detectConsecutiveDaysViolations(id uuid.UUID, name string, sorted []*model.Shift) []Conflict {
	if d.config.MaxConsecutiveDays <= 0 || len(sorted) == 0 {
		return nil
	}

	consecutive := 1
	maxConsecutive := 1
	startDate := sorted[0].Date()
	maxStart := startDate

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].StartDate, sorted[i].StartDate
		switch {
		case sameDay(prev, cur):
			continue
		case sameDay(prev.AddDate(0, 0, 1), cur):
			consecutive++
		default:
			consecutive = 1
			startDate = sorted[i].Date()
		}
		if consecutive > maxConsecutive {
			maxConsecutive = consecutive
			maxStart = startDate
		}
	}

	if maxConsecutive <= d.config.MaxConsecutiveDays {
		return nil
	}
	return []Conflict{{
		Type:     ConflictConsecutive,
		Severity: "warning",
		NurseID:  id,
		Date:     maxStart,
		Message:  fmt.Sprintf("护士 %s 连续工作 %d 天，超过 %d 天", name, maxConsecutive, d.config.MaxConsecutiveDays),
	}}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sortByStart(shifts []*model.Shift) []*model.Shift {
	sorted := make([]*model.Shift, len(shifts))
	copy(sorted, shifts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})
	return sorted
}

// groupByNurse 按护士分组
func groupByNurse(shifts []*model.Shift) map[uuid.UUID][]*model.Shift {
	result := make(map[uuid.UUID][]*model.Shift)
	for _, s := range shifts {
		result[s.NurseID] = append(result[s.NurseID], s)
	}
	return result
}

func displayName(id uuid.UUID, n *model.Nurse) string {
	if n == nil || n.FullName() == "" {
		return id.String()
	}
	return n.FullName()
}
