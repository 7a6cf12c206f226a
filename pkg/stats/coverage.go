package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/paiban/nurse-roster/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	RequiredSlots   int     `json:"required_slots"` // 按最低人数累计的岗位数
	FilledSlots     int     `json:"filled_slots"`   // 其中已有人的岗位数
	SurplusSlots    int     `json:"surplus_slots"`  // 超出最低人数的排班
	OverallCoverage float64 `json:"overall_coverage"`

	DailyCoverage []DayCoverage        `json:"daily_coverage"`
	Understaffed  []UnderstaffedPeriod `json:"understaffed,omitempty"`
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date       string                   `json:"date"`
	Weekend    bool                     `json:"weekend"`
	Counts     [model.NumShiftTypes]int `json:"counts"`
	Required   [model.NumShiftTypes]int `json:"required"`
	StaffCount int                      `json:"staff_count"`
	TotalHours float64                  `json:"total_hours"`
}

// UnderstaffedPeriod 人手不足班次
type UnderstaffedPeriod struct {
	Date      string          `json:"date"`
	ShiftType model.ShiftType `json:"shift_type"`
	Required  int             `json:"required"`
	Assigned  int             `json:"assigned"`
	Shortage  int             `json:"shortage"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct {
	loc *time.Location
}

// NewCoverageAnalyzer 创建覆盖率分析器，日期按 loc 划分
func NewCoverageAnalyzer(loc *time.Location) *CoverageAnalyzer {
	if loc == nil {
		loc = time.UTC
	}
	return &CoverageAnalyzer{loc: loc}
}

// Analyze 按科室人数要求统计当月每天每个班次的覆盖
// 工作日要求白班、晚班，周末只要求全天班
func (c *CoverageAnalyzer) Analyze(period model.Period, shifts []*model.Shift, staffing *model.StaffingConstraint) *CoverageMetrics {
	days := period.Days()
	daily := make([]DayCoverage, days)
	for d := 0; d < days; d++ {
		daily[d] = DayCoverage{Date: period.DateString(d), Weekend: period.IsWeekend(d)}
		if staffing == nil {
			continue
		}
		if daily[d].Weekend {
			daily[d].Required[model.ShiftFull] = staffing.Min(model.ShiftFull)
		} else {
			daily[d].Required[model.ShiftDay] = staffing.Min(model.ShiftDay)
			daily[d].Required[model.ShiftEvening] = staffing.Min(model.ShiftEvening)
		}
	}

	for _, s := range shifts {
		start := s.StartDate.In(c.loc)
		if !period.Contains(start) || !s.ShiftType.Valid() {
			continue
		}
		day := &daily[start.Day()-1]
		day.Counts[s.ShiftType]++
		day.StaffCount++
		day.TotalHours += s.WorkingHours()
	}

	metrics := &CoverageMetrics{DailyCoverage: daily, OverallCoverage: 100}
	for _, day := range daily {
		for _, st := range model.AllShiftTypes {
			required, got := day.Required[st], day.Counts[st]
			metrics.RequiredSlots += required
			if got >= required {
				metrics.FilledSlots += required
				metrics.SurplusSlots += got - required
				continue
			}
			metrics.FilledSlots += got
			metrics.Understaffed = append(metrics.Understaffed, UnderstaffedPeriod{
				Date:      day.Date,
				ShiftType: st,
				Required:  required,
				Assigned:  got,
				Shortage:  required - got,
			})
		}
	}
	if metrics.RequiredSlots > 0 {
		metrics.OverallCoverage = float64(metrics.FilledSlots) / float64(metrics.RequiredSlots) * 100
	}
	return metrics
}

// GenerateCoverageReport 生成覆盖率文本报告
func (c *CoverageAnalyzer) GenerateCoverageReport(metrics *CoverageMetrics) string {
	var b strings.Builder
	b.WriteString("=== 覆盖率分析报告 ===\n\n")
	fmt.Fprintf(&b, "  要求岗位: %d\n", metrics.RequiredSlots)
	fmt.Fprintf(&b, "  已覆盖: %d\n", metrics.FilledSlots)
	fmt.Fprintf(&b, "  超配: %d\n", metrics.SurplusSlots)
	fmt.Fprintf(&b, "  覆盖率: %.1f%%\n", metrics.OverallCoverage)

	if len(metrics.Understaffed) > 0 {
		b.WriteString("\n【人手不足】\n")
		for _, u := range metrics.Understaffed {
			fmt.Fprintf(&b, "  - %s %s (需要%d人，仅有%d人，缺%d人)\n",
				u.Date, u.ShiftType, u.Required, u.Assigned, u.Shortage)
		}
	}
	return b.String()
}
