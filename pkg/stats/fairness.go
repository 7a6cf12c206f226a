// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 工时公平性
	HoursGini     float64 `json:"hours_gini"` // 工时基尼系数 (0=完全公平, 1=完全不公平)
	HoursVariance float64 `json:"hours_variance"`
	HoursStdDev   float64 `json:"hours_std_dev"`
	AvgHours      float64 `json:"avg_hours"`
	MaxHours      float64 `json:"max_hours"`
	MinHours      float64 `json:"min_hours"`
	HoursRange    float64 `json:"hours_range"`

	// 班次类型公平性
	ShiftTypeDistribution map[string]float64 `json:"shift_type_distribution"` // 各班次类型占比 (%)
	EveningShiftGini      float64            `json:"evening_shift_gini"`
	WeekendShiftGini      float64            `json:"weekend_shift_gini"`

	NurseStats []NurseStat `json:"nurse_stats"`

	// 综合评分 (0-100)
	OverallScore float64 `json:"overall_score"`
}

// NurseStat 护士统计
type NurseStat struct {
	NurseID       uuid.UUID `json:"nurse_id"`
	NurseName     string    `json:"nurse_name"`
	TotalHours    float64   `json:"total_hours"`
	ShiftCount    int       `json:"shift_count"`
	EveningShifts int       `json:"evening_shifts"`
	WeekendShifts int       `json:"weekend_shifts"`
	Deviation     float64   `json:"deviation"` // 与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct {
	loc *time.Location
}

// NewFairnessAnalyzer 创建公平性分析器，周末按 loc 判断
func NewFairnessAnalyzer(loc *time.Location) *FairnessAnalyzer {
	if loc == nil {
		loc = time.UTC
	}
	return &FairnessAnalyzer{loc: loc}
}

// Analyze 分析排班公平性
// nurses 中没有班次的护士按 0 工时计入
func (f *FairnessAnalyzer) Analyze(shifts []*model.Shift, nurses []*model.Nurse) *FairnessMetrics {
	if len(nurses) == 0 {
		return &FairnessMetrics{
			ShiftTypeDistribution: make(map[string]float64),
			NurseStats:            []NurseStat{},
			OverallScore:          100,
		}
	}

	nurseStats := f.calculateNurseStats(shifts, nurses)

	hours := make([]float64, len(nurseStats))
	evenings := make([]float64, len(nurseStats))
	weekends := make([]float64, len(nurseStats))
	for i, s := range nurseStats {
		hours[i] = s.TotalHours
		evenings[i] = float64(s.EveningShifts)
		weekends[i] = float64(s.WeekendShifts)
	}

	avg := mean(hours)
	variance := varianceOf(hours, avg)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := valueRange(hours)

	for i := range nurseStats {
		if avg > 0 {
			nurseStats[i].Deviation = (nurseStats[i].TotalHours - avg) / avg * 100
		}
	}

	hoursGini := gini(hours)
	eveningGini := gini(evenings)
	weekendGini := gini(weekends)

	return &FairnessMetrics{
		HoursGini:             hoursGini,
		HoursVariance:         variance,
		HoursStdDev:           stdDev,
		AvgHours:              avg,
		MaxHours:              maxHours,
		MinHours:              minHours,
		HoursRange:            maxHours - minHours,
		ShiftTypeDistribution: shiftTypeDistribution(shifts),
		EveningShiftGini:      eveningGini,
		WeekendShiftGini:      weekendGini,
		NurseStats:            nurseStats,
		OverallScore:          overallScore(hoursGini, eveningGini, weekendGini, stdDev, avg),
	}
}

// calculateNurseStats 按护士累计，顺序与 nurses 一致
func (f *FairnessAnalyzer) calculateNurseStats(shifts []*model.Shift, nurses []*model.Nurse) []NurseStat {
	index := make(map[uuid.UUID]int, len(nurses))
	result := make([]NurseStat, len(nurses))
	for i, n := range nurses {
		index[n.ID] = i
		result[i] = NurseStat{NurseID: n.ID, NurseName: n.FullName()}
	}

	for _, s := range shifts {
		i, ok := index[s.NurseID]
		if !ok {
			continue
		}
		stat := &result[i]
		stat.TotalHours += s.WorkingHours()
		stat.ShiftCount++
		if s.ShiftType == model.ShiftEvening {
			stat.EveningShifts++
		}
		if f.isWeekend(s.StartDate) {
			stat.WeekendShifts++
		}
	}
	return result
}

func (f *FairnessAnalyzer) isWeekend(t time.Time) bool {
	wd := t.In(f.loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 总体方差
func varianceOf(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - m
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

func valueRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 基尼系数，全零时为 0
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}

func shiftTypeDistribution(shifts []*model.Shift) map[string]float64 {
	distribution := make(map[string]float64)
	if len(shifts) == 0 {
		return distribution
	}
	counts := make(map[string]int)
	for _, s := range shifts {
		counts[s.ShiftType.String()]++
	}
	for name, c := range counts {
		distribution[name] = float64(c) / float64(len(shifts)) * 100
	}
	return distribution
}

// overallScore 综合公平性评分
func overallScore(hoursGini, eveningGini, weekendGini, stdDev, avgHours float64) float64 {
	const (
		hoursWeight   = 0.4
		eveningWeight = 0.25
		weekendWeight = 0.25
		stdDevWeight  = 0.1
	)

	hoursScore := (1 - hoursGini) * 100
	eveningScore := (1 - eveningGini) * 100
	weekendScore := (1 - weekendGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := hoursWeight*hoursScore +
		eveningWeight*eveningScore +
		weekendWeight*weekendScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}
