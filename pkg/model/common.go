// Package model 定义护士排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TimeRange 时间范围
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration 返回时间范围的持续时间
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps 检查两个时间范围是否重叠
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// HoursPerWeekday 每个工作日折算的最低工时
const HoursPerWeekday = 8

// Period 排班周期（自然月）
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewPeriod 创建排班周期
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// NextPeriod 返回 now 的下一个自然月
// 以当月1日为基准计算，避免 1月31日 加一个月落到3月
func NextPeriod(now time.Time) Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	next := first.AddDate(0, 1, 0)
	return Period{Year: next.Year(), Month: next.Month()}
}

// Days 返回当月天数
func (p Period) Days() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date 返回第 day 天（从0开始）的零点
func (p Period) Date(day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(p.Year, p.Month, day+1, 0, 0, 0, 0, loc)
}

// DateString 返回第 day 天（从0开始）的 YYYY-MM-DD
func (p Period) DateString(day int) string {
	return p.Date(day, time.UTC).Format(DateLayout)
}

// IsWeekend 第 day 天是否为周末
func (p Period) IsWeekend(day int) bool {
	wd := p.Date(day, time.UTC).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekdayCount 返回当月非周末天数
func (p Period) WeekdayCount() int {
	count := 0
	for d := 0; d < p.Days(); d++ {
		if !p.IsWeekend(d) {
			count++
		}
	}
	return count
}

// MinimumHours 每名护士当月最低工时
func (p Period) MinimumHours() int {
	return HoursPerWeekday * p.WeekdayCount()
}

// Contains 检查日期是否属于该周期
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// String 返回 YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
