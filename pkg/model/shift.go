// Package model 定义护士排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftType 班次类型（固定三种，顺序有意义）
type ShiftType int

const (
	ShiftDay     ShiftType = iota // 白班 08:00 起 8 小时
	ShiftEvening                  // 晚班 16:00 起 16 小时
	ShiftFull                     // 全天班 08:00 起 24 小时（仅周末）
)

// NumShiftTypes 班次类型数量
const NumShiftTypes = 3

// AllShiftTypes 全部班次类型
var AllShiftTypes = [NumShiftTypes]ShiftType{ShiftDay, ShiftEvening, ShiftFull}

var (
	shiftDurations  = [NumShiftTypes]int{8, 16, 24}
	shiftStartHours = [NumShiftTypes]int{8, 16, 8}
	shiftNames      = [NumShiftTypes]string{"day", "evening", "full"}
)

// Valid 检查班次类型是否合法
func (s ShiftType) Valid() bool {
	return s >= 0 && int(s) < NumShiftTypes
}

// Duration 班次时长（小时）
func (s ShiftType) Duration() int {
	return shiftDurations[s]
}

// StartHour 班次开始时刻
func (s ShiftType) StartHour() int {
	return shiftStartHours[s]
}

// EndHour 班次结束时刻
func (s ShiftType) EndHour() int {
	return (s.StartHour() + s.Duration()) % 24
}

// EndsNextDay 班次是否跨天
func (s ShiftType) EndsNextDay() bool {
	return s.Duration() != 8
}

func (s ShiftType) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return shiftNames[s]
}

// Shift 已发布的班次记录
type Shift struct {
	BaseModel
	NurseID      uuid.UUID `json:"nurse_id" db:"nurse_id"`
	DepartmentID uuid.UUID `json:"department_id" db:"department_id"`
	ShiftType    ShiftType `json:"shift_type" db:"shift_type"`
	StartDate    time.Time `json:"start_date" db:"start_date"`
	EndDate      time.Time `json:"end_date" db:"end_date"`

	// 查询时联表带出
	NurseFirstName string `json:"nurse_first_name,omitempty" db:"-"`
	NurseLastName  string `json:"nurse_last_name,omitempty" db:"-"`
}

// WorkingHours 计算工作时长（小时）
func (s *Shift) WorkingHours() float64 {
	return s.EndDate.Sub(s.StartDate).Hours()
}

// Range 返回班次的时间范围
func (s *Shift) Range() TimeRange {
	return TimeRange{Start: s.StartDate, End: s.EndDate}
}

// Date 返回班次开始日期 YYYY-MM-DD
func (s *Shift) Date() string {
	return s.StartDate.Format(DateLayout)
}
