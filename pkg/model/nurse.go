// Package model 定义护士排班引擎的核心数据模型
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Department 科室
type Department struct {
	BaseModel
	Name string `json:"name" db:"name"`
}

// Nurse 护士
type Nurse struct {
	BaseModel
	DepartmentID uuid.UUID `json:"department_id" db:"department_id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Status       string    `json:"status" db:"status"` // active/inactive/leave
}

// IsActive 检查护士是否在职
func (n *Nurse) IsActive() bool {
	return n.Status == "" || n.Status == "active"
}

// FullName 返回姓名
func (n *Nurse) FullName() string {
	return strings.TrimSpace(n.FirstName + " " + n.LastName)
}

// Availability 护士某月可上班日期
// WorkDates 为空切片表示整月都不可用；记录不存在（nil）表示整月可用
type Availability struct {
	NurseID   uuid.UUID `json:"nurse_id" db:"nurse_id"`
	Year      int       `json:"year" db:"year"`
	Month     int       `json:"month" db:"month"`
	WorkDates []string  `json:"work_dates" db:"work_dates"` // YYYY-MM-DD

	dates map[string]struct{}
}

// NewAvailability 创建可用性记录
func NewAvailability(nurseID uuid.UUID, p Period, dates []string) *Availability {
	return &Availability{
		NurseID:   nurseID,
		Year:      p.Year,
		Month:     int(p.Month),
		WorkDates: dates,
	}
}

// Allows 检查护士在某天是否可上班
func (a *Availability) Allows(date string) bool {
	if a == nil {
		return true
	}
	if a.dates == nil {
		a.dates = make(map[string]struct{}, len(a.WorkDates))
		for _, d := range a.WorkDates {
			a.dates[d] = struct{}{}
		}
	}
	_, ok := a.dates[date]
	return ok
}

// StaffingConstraint 科室各班次最低人数
type StaffingConstraint struct {
	BaseModel
	DepartmentID      uuid.UUID          `json:"department_id" db:"department_id"`
	MinNursesPerShift [NumShiftTypes]int `json:"min_nurses_per_shift" db:"min_nurses_per_shift"`
}

// Min 返回某班次的最低人数
func (c *StaffingConstraint) Min(s ShiftType) int {
	return c.MinNursesPerShift[s]
}

// Validate 校验人数配置
func (c *StaffingConstraint) Validate() error {
	for _, s := range AllShiftTypes {
		if c.MinNursesPerShift[s] < 0 {
			return fmt.Errorf("班次 %s 最低人数不能为负: %d", s, c.MinNursesPerShift[s])
		}
	}
	return nil
}

// ParseWorkDates 校验并规范化日期列表
func ParseWorkDates(dates []string) ([]time.Time, error) {
	result := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("日期格式错误 %q: %w", d, err)
		}
		result = append(result, t)
	}
	return result, nil
}

// GroupWorkDates 按自然月拆分可上班日期，结果按年月排序，日期去重升序
func GroupWorkDates(nurseID uuid.UUID, dates []string) ([]*Availability, error) {
	parsed, err := ParseWorkDates(dates)
	if err != nil {
		return nil, err
	}

	byPeriod := make(map[Period]map[string]struct{})
	for _, t := range parsed {
		p := NewPeriod(t.Year(), t.Month())
		if byPeriod[p] == nil {
			byPeriod[p] = make(map[string]struct{})
		}
		byPeriod[p][t.Format(DateLayout)] = struct{}{}
	}

	result := make([]*Availability, 0, len(byPeriod))
	for p, set := range byPeriod {
		list := make([]string, 0, len(set))
		for d := range set {
			list = append(list, d)
		}
		sort.Strings(list)
		result = append(result, NewAvailability(nurseID, p, list))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}
