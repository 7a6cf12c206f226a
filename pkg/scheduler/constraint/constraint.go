// Package constraint 定义约束接口和管理器
package constraint

import (
	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// Type 约束类型标识
type Type string

const (
	TypeMutualExclusion  Type = "mutual_exclusion"
	TypeShiftCoverage    Type = "shift_coverage"
	TypeRestAfterEvening Type = "rest_after_evening"
	TypeRestAfterFull    Type = "rest_after_full"
	TypeMinMonthlyHours  Type = "min_monthly_hours"
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足）
	CategorySoft Category = "soft" // 软约束（仅报告）
)

// Constraint 约束接口
// Apply 把规则编码进 Set，Evaluate 检查一个具体解
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Category 返回约束类别
	Category() Category

	// Apply 将约束编码到 set
	Apply(g *grid.Grid, staffing *model.StaffingConstraint, set *Set) error

	// Evaluate 评估一个已求得的解
	// 返回：是否满足、违反详情
	Evaluate(ctx *Context) (valid bool, details []ViolationDetail)
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintType Type      `json:"constraint_type"`
	ConstraintName string    `json:"constraint_name"`
	NurseID        uuid.UUID `json:"nurse_id,omitempty"`
	Date           string    `json:"date,omitempty"`
	Message        string    `json:"message"`
	Severity       string    `json:"severity"` // error/warning
}

// Context 解的评估上下文
type Context struct {
	Grid     *grid.Grid
	Staffing *model.StaffingConstraint
	Values   func(v int) bool
}

// NewContext 创建评估上下文
func NewContext(g *grid.Grid, staffing *model.StaffingConstraint, values func(v int) bool) *Context {
	return &Context{Grid: g, Staffing: staffing, Values: values}
}

// IsTrue 决策 (n, d, s) 存在且取值为真
func (c *Context) IsTrue(n, d int, s model.ShiftType) bool {
	v, ok := c.Grid.Decision(n, d, s)
	return ok && c.Values(v)
}

// WorksOn 护士 n 在第 d 天是否有班
func (c *Context) WorksOn(n, d int) bool {
	for _, s := range model.AllShiftTypes {
		if c.IsTrue(n, d, s) {
			return true
		}
	}
	return false
}

// NurseHours 护士 n 当月工时
func (c *Context) NurseHours(n int) int {
	hours := 0
	for d := 0; d < c.Grid.Days; d++ {
		for _, s := range model.AllShiftTypes {
			if c.IsTrue(n, d, s) {
				hours += s.Duration()
			}
		}
	}
	return hours
}

// CountOn 第 d 天班次 s 的在岗人数
func (c *Context) CountOn(d int, s model.ShiftType) int {
	count := 0
	for n := range c.Grid.Nurses {
		if c.IsTrue(n, d, s) {
			count++
		}
	}
	return count
}

// NurseID 返回第 n 名护士的 ID
func (c *Context) NurseID(n int) uuid.UUID {
	return c.Grid.Nurses[n].ID
}

// Result 约束评估结果
type Result struct {
	IsValid        bool              `json:"is_valid"`
	HardViolations []ViolationDetail `json:"hard_violations"`
	SoftViolations []ViolationDetail `json:"soft_violations"`
}
