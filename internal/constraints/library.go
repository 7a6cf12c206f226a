// Package constraints 约束系统说明
package constraints

import (
	"strconv"

	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint/builtin"
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, string
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Source      string `json:"source,omitempty"` // 取值来源，如 staffing_constraints
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"`     // hard 硬约束, soft 软约束
	Category    string            `json:"category"` // 分类
	Description string            `json:"description"`
	Active      bool              `json:"active"` // 是否在当前规则集中生效
	Params      []ConstraintParam `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
}

// GetLibrary 获取完整的约束库
func GetLibrary() []ConstraintDefinition {
	return []ConstraintDefinition{
		{
			Name:        string(constraint.TypeMutualExclusion),
			DisplayName: "同日班次互斥",
			Type:        string(constraint.CategoryHard),
			Category:    "班次结构",
			Description: "护士同一天最多安排一个班次。",
			Params:      []ConstraintParam{},
		},
		{
			Name:        string(constraint.TypeShiftCoverage),
			DisplayName: "班次人数覆盖",
			Type:        string(constraint.CategoryHard),
			Category:    "人力覆盖",
			Description: "工作日只排白班和晚班，人数不少于科室最低值；周末只排全天班，人数恰好等于配置值。",
			Params: []ConstraintParam{
				{Name: "min_day", Type: "int", Description: "工作日白班最低人数", Source: "staffing_constraints"},
				{Name: "min_evening", Type: "int", Description: "工作日晚班最低人数", Source: "staffing_constraints"},
				{Name: "min_full", Type: "int", Description: "周末全天班人数", Source: "staffing_constraints"},
			},
		},
		{
			Name:        string(constraint.TypeRestAfterEvening),
			DisplayName: "晚班后休息",
			Type:        string(constraint.CategoryHard),
			Category:    "休息保障",
			Description: "晚班次日起连续休息，期间不排任何班次。",
			Params: []ConstraintParam{
				{Name: "rest_days", Type: "int", Description: "休息天数", Default: strconv.Itoa(builtin.RestDaysAfterEvening)},
			},
		},
		{
			Name:        string(constraint.TypeRestAfterFull),
			DisplayName: "全天班后休息",
			Type:        string(constraint.CategoryHard),
			Category:    "休息保障",
			Description: "全天班次日起连续休息，期间不排任何班次。",
			Params: []ConstraintParam{
				{Name: "rest_days", Type: "int", Description: "休息天数", Default: strconv.Itoa(builtin.RestDaysAfterFull)},
			},
		},
		{
			Name:        string(constraint.TypeMinMonthlyHours),
			DisplayName: "月最低工时",
			Type:        string(constraint.CategoryHard),
			Category:    "工时限制",
			Description: "每名护士当月工时不少于 当月工作日数 × 每日标准工时。",
			Params: []ConstraintParam{
				{Name: "hours_per_weekday", Type: "int", Description: "每个工作日折算工时", Default: strconv.Itoa(model.HoursPerWeekday)},
			},
		},
	}
}

// ActiveLibrary 返回约束库，并按 manager 中已注册的约束标记 Active
func ActiveLibrary(manager *constraint.Manager) []ConstraintDefinition {
	library := GetLibrary()
	for i := range library {
		library[i].Active = manager.GetConstraint(constraint.Type(library[i].Name)) != nil
	}
	return library
}
