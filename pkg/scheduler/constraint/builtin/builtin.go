// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
)

const (
	// RestDaysAfterEvening 晚班后休息天数
	RestDaysAfterEvening = 1
	// RestDaysAfterFull 全天班后休息天数
	RestDaysAfterFull = 2
)

// RegisterDefaults 注册护理排班的全部硬约束
func RegisterDefaults(manager *constraint.Manager) {
	manager.Register(NewMutualExclusionConstraint())
	manager.Register(NewShiftCoverageConstraint())
	manager.Register(NewRestAfterShiftConstraint(model.ShiftEvening, RestDaysAfterEvening))
	manager.Register(NewRestAfterShiftConstraint(model.ShiftFull, RestDaysAfterFull))
	manager.Register(NewMinMonthlyHoursConstraint())
}

// NewNursingRuleSet 创建已注册默认约束的管理器
func NewNursingRuleSet() *constraint.Manager {
	m := constraint.NewManager()
	RegisterDefaults(m)
	return m
}
