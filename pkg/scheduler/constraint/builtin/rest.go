// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"

	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// RestAfterShiftConstraint 班后休息约束
// 护士在第 d 天上 shift 班，则第 d+1 .. d+restDays 天不得排班
type RestAfterShiftConstraint struct {
	*BaseConstraint
	shift    model.ShiftType
	restDays int
}

// NewRestAfterShiftConstraint 创建班后休息约束
func NewRestAfterShiftConstraint(shift model.ShiftType, restDays int) *RestAfterShiftConstraint {
	typ := constraint.Type(fmt.Sprintf("rest_after_%s", shift))
	switch shift {
	case model.ShiftEvening:
		typ = constraint.TypeRestAfterEvening
	case model.ShiftFull:
		typ = constraint.TypeRestAfterFull
	}

	return &RestAfterShiftConstraint{
		BaseConstraint: NewBaseConstraint(
			fmt.Sprintf("%s班后休息%d天", shift, restDays),
			typ,
			constraint.CategoryHard,
		),
		shift:    shift,
		restDays: restDays,
	}
}

// Shift 触发休息的班次
func (c *RestAfterShiftConstraint) Shift() model.ShiftType { return c.shift }

// RestDays 休息天数
func (c *RestAfterShiftConstraint) RestDays() int { return c.restDays }

// Apply 编码约束
func (c *RestAfterShiftConstraint) Apply(g *grid.Grid, _ *model.StaffingConstraint, set *constraint.Set) error {
	if c.restDays < 0 {
		return fmt.Errorf("休息天数不能为负: %d", c.restDays)
	}

	for n := range g.Nurses {
		for d := 0; d < g.Days; d++ {
			v, ok := g.Decision(n, d, c.shift)
			if !ok {
				continue
			}
			// 越过月末的日子没有决策，DayDecisions 返回空
			for k := 1; k <= c.restDays; k++ {
				for _, w := range g.DayDecisions(n, d+k) {
					set.Implies(constraint.Pos(v), constraint.Not(w))
				}
			}
		}
	}
	return nil
}

// Evaluate 评估解
func (c *RestAfterShiftConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	g := ctx.Grid

	for n := range g.Nurses {
		for d := 0; d < g.Days; d++ {
			if !ctx.IsTrue(n, d, c.shift) {
				continue
			}
			for k := 1; k <= c.restDays && d+k < g.Days; k++ {
				if ctx.WorksOn(n, d+k) {
					violations = append(violations, c.CreateViolation(ctx.NurseID(n), g.Period.DateString(d+k),
						fmt.Sprintf("%s 上 %s 班后第 %d 天仍有排班", g.Period.DateString(d), c.shift, k)))
				}
			}
		}
	}

	return len(violations) == 0, violations
}
