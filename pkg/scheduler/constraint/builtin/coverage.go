package builtin

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// ShiftCoverageConstraint 工作日/周末班次划分与人数要求
// 工作日：禁止全天班，白班、晚班人数各自不少于最低值
// 周末：禁止白班和晚班，全天班人数恰好等于配置值
type ShiftCoverageConstraint struct {
	*BaseConstraint
}

// NewShiftCoverageConstraint 创建班次覆盖约束
func NewShiftCoverageConstraint() *ShiftCoverageConstraint {
	return &ShiftCoverageConstraint{
		BaseConstraint: NewBaseConstraint(
			"班次人数覆盖",
			constraint.TypeShiftCoverage,
			constraint.CategoryHard,
		),
	}
}

// Apply 编码约束
func (c *ShiftCoverageConstraint) Apply(g *grid.Grid, staffing *model.StaffingConstraint, set *constraint.Set) error {
	if err := staffing.Validate(); err != nil {
		return err
	}

	for d := 0; d < g.Days; d++ {
		date := g.Period.DateString(d)

		if g.Period.IsWeekend(d) {
			forbidShift(g, set, d, model.ShiftDay)
			forbidShift(g, set, d, model.ShiftEvening)
			set.Exactly(
				fmt.Sprintf("%s %s", date, model.ShiftFull),
				shiftVars(g, d, model.ShiftFull),
				staffing.Min(model.ShiftFull),
			)
			continue
		}

		forbidShift(g, set, d, model.ShiftFull)
		for _, s := range []model.ShiftType{model.ShiftDay, model.ShiftEvening} {
			set.AtLeast(fmt.Sprintf("%s %s", date, s), shiftVars(g, d, s), staffing.Min(s))
		}
	}
	return nil
}

// Evaluate 评估解
func (c *ShiftCoverageConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	g := ctx.Grid

	for d := 0; d < g.Days; d++ {
		date := g.Period.DateString(d)

		forbidden := []model.ShiftType{model.ShiftFull}
		if g.Period.IsWeekend(d) {
			forbidden = []model.ShiftType{model.ShiftDay, model.ShiftEvening}
		}
		for _, s := range forbidden {
			for n := range g.Nurses {
				if ctx.IsTrue(n, d, s) {
					violations = append(violations, c.CreateViolation(ctx.NurseID(n), date,
						fmt.Sprintf("%s 不允许安排 %s 班", date, s)))
				}
			}
		}

		if g.Period.IsWeekend(d) {
			got, want := ctx.CountOn(d, model.ShiftFull), ctx.Staffing.Min(model.ShiftFull)
			if got != want {
				violations = append(violations, c.CreateViolation(uuid.Nil, date,
					fmt.Sprintf("%s 全天班 %d 人，要求恰好 %d 人", date, got, want)))
			}
			continue
		}

		for _, s := range []model.ShiftType{model.ShiftDay, model.ShiftEvening} {
			got, want := ctx.CountOn(d, s), ctx.Staffing.Min(s)
			if got < want {
				violations = append(violations, c.CreateViolation(uuid.Nil, date,
					fmt.Sprintf("%s %s 班 %d 人，少于 %d 人", date, s, got, want)))
			}
		}
	}

	return len(violations) == 0, violations
}

// shiftVars 返回第 d 天班次 s 的全部存在决策
func shiftVars(g *grid.Grid, d int, s model.ShiftType) []int {
	vars := make([]int, 0, len(g.Nurses))
	for n := range g.Nurses {
		if v, ok := g.Decision(n, d, s); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

func forbidShift(g *grid.Grid, set *constraint.Set, d int, s model.ShiftType) {
	for _, v := range shiftVars(g, d, s) {
		set.Forbid(v)
	}
}
