package builtin

import (
	"fmt"

	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// MinMonthlyHoursConstraint 每名护士月工时下限
// 下限为 8 × 当月工作日数，对所有护士相同
type MinMonthlyHoursConstraint struct {
	*BaseConstraint
}

// NewMinMonthlyHoursConstraint 创建月最低工时约束
func NewMinMonthlyHoursConstraint() *MinMonthlyHoursConstraint {
	return &MinMonthlyHoursConstraint{
		BaseConstraint: NewBaseConstraint(
			"月最低工时",
			constraint.TypeMinMonthlyHours,
			constraint.CategoryHard,
		),
	}
}

// Apply 编码约束
func (c *MinMonthlyHoursConstraint) Apply(g *grid.Grid, _ *model.StaffingConstraint, set *constraint.Set) error {
	minHours := g.MinimumHours()

	for n, nurse := range g.Nurses {
		terms := make([]constraint.Term, 0, g.Days*model.NumShiftTypes)
		for d := 0; d < g.Days; d++ {
			for _, s := range model.AllShiftTypes {
				if v, ok := g.Decision(n, d, s); ok {
					terms = append(terms, constraint.Term{Var: v, Coef: s.Duration()})
				}
			}
		}
		set.AddLinear(constraint.Linear{
			Name:  fmt.Sprintf("hours %s", nurse.ID),
			Terms: terms,
			Op:    constraint.OpGE,
			RHS:   minHours,
		})
	}
	return nil
}

// Evaluate 评估解
func (c *MinMonthlyHoursConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	minHours := ctx.Grid.MinimumHours()

	for n := range ctx.Grid.Nurses {
		if hours := ctx.NurseHours(n); hours < minHours {
			violations = append(violations, c.CreateViolation(ctx.NurseID(n), "",
				fmt.Sprintf("护士 %s 当月工时 %d 小时，少于 %d 小时", ctx.NurseID(n), hours, minHours)))
		}
	}

	return len(violations) == 0, violations
}
