package builtin

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// MutualExclusionConstraint 同一护士同一天最多一个班次
// 按班次两两互斥编码，缺失的决策直接跳过
type MutualExclusionConstraint struct {
	*BaseConstraint
}

// NewMutualExclusionConstraint 创建班次互斥约束
func NewMutualExclusionConstraint() *MutualExclusionConstraint {
	return &MutualExclusionConstraint{
		BaseConstraint: NewBaseConstraint(
			"同日班次互斥",
			constraint.TypeMutualExclusion,
			constraint.CategoryHard,
		),
	}
}

// Apply 编码约束
func (c *MutualExclusionConstraint) Apply(g *grid.Grid, _ *model.StaffingConstraint, set *constraint.Set) error {
	for n := range g.Nurses {
		for d := 0; d < g.Days; d++ {
			vars := g.DayDecisions(n, d)
			for i := 0; i < len(vars); i++ {
				for j := i + 1; j < len(vars); j++ {
					set.Implies(constraint.Pos(vars[i]), constraint.Not(vars[j]))
				}
			}
		}
	}
	return nil
}

// Evaluate 评估解
func (c *MutualExclusionConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail

	for n := range ctx.Grid.Nurses {
		for d := 0; d < ctx.Grid.Days; d++ {
			count := 0
			for _, s := range model.AllShiftTypes {
				if ctx.IsTrue(n, d, s) {
					count++
				}
			}
			if count > 1 {
				violations = append(violations, c.violation(ctx.NurseID(n), ctx.Grid.Period.DateString(d), count))
			}
		}
	}

	return len(violations) == 0, violations
}

func (c *MutualExclusionConstraint) violation(nurseID uuid.UUID, date string, count int) constraint.ViolationDetail {
	return c.CreateViolation(nurseID, date, fmt.Sprintf("护士 %s 在 %s 安排了 %d 个班次", nurseID, date, count))
}
