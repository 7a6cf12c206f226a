package solver

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint/builtin"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june2026 = model.NewPeriod(2026, time.June)

func nursingModel(t *testing.T, nurses int, mins [3]int) (*grid.Grid, *constraint.Set, *constraint.Manager, *model.StaffingConstraint) {
	t.Helper()
	list := make([]*model.Nurse, nurses)
	for i := range list {
		list[i] = &model.Nurse{BaseModel: model.NewBaseModel()}
	}
	g, err := grid.NewBuilder(nil).Build(context.Background(), list, june2026)
	require.NoError(t, err)

	staffing := &model.StaffingConstraint{MinNursesPerShift: mins}
	rules := builtin.NewNursingRuleSet()
	set, err := rules.Apply(g, staffing)
	require.NoError(t, err)
	return g, set, rules, staffing
}

func TestSATSolver_FeasibleRoster(t *testing.T) {
	g, set, rules, staffing := nursingModel(t, 8, [3]int{2, 2, 1})

	s := NewSATSolver(Options{SolutionLimit: 1, Seed: 42, Timeout: time.Minute})
	result, err := s.Solve(context.Background(), g, set)
	require.NoError(t, err)

	assert.Equal(t, StatusFeasible, result.Status)
	require.Len(t, result.Solutions, 1)
	assert.Equal(t, 1, result.Statistics.Solutions)
	assert.Equal(t, 8*30*3, result.Statistics.Variables)
	assert.GreaterOrEqual(t, result.Statistics.Branches, 1)

	sol := result.Best()
	assert.True(t, set.Satisfied(sol.Value))

	check := rules.Evaluate(constraint.NewContext(g, staffing, sol.Value))
	assert.True(t, check.IsValid, "violations: %+v", check.HardViolations)
}

func TestSATSolver_SingleNurseInfeasible(t *testing.T) {
	g, set, _, _ := nursingModel(t, 1, [3]int{2, 2, 1})

	result, err := NewSATSolver(Options{SolutionLimit: 1, Seed: 1}).Solve(context.Background(), g, set)
	require.NoError(t, err)

	assert.Equal(t, StatusInfeasible, result.Status)
	assert.Empty(t, result.Solutions)
	assert.Nil(t, result.Best())
}

// 连续两个工作日各需 4 人，前一天的 2 名晚班护士次日休息，5 人不够
func TestSATSolver_FiveNursesInfeasible(t *testing.T) {
	g, set, _, _ := nursingModel(t, 5, [3]int{2, 2, 1})

	result, err := NewSATSolver(Options{SolutionLimit: 1, Seed: 7, Timeout: 2 * time.Minute}).Solve(context.Background(), g, set)
	require.NoError(t, err)

	assert.Equal(t, StatusInfeasible, result.Status)
	assert.Equal(t, 1, result.Statistics.Conflicts)
}

func TestSATSolver_SameSeedSameOutcome(t *testing.T) {
	g, set, _, _ := nursingModel(t, 8, [3]int{2, 2, 1})
	opts := Options{SolutionLimit: 1, Seed: 20260601}

	first, err := NewSATSolver(opts).Solve(context.Background(), g, set)
	require.NoError(t, err)
	second, err := NewSATSolver(opts).Solve(context.Background(), g, set)
	require.NoError(t, err)

	require.Equal(t, StatusFeasible, first.Status)
	require.Equal(t, StatusFeasible, second.Status)
	assert.Equal(t, first.Best().Values, second.Best().Values)
}

func TestSATSolver_SolutionLimit(t *testing.T) {
	g := grid.New([]*model.Nurse{{BaseModel: model.NewBaseModel()}}, june2026)
	vars := []int{
		g.Add(0, 0, model.ShiftDay),
		g.Add(0, 0, model.ShiftEvening),
		g.Add(0, 0, model.ShiftFull),
	}
	set := constraint.NewSet()
	set.Exactly("one", vars, 1)

	t.Run("上限内全部枚举", func(t *testing.T) {
		result, err := NewSATSolver(Options{SolutionLimit: 10, Seed: 3}).Solve(context.Background(), g, set)
		require.NoError(t, err)

		assert.Equal(t, StatusFeasible, result.Status)
		require.Len(t, result.Solutions, 3)
		seen := make(map[int]bool)
		for _, sol := range result.Solutions {
			trues := sol.TrueVars()
			require.Len(t, trues, 1)
			seen[trues[0]] = true
		}
		assert.Len(t, seen, 3)
		// 第四轮证明已无更多解
		assert.Equal(t, 4, result.Statistics.Branches)
		assert.Equal(t, 1, result.Statistics.Conflicts)
	})

	t.Run("达到上限即停止", func(t *testing.T) {
		result, err := NewSATSolver(Options{SolutionLimit: 2, Seed: 3}).Solve(context.Background(), g, set)
		require.NoError(t, err)

		assert.Len(t, result.Solutions, 2)
		assert.Equal(t, 2, result.Statistics.Branches)
		assert.Equal(t, 0, result.Statistics.Conflicts)
	})

	t.Run("上限为零按一处理", func(t *testing.T) {
		result, err := NewSATSolver(Options{Seed: 3}).Solve(context.Background(), g, set)
		require.NoError(t, err)
		assert.Len(t, result.Solutions, 1)
	})
}

func TestSATSolver_WeightedLinear(t *testing.T) {
	g := grid.New([]*model.Nurse{{BaseModel: model.NewBaseModel()}}, june2026)
	day := g.Add(0, 0, model.ShiftDay)
	full := g.Add(0, 1, model.ShiftFull)

	tests := []struct {
		name     string
		linear   constraint.Linear
		expected Status
	}{
		{"8x+24y>=30 需要两个都为真", constraint.Linear{Terms: []constraint.Term{{Var: day, Coef: 8}, {Var: full, Coef: 24}}, Op: constraint.OpGE, RHS: 30}, StatusFeasible},
		{"8x+24y>=40 无解", constraint.Linear{Terms: []constraint.Term{{Var: day, Coef: 8}, {Var: full, Coef: 24}}, Op: constraint.OpGE, RHS: 40}, StatusInfeasible},
		{"8x+24y==12 无法整除", constraint.Linear{Terms: []constraint.Term{{Var: day, Coef: 8}, {Var: full, Coef: 24}}, Op: constraint.OpEQ, RHS: 12}, StatusInfeasible},
		{"8x+24y==24", constraint.Linear{Terms: []constraint.Term{{Var: day, Coef: 8}, {Var: full, Coef: 24}}, Op: constraint.OpEQ, RHS: 24}, StatusFeasible},
		{"空约束 ==0", constraint.Linear{Op: constraint.OpEQ, RHS: 0}, StatusFeasible},
		{"空约束 >=1", constraint.Linear{Op: constraint.OpGE, RHS: 1}, StatusInfeasible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := constraint.NewSet()
			set.AddLinear(tt.linear)

			result, err := NewSATSolver(Options{SolutionLimit: 1, Seed: 1}).Solve(context.Background(), g, set)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Status)
			if result.Status == StatusFeasible {
				assert.True(t, tt.linear.Holds(result.Best().Value))
			}
		})
	}
}

func TestSATSolver_ForcedTermsDropped(t *testing.T) {
	g := grid.New([]*model.Nurse{{BaseModel: model.NewBaseModel()}}, june2026)
	a := g.Add(0, 0, model.ShiftDay)
	b := g.Add(0, 1, model.ShiftDay)

	set := constraint.NewSet()
	set.Forbid(a)
	set.AtLeast("both", []int{a, b}, 2)

	result, err := NewSATSolver(Options{Seed: 1}).Solve(context.Background(), g, set)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, result.Status)
	assert.Equal(t, 0, result.Statistics.Branches)
}

func TestSATSolver_InvalidInput(t *testing.T) {
	g := grid.New([]*model.Nurse{{BaseModel: model.NewBaseModel()}}, june2026)
	v := g.Add(0, 0, model.ShiftDay)

	set := constraint.NewSet()
	set.AddClause(constraint.Pos(v + 5))
	_, err := NewSATSolver(Options{Seed: 1}).Solve(context.Background(), g, set)
	assert.Error(t, err)

	set = constraint.NewSet()
	set.AddLinear(constraint.Linear{Name: "neg", Terms: []constraint.Term{{Var: v, Coef: -8}}, Op: constraint.OpGE, RHS: 1})
	_, err = NewSATSolver(Options{Seed: 1}).Solve(context.Background(), g, set)
	assert.Error(t, err)
}

func TestSATSolver_CancelledContext(t *testing.T) {
	g, set, _, _ := nursingModel(t, 8, [3]int{2, 2, 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewSATSolver(Options{SolutionLimit: 1, Seed: 1}).Solve(ctx, g, set)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Empty(t, result.Solutions)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 1, opts.SolutionLimit)
	assert.NotZero(t, opts.Seed)
	assert.Zero(t, opts.Timeout)
}
