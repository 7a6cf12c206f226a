package builtin

import (
	"testing"

	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
)

func TestDefaults_FeasibleRosterPasses(t *testing.T) {
	g, ctx := evalContext(t, juneRoster)
	m := NewNursingRuleSet()

	if m.Count() != 5 {
		t.Fatalf("Expected 5 default constraints, got %d", m.Count())
	}

	result := m.Evaluate(ctx)
	if !result.IsValid {
		t.Fatalf("Expected valid roster, got %+v", result.HardViolations)
	}

	set, err := m.Apply(g, juneStaffing)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !set.Satisfied(ctx.Values) {
		t.Error("Encoded set should accept the feasible roster")
	}
}

func TestDefaults_EncodingMatchesEvaluate(t *testing.T) {
	m := NewNursingRuleSet()

	tests := []struct {
		name string
		rows []string
		typ  constraint.Type
	}{
		// 护士0 6月2日为晚班，次日改为白班
		{"晚班后次日排班", withCell(juneRoster, 0, 2, 'D'), constraint.TypeRestAfterEvening},
		// 护士4 6月6日(周六)全天班，6月8日改为白班
		{"全天班后第二天排班", withCell(juneRoster, 4, 7, 'D'), constraint.TypeRestAfterFull},
		// 周六改为白班
		{"周末排白班", withCell(juneRoster, 4, 5, 'D'), constraint.TypeShiftCoverage},
		// 工作日安排全天班
		{"工作日全天班", withCell(juneRoster, 4, 4, 'F'), constraint.TypeShiftCoverage},
		// 6月1日只有护士3和护士7上晚班，去掉护士3后晚班不足；其工时仍为 176
		{"工作日晚班人数不足", withCell(juneRoster, 3, 0, '.'), constraint.TypeShiftCoverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ctx := evalContext(t, tt.rows)

			result := m.Evaluate(ctx)
			if result.IsValid {
				t.Fatal("Expected invalid roster")
			}
			found := false
			for _, v := range result.HardViolations {
				if v.ConstraintType == tt.typ {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected violation of %s, got %+v", tt.typ, result.HardViolations)
			}

			set, err := m.Apply(g, juneStaffing)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if set.Satisfied(ctx.Values) {
				t.Error("Encoded set should reject the roster")
			}
		})
	}
}

func TestMutualExclusionConstraint(t *testing.T) {
	c := NewMutualExclusionConstraint()
	g := juneGrid(t)

	set := constraint.NewSet()
	if err := c.Apply(g, juneStaffing, set); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	// 每人每天 3 对互斥
	if want := len(g.Nurses) * g.Days * 3; set.NumClauses() != want {
		t.Errorf("Expected %d clauses, got %d", want, set.NumClauses())
	}

	v0, _ := g.Decision(0, 0, model.ShiftDay)
	v1, _ := g.Decision(0, 0, model.ShiftEvening)
	_, ctx := evalContext(t, juneRoster)
	ctx.Values = func(v int) bool { return v == v0 || v == v1 }

	valid, details := c.Evaluate(ctx)
	if valid || len(details) != 1 {
		t.Fatalf("Expected 1 violation, got valid=%v details=%d", valid, len(details))
	}
	if details[0].Date != "2026-06-01" || details[0].Severity != "error" {
		t.Errorf("unexpected detail %+v", details[0])
	}
}

func TestShiftCoverageConstraint_WeekendExact(t *testing.T) {
	c := NewShiftCoverageConstraint()

	// 6月6日(周六)再加一名全天班，超过恰好 1 人
	rows := withCell(juneRoster, 0, 5, 'F')
	_, ctx := evalContext(t, rows)

	valid, details := c.Evaluate(ctx)
	if valid {
		t.Fatal("Expected weekend crew size violation")
	}
	if details[0].Date != "2026-06-06" {
		t.Errorf("Expected violation on 2026-06-06, got %s", details[0].Date)
	}
}

func TestShiftCoverageConstraint_NegativeStaffing(t *testing.T) {
	c := NewShiftCoverageConstraint()
	bad := &model.StaffingConstraint{MinNursesPerShift: [3]int{2, -1, 1}}

	if err := c.Apply(juneGrid(t), bad, constraint.NewSet()); err == nil {
		t.Error("Expected error for negative staffing")
	}
}

func TestRestAfterShiftConstraint_MonthEnd(t *testing.T) {
	c := NewRestAfterShiftConstraint(model.ShiftFull, 2)
	g := juneGrid(t)

	set := constraint.NewSet()
	if err := c.Apply(g, juneStaffing, set); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for _, clause := range set.Clauses {
		for _, l := range clause {
			if l.Var < 0 || l.Var >= g.NumVars() {
				t.Fatalf("clause references unknown var %d", l.Var)
			}
		}
	}

	// 6月30日上全天班，越过月末不产生约束
	_, ctx := evalContext(t, withCell(juneRoster, 0, 29, 'F'))
	if valid, _ := c.Evaluate(ctx); !valid {
		t.Error("Full shift on last day should not violate rest")
	}
}

func TestRestAfterShiftConstraint_Types(t *testing.T) {
	if NewRestAfterShiftConstraint(model.ShiftEvening, 1).Type() != constraint.TypeRestAfterEvening {
		t.Error("evening rest type mismatch")
	}
	if NewRestAfterShiftConstraint(model.ShiftFull, 2).Type() != constraint.TypeRestAfterFull {
		t.Error("full rest type mismatch")
	}
	if NewRestAfterShiftConstraint(model.ShiftDay, 1).Type() != constraint.Type("rest_after_day") {
		t.Error("day rest type mismatch")
	}
	if err := NewRestAfterShiftConstraint(model.ShiftDay, -1).Apply(juneGrid(t), juneStaffing, constraint.NewSet()); err == nil {
		t.Error("Expected error for negative rest days")
	}
}

func TestMinMonthlyHoursConstraint(t *testing.T) {
	c := NewMinMonthlyHoursConstraint()
	g := juneGrid(t)

	set := constraint.NewSet()
	if err := c.Apply(g, juneStaffing, set); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(set.Linears) != len(g.Nurses) {
		t.Fatalf("Expected one linear per nurse, got %d", len(set.Linears))
	}
	if set.Linears[0].RHS != 176 || set.Linears[0].Op != constraint.OpGE {
		t.Errorf("unexpected linear %+v", set.Linears[0])
	}

	// 护士2 工时 192，去掉两个晚班后 160
	rows := withCell(withCell(juneRoster, 2, 2, '.'), 2, 15, '.')
	_, ctx := evalContext(t, rows)
	valid, details := c.Evaluate(ctx)
	if valid || len(details) != 1 {
		t.Fatalf("Expected 1 violation, got valid=%v details=%d", valid, len(details))
	}
}
