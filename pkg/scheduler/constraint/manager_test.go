package constraint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

func testGrid(t *testing.T, nurses int) *grid.Grid {
	t.Helper()
	list := make([]*model.Nurse, nurses)
	for i := range list {
		list[i] = &model.Nurse{BaseModel: model.NewBaseModel()}
	}
	g, err := grid.NewBuilder(nil).Build(context.Background(), list, model.NewPeriod(2026, time.June))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func TestManager_Register(t *testing.T) {
	manager := NewManager()

	c := &MockConstraint{
		name:     "test",
		typ:      Type("test_type"),
		category: CategoryHard,
	}
	manager.Register(c)

	constraints := manager.GetAll()
	if len(constraints) != 1 {
		t.Errorf("Expected 1 constraint, got %d", len(constraints))
	}
}

func TestManager_RegisterReplacesSameType(t *testing.T) {
	manager := NewManager()

	manager.Register(&MockConstraint{name: "v1", typ: Type("same"), category: CategoryHard})
	manager.Register(&MockConstraint{name: "v2", typ: Type("same"), category: CategoryHard})

	if manager.Count() != 1 {
		t.Fatalf("Expected 1 constraint, got %d", manager.Count())
	}
	if manager.GetConstraint(Type("same")).Name() != "v2" {
		t.Error("Expected later registration to replace earlier one")
	}
}

func TestManager_OrderIndependent(t *testing.T) {
	a := &MockConstraint{name: "a", typ: Type("a"), category: CategoryHard, pass: true}
	b := &MockConstraint{name: "b", typ: Type("b"), category: CategoryHard, pass: true}
	s := &MockConstraint{name: "s", typ: Type("s"), category: CategorySoft, pass: true}

	m1 := NewManager()
	m1.Register(a)
	m1.Register(b)
	m1.Register(s)

	m2 := NewManager()
	m2.Register(s)
	m2.Register(b)
	m2.Register(a)

	got1, got2 := m1.GetAll(), m2.GetAll()
	for i := range got1 {
		if got1[i].Type() != got2[i].Type() {
			t.Fatalf("position %d: %s vs %s", i, got1[i].Type(), got2[i].Type())
		}
	}
	if got1[len(got1)-1].Category() != CategorySoft {
		t.Error("Expected soft constraints after hard ones")
	}
}

func TestManager_Unregister(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{name: "x", typ: Type("x"), category: CategoryHard})
	manager.Unregister(Type("x"))
	manager.Unregister(Type("missing"))

	if manager.Count() != 0 {
		t.Errorf("Expected 0 constraints, got %d", manager.Count())
	}
	if manager.GetConstraint(Type("x")) != nil {
		t.Error("Expected nil after unregister")
	}
}

func TestManager_Apply(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{name: "forbid0", typ: Type("forbid0"), category: CategoryHard, forbid: []int{0}})
	manager.Register(&MockConstraint{name: "forbid1", typ: Type("forbid1"), category: CategoryHard, forbid: []int{1}})

	g := testGrid(t, 1)
	staffing := &model.StaffingConstraint{MinNursesPerShift: [3]int{1, 1, 1}}

	set, err := manager.Apply(g, staffing)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if set.NumClauses() != 2 {
		t.Errorf("Expected 2 clauses, got %d", set.NumClauses())
	}
}

func TestManager_ApplyErrors(t *testing.T) {
	g := testGrid(t, 1)

	manager := NewManager()
	if _, err := manager.Apply(g, nil); err == nil {
		t.Error("Expected error for nil staffing")
	}

	boom := errors.New("boom")
	manager.Register(&MockConstraint{name: "bad", typ: Type("bad"), category: CategoryHard, applyErr: boom})
	_, err := manager.Apply(g, &model.StaffingConstraint{})
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped apply error, got %v", err)
	}
}

func TestManager_Evaluate(t *testing.T) {
	manager := NewManager()

	// 注册一个通过的约束
	pass := &MockConstraint{
		name:     "pass",
		typ:      Type("pass_type"),
		category: CategoryHard,
		pass:     true,
	}
	manager.Register(pass)

	ctx := NewContext(testGrid(t, 1), &model.StaffingConstraint{}, func(int) bool { return false })

	result := manager.Evaluate(ctx)
	if !result.IsValid {
		t.Error("Expected valid result")
	}

	manager.Register(&MockConstraint{name: "fail", typ: Type("fail"), category: CategoryHard})
	manager.Register(&MockConstraint{name: "soft", typ: Type("soft"), category: CategorySoft})

	result = manager.Evaluate(ctx)
	if result.IsValid {
		t.Error("Expected invalid result")
	}
	if len(result.HardViolations) != 1 || len(result.SoftViolations) != 1 {
		t.Errorf("Expected 1 hard and 1 soft violation, got %d/%d",
			len(result.HardViolations), len(result.SoftViolations))
	}
}

func TestManager_Clear(t *testing.T) {
	manager := NewManager()

	manager.Register(&MockConstraint{name: "test", typ: Type("test"), category: CategoryHard})
	manager.Clear()

	if len(manager.GetAll()) != 0 {
		t.Error("Expected 0 constraints after clear")
	}
}

func TestManager_Count(t *testing.T) {
	manager := NewManager()

	if manager.Count() != 0 {
		t.Error("Expected 0 count for empty manager")
	}

	manager.Register(&MockConstraint{name: "c1", typ: Type("c1"), category: CategoryHard})
	manager.Register(&MockConstraint{name: "c2", typ: Type("c2"), category: CategorySoft})

	if manager.Count() != 2 {
		t.Errorf("Expected 2 count, got %d", manager.Count())
	}
}

// MockConstraint 用于测试的模拟约束
type MockConstraint struct {
	name     string
	typ      Type
	category Category
	pass     bool
	forbid   []int
	applyErr error
}

func (m *MockConstraint) Name() string       { return m.name }
func (m *MockConstraint) Type() Type         { return m.typ }
func (m *MockConstraint) Category() Category { return m.category }

func (m *MockConstraint) Apply(g *grid.Grid, staffing *model.StaffingConstraint, set *Set) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	for _, v := range m.forbid {
		set.Forbid(v)
	}
	return nil
}

func (m *MockConstraint) Evaluate(ctx *Context) (bool, []ViolationDetail) {
	if m.pass {
		return true, nil
	}
	return false, []ViolationDetail{
		{ConstraintName: m.name, Message: "违反约束"},
	}
}
