package grid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/model"
)

type fakeResolver struct {
	records map[uuid.UUID]*model.Availability
	calls   map[uuid.UUID]int
	err     error
}

func (f *fakeResolver) Resolve(ctx context.Context, nurseID uuid.UUID, year int, month time.Month) (*model.Availability, error) {
	if f.calls == nil {
		f.calls = make(map[uuid.UUID]int)
	}
	f.calls[nurseID]++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[nurseID], nil
}

func makeNurses(n int) []*model.Nurse {
	nurses := make([]*model.Nurse, n)
	for i := range nurses {
		nurses[i] = &model.Nurse{BaseModel: model.NewBaseModel(), FirstName: "N"}
	}
	return nurses
}

var june2026 = model.NewPeriod(2026, time.June)

func TestBuild_NoRecordMeansFullyAvailable(t *testing.T) {
	nurses := makeNurses(3)
	g, err := NewBuilder(&fakeResolver{}).Build(context.Background(), nurses, june2026)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if g.Days != 30 {
		t.Errorf("Expected 30 days, got %d", g.Days)
	}
	if g.NumVars() != 3*30*3 {
		t.Errorf("Expected %d vars, got %d", 3*30*3, g.NumVars())
	}
	if g.MinimumHours() != 176 {
		t.Errorf("Expected minimum 176 hours, got %d", g.MinimumHours())
	}
}

func TestBuild_ResolvesEachNurseOnce(t *testing.T) {
	nurses := makeNurses(4)
	r := &fakeResolver{}
	if _, err := NewBuilder(r).Build(context.Background(), nurses, june2026); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, n := range nurses {
		if r.calls[n.ID] != 1 {
			t.Errorf("nurse %s resolved %d times", n.ID, r.calls[n.ID])
		}
	}
}

func TestBuild_SkipsUnavailableDays(t *testing.T) {
	nurses := makeNurses(2)
	r := &fakeResolver{records: map[uuid.UUID]*model.Availability{
		nurses[0].ID: model.NewAvailability(nurses[0].ID, june2026, []string{"2026-06-01", "2026-06-15"}),
		nurses[1].ID: model.NewAvailability(nurses[1].ID, june2026, []string{}),
	}}

	g, err := NewBuilder(r).Build(context.Background(), nurses, june2026)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if g.NumVars() != 2*3 {
		t.Errorf("Expected 6 vars, got %d", g.NumVars())
	}

	for _, s := range model.AllShiftTypes {
		if _, ok := g.Decision(0, 0, s); !ok {
			t.Errorf("day 0 shift %s should be present", s)
		}
		if _, ok := g.Decision(0, 14, s); !ok {
			t.Errorf("day 14 shift %s should be present", s)
		}
		if _, ok := g.Decision(0, 1, s); ok {
			t.Errorf("day 1 shift %s should be absent", s)
		}
	}

	for d := 0; d < g.Days; d++ {
		if len(g.DayDecisions(1, d)) != 0 {
			t.Fatalf("nurse 1 should have no decisions on day %d", d)
		}
	}
}

func TestBuild_ResolverError(t *testing.T) {
	r := &fakeResolver{err: errors.New("connection refused")}
	_, err := NewBuilder(r).Build(context.Background(), makeNurses(1), june2026)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !apperrors.Is(err, apperrors.CodeModelBuildFailed) {
		t.Errorf("Expected MODEL_BUILD_FAILED, got %s", apperrors.GetCode(err))
	}
}

func TestGrid_DecisionOutOfRange(t *testing.T) {
	g, _ := NewBuilder(nil).Build(context.Background(), makeNurses(1), june2026)

	cases := []struct {
		name  string
		n, d  int
		shift model.ShiftType
	}{
		{"负护士", -1, 0, model.ShiftDay},
		{"越界护士", 1, 0, model.ShiftDay},
		{"越界日期", 0, 30, model.ShiftDay},
		{"d+2 越界", 0, 31, model.ShiftFull},
		{"非法班次", 0, 0, model.ShiftType(3)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := g.Decision(tc.n, tc.d, tc.shift); ok {
				t.Error("Expected absent")
			}
			if g.Cell(tc.n, tc.d, tc.shift).Present {
				t.Error("Expected absent cell")
			}
		})
	}
}

func TestGrid_KeysRoundTrip(t *testing.T) {
	g, _ := NewBuilder(nil).Build(context.Background(), makeNurses(2), june2026)

	for v, k := range g.Keys() {
		got, ok := g.Decision(k.Nurse, k.Day, k.Shift)
		if !ok || got != v {
			t.Fatalf("var %d maps to %+v but Decision returned %d, %v", v, k, got, ok)
		}
	}
}

func TestGrid_AddIdempotent(t *testing.T) {
	g := New(makeNurses(1), june2026)
	a := g.Add(0, 3, model.ShiftEvening)
	b := g.Add(0, 3, model.ShiftEvening)
	if a != b || g.NumVars() != 1 {
		t.Errorf("Add should be idempotent: %d %d vars=%d", a, b, g.NumVars())
	}
	if g.Add(0, 99, model.ShiftDay) != -1 {
		t.Error("Add out of range should return -1")
	}
}

func TestBuild_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBuilder(nil).Build(ctx, makeNurses(1), june2026); err == nil {
		t.Error("Expected context error")
	}
}
