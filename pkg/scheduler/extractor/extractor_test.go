package extractor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
	"github.com/paiban/nurse-roster/pkg/scheduler/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	nurse := &model.Nurse{BaseModel: model.NewBaseModel(), FirstName: "Ayşe", LastName: "Yılmaz"}
	g := grid.New([]*model.Nurse{nurse}, model.NewPeriod(2026, time.June))

	day := g.Add(0, 4, model.ShiftDay)        // 6月5日 周五
	evening := g.Add(0, 1, model.ShiftEvening) // 6月2日
	full := g.Add(0, 5, model.ShiftFull)       // 6月6日 周六
	g.Add(0, 8, model.ShiftDay)

	values := make([]bool, g.NumVars())
	values[day], values[evening], values[full] = true, true, true

	dept := uuid.New()
	shifts := New(time.UTC).Extract(g, &solver.Solution{Values: values}, dept)
	require.Len(t, shifts, 3)

	tests := []struct {
		name  string
		shift *model.Shift
		typ   model.ShiftType
		start time.Time
		end   time.Time
		hours float64
	}{
		{"晚班次日 08:00 结束", shifts[0], model.ShiftEvening,
			time.Date(2026, 6, 2, 16, 0, 0, 0, time.UTC), time.Date(2026, 6, 3, 8, 0, 0, 0, time.UTC), 16},
		{"白班当天 16:00 结束", shifts[1], model.ShiftDay,
			time.Date(2026, 6, 5, 8, 0, 0, 0, time.UTC), time.Date(2026, 6, 5, 16, 0, 0, 0, time.UTC), 8},
		{"周六全天班到周日 08:00", shifts[2], model.ShiftFull,
			time.Date(2026, 6, 6, 8, 0, 0, 0, time.UTC), time.Date(2026, 6, 7, 8, 0, 0, 0, time.UTC), 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.shift.ShiftType)
			assert.True(t, tt.start.Equal(tt.shift.StartDate), "start %s", tt.shift.StartDate)
			assert.True(t, tt.end.Equal(tt.shift.EndDate), "end %s", tt.shift.EndDate)
			assert.Equal(t, tt.hours, tt.shift.WorkingHours())
			assert.Equal(t, nurse.ID, tt.shift.NurseID)
			assert.Equal(t, dept, tt.shift.DepartmentID)
			assert.NotEqual(t, uuid.Nil, tt.shift.ID)
		})
	}
}

func TestExtract_MonthEndRollsOver(t *testing.T) {
	nurse := &model.Nurse{BaseModel: model.NewBaseModel()}
	g := grid.New([]*model.Nurse{nurse}, model.NewPeriod(2026, time.May))
	v := g.Add(0, 30, model.ShiftFull) // 5月31日 周日

	values := make([]bool, g.NumVars())
	values[v] = true

	shifts := New(nil).Extract(g, &solver.Solution{Values: values}, uuid.New())
	require.Len(t, shifts, 1)
	assert.Equal(t, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), shifts[0].EndDate)
}

func TestExtract_Location(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		t.Skip("tzdata not available")
	}

	nurse := &model.Nurse{BaseModel: model.NewBaseModel()}
	g := grid.New([]*model.Nurse{nurse}, model.NewPeriod(2026, time.June))
	v := g.Add(0, 0, model.ShiftDay)
	values := make([]bool, g.NumVars())
	values[v] = true

	shifts := New(loc).Extract(g, &solver.Solution{Values: values}, uuid.New())
	require.Len(t, shifts, 1)
	assert.Equal(t, 8, shifts[0].StartDate.Hour())
	assert.Equal(t, loc, shifts[0].StartDate.Location())
	// UTC+3
	assert.Equal(t, 5, shifts[0].StartDate.UTC().Hour())
}

func TestExtract_NoTrueDecisions(t *testing.T) {
	nurse := &model.Nurse{BaseModel: model.NewBaseModel()}
	g := grid.New([]*model.Nurse{nurse}, model.NewPeriod(2026, time.June))
	g.Add(0, 0, model.ShiftDay)

	shifts := New(time.UTC).Extract(g, &solver.Solution{Values: make([]bool, g.NumVars())}, uuid.New())
	assert.Empty(t, shifts)
}
