package builtin

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// juneRoster 2026年6月 8 名护士的可行排班
// D 白班，E 晚班，F 全天班，. 休息；6月1日为周一
var juneRoster = []string{
	"DE.E...DE.E.F..DDDD..DE.DD..DE",
	"DDE.E..DDDDD..DDE.DF..DDDD..DD",
	"DDE.D.F..DDD..DE.E...E.E.E..E.",
	"E.DDD..E.E.E..DE.DE..DDDDD..E.",
	"DDDDDF..DDDD..DDDDD..DDDE.F..D",
	"DE.DE..DDDDD..E.DDD..E.E.E..DD",
	"DDDDD..DE.E..F..E.E..DE.E..F..",
	"E.DE...E.E.E..E.DE..F..DDD..DE",
}

var juneStaffing = &model.StaffingConstraint{MinNursesPerShift: [3]int{2, 2, 1}}

func juneGrid(t *testing.T) *grid.Grid {
	t.Helper()
	nurses := make([]*model.Nurse, len(juneRoster))
	for i := range nurses {
		nurses[i] = &model.Nurse{BaseModel: model.NewBaseModel()}
	}
	g, err := grid.NewBuilder(nil).Build(context.Background(), nurses, model.NewPeriod(2026, time.June))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

// rosterValues 把排班字符串转换为变量取值
func rosterValues(g *grid.Grid, rows []string) map[int]bool {
	values := make(map[int]bool)
	for n, row := range rows {
		for d, ch := range row {
			var s model.ShiftType
			switch ch {
			case 'D':
				s = model.ShiftDay
			case 'E':
				s = model.ShiftEvening
			case 'F':
				s = model.ShiftFull
			default:
				continue
			}
			if v, ok := g.Decision(n, d, s); ok {
				values[v] = true
			}
		}
	}
	return values
}

// withCell 返回修改了 (n, d) 的排班副本
func withCell(rows []string, n, d int, ch byte) []string {
	out := make([]string, len(rows))
	copy(out, rows)
	b := []byte(out[n])
	b[d] = ch
	out[n] = string(b)
	return out
}

func evalContext(t *testing.T, rows []string) (*grid.Grid, *constraint.Context) {
	t.Helper()
	g := juneGrid(t)
	values := rosterValues(g, rows)
	return g, constraint.NewContext(g, juneStaffing, func(v int) bool { return values[v] })
}
