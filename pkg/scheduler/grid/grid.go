// Package grid 构建护士排班决策网格
package grid

import (
	"context"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/model"
)

// AvailabilityResolver 查询护士某月可上班日期
// 返回 nil, nil 表示无记录，即整月可用
type AvailabilityResolver interface {
	Resolve(ctx context.Context, nurseID uuid.UUID, year int, month time.Month) (*model.Availability, error)
}

// Cell 网格单元
// Present 为 false 表示该决策在结构上不存在，与存在但取值为假不同
type Cell struct {
	Present bool
	Var     int
}

// Key 决策变量对应的坐标
type Key struct {
	Nurse int
	Day   int
	Shift model.ShiftType
}

// Grid 决策网格 (护士, 日, 班次)
type Grid struct {
	Period model.Period
	Nurses []*model.Nurse
	Days   int

	cells []Cell
	keys  []Key
}

// New 创建空网格，所有单元都不存在
func New(nurses []*model.Nurse, period model.Period) *Grid {
	days := period.Days()
	return &Grid{
		Period: period,
		Nurses: nurses,
		Days:   days,
		cells:  make([]Cell, len(nurses)*days*model.NumShiftTypes),
		keys:   make([]Key, 0, len(nurses)*days*model.NumShiftTypes),
	}
}

func (g *Grid) index(n, d int, s model.ShiftType) int {
	return (n*g.Days+d)*model.NumShiftTypes + int(s)
}

func (g *Grid) inRange(n, d int, s model.ShiftType) bool {
	return n >= 0 && n < len(g.Nurses) && d >= 0 && d < g.Days && s.Valid()
}

// Add 为 (n, d, s) 分配决策变量，已存在时返回原变量
func (g *Grid) Add(n, d int, s model.ShiftType) int {
	if !g.inRange(n, d, s) {
		return -1
	}
	i := g.index(n, d, s)
	if g.cells[i].Present {
		return g.cells[i].Var
	}
	v := len(g.keys)
	g.cells[i] = Cell{Present: true, Var: v}
	g.keys = append(g.keys, Key{Nurse: n, Day: d, Shift: s})
	return v
}

// Decision 返回 (n, d, s) 的决策变量，越界或不存在时 ok 为 false
func (g *Grid) Decision(n, d int, s model.ShiftType) (int, bool) {
	if !g.inRange(n, d, s) {
		return 0, false
	}
	c := g.cells[g.index(n, d, s)]
	return c.Var, c.Present
}

// Cell 返回单元，越界时返回不存在的单元
func (g *Grid) Cell(n, d int, s model.ShiftType) Cell {
	if !g.inRange(n, d, s) {
		return Cell{}
	}
	return g.cells[g.index(n, d, s)]
}

// DayDecisions 返回某护士某天存在的全部决策
func (g *Grid) DayDecisions(n, d int) []int {
	vars := make([]int, 0, model.NumShiftTypes)
	for _, s := range model.AllShiftTypes {
		if v, ok := g.Decision(n, d, s); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// Keys 返回变量到坐标的映射，下标即变量编号
func (g *Grid) Keys() []Key {
	return g.keys
}

// Key 返回变量 v 的坐标
func (g *Grid) Key(v int) Key {
	return g.keys[v]
}

// NumVars 决策变量数量
func (g *Grid) NumVars() int {
	return len(g.keys)
}

// MinimumHours 每名护士当月最低工时
func (g *Grid) MinimumHours() int {
	return g.Period.MinimumHours()
}

// Builder 决策网格构建器
type Builder struct {
	resolver AvailabilityResolver
}

// NewBuilder 创建构建器，resolver 为 nil 时所有护士整月可用
func NewBuilder(resolver AvailabilityResolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build 构建决策网格
// 每名护士只查询一次可用日期，不可上班的日子不分配变量
func (b *Builder) Build(ctx context.Context, nurses []*model.Nurse, period model.Period) (*Grid, error) {
	g := New(nurses, period)

	for n, nurse := range nurses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var avail *model.Availability
		if b.resolver != nil {
			a, err := b.resolver.Resolve(ctx, nurse.ID, period.Year, period.Month)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeModelBuildFailed, "查询护士可用日期失败").
					WithField("nurse_id", nurse.ID.String())
			}
			avail = a
		}

		for d := 0; d < g.Days; d++ {
			if !avail.Allows(period.DateString(d)) {
				continue
			}
			for _, s := range model.AllShiftTypes {
				g.Add(n, d, s)
			}
		}
	}

	return g, nil
}
