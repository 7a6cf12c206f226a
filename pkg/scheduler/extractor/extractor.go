// Package extractor 把求解结果转换为班次记录
package extractor

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
	"github.com/paiban/nurse-roster/pkg/scheduler/solver"
)

// Extractor 班次提取器
type Extractor struct {
	Location *time.Location
}

// New 创建提取器，loc 为 nil 时使用 UTC
func New(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.UTC
	}
	return &Extractor{Location: loc}
}

// Extract 为每个取值为真的决策生成一条班次
// 开始时间为当天的班次开始时刻，8 小时班次当天结束，其余次日结束
func (e *Extractor) Extract(g *grid.Grid, sol *solver.Solution, departmentID uuid.UUID) []*model.Shift {
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}

	shifts := make([]*model.Shift, 0)
	for _, v := range sol.TrueVars() {
		if v >= g.NumVars() {
			continue
		}
		k := g.Key(v)
		nurse := g.Nurses[k.Nurse]

		day := g.Period.Date(k.Day, loc)
		start := time.Date(day.Year(), day.Month(), day.Day(), k.Shift.StartHour(), 0, 0, 0, loc)

		endDay := day
		if k.Shift.EndsNextDay() {
			endDay = day.AddDate(0, 0, 1)
		}
		end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), k.Shift.EndHour(), 0, 0, 0, loc)

		shifts = append(shifts, &model.Shift{
			BaseModel:      model.NewBaseModel(),
			NurseID:        nurse.ID,
			DepartmentID:   departmentID,
			ShiftType:      k.Shift,
			StartDate:      start,
			EndDate:        end,
			NurseFirstName: nurse.FirstName,
			NurseLastName:  nurse.LastName,
		})
	}

	sort.SliceStable(shifts, func(i, j int) bool {
		if !shifts[i].StartDate.Equal(shifts[j].StartDate) {
			return shifts[i].StartDate.Before(shifts[j].StartDate)
		}
		return shifts[i].NurseID.String() < shifts[j].NurseID.String()
	})

	return shifts
}
