package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthRange(t *testing.T) {
	ist, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	tests := []struct {
		name  string
		year  int
		month time.Month
		loc   *time.Location
		from  time.Time
		to    time.Time
	}{
		{"默认UTC", 2026, time.June, nil,
			time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"跨年", 2026, time.December, time.UTC,
			time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"伊斯坦布尔", 2026, time.February, ist,
			time.Date(2026, 2, 1, 0, 0, 0, 0, ist), time.Date(2026, 3, 1, 0, 0, 0, 0, ist)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := monthRange(tt.year, tt.month, tt.loc)
			assert.True(t, from.Equal(tt.from), "from = %v", from)
			assert.True(t, to.Equal(tt.to), "to = %v", to)
		})
	}
}

func TestBuildShiftInsert(t *testing.T) {
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	shifts := []*model.Shift{
		{BaseModel: model.NewBaseModel(), NurseID: uuid.New(), DepartmentID: uuid.New(),
			ShiftType: model.ShiftDay, StartDate: start, EndDate: start.Add(8 * time.Hour)},
		{BaseModel: model.NewBaseModel(), NurseID: uuid.New(), DepartmentID: uuid.New(),
			ShiftType: model.ShiftEvening, StartDate: start.Add(8 * time.Hour), EndDate: start.Add(24 * time.Hour)},
	}

	query, args := buildShiftInsert(shifts)

	require.Len(t, args, 2*shiftColumns)
	assert.Contains(t, query, "($1, $2, $3, $4, $5, $6, $7, $8), ($9, $10, $11, $12, $13, $14, $15, $16)")
	assert.Equal(t, 1, strings.Count(query, "INSERT INTO shifts"))
	assert.Equal(t, shifts[1].ID, args[shiftColumns])
	assert.Equal(t, int(model.ShiftEvening), args[shiftColumns+3])
}

// recordingExec 记录执行过的语句
type recordingExec struct {
	queries []string
	args    [][]interface{}
	failOn  int // 第几条语句返回错误，从1开始，0 表示不出错
}

func (e *recordingExec) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	e.queries = append(e.queries, query)
	e.args = append(e.args, args)
	if e.failOn == len(e.queries) {
		return nil, errors.New("exec failed")
	}
	return driver.RowsAffected(len(args) / shiftColumns), nil
}

func monthShifts(deptID uuid.UUID, month time.Month, days int) []*model.Shift {
	shifts := make([]*model.Shift, 0, days)
	for d := 1; d <= days; d++ {
		start := time.Date(2026, month, d, 8, 0, 0, 0, time.UTC)
		shifts = append(shifts, &model.Shift{BaseModel: model.NewBaseModel(), NurseID: uuid.New(),
			DepartmentID: deptID, ShiftType: model.ShiftDay, StartDate: start, EndDate: start.Add(8 * time.Hour)})
	}
	return shifts
}

func TestReplaceMonths_DeletesBeforeInsert(t *testing.T) {
	deptID := uuid.New()
	shifts := monthShifts(deptID, time.June, 3)
	exec := &recordingExec{}

	require.NoError(t, replaceMonths(context.Background(), exec, shifts, time.UTC))

	require.Len(t, exec.queries, 2)
	assert.Equal(t, deleteMonthQuery, exec.queries[0])
	assert.Equal(t, deptID, exec.args[0][0])
	assert.True(t, exec.args[0][1].(time.Time).Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, exec.args[0][2].(time.Time).Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, exec.queries[1], "INSERT INTO shifts")
	assert.Len(t, exec.args[1], 3*shiftColumns)
}

func TestReplaceMonths_RepublishSameMonth(t *testing.T) {
	deptID := uuid.New()
	exec := &recordingExec{}

	// 同一科室同一月份发布两次，每次都先清掉整月
	require.NoError(t, replaceMonths(context.Background(), exec, monthShifts(deptID, time.June, 2), time.UTC))
	require.NoError(t, replaceMonths(context.Background(), exec, monthShifts(deptID, time.June, 2), time.UTC))

	require.Len(t, exec.queries, 4)
	assert.Equal(t, deleteMonthQuery, exec.queries[0])
	assert.Equal(t, deleteMonthQuery, exec.queries[2])
	assert.Equal(t, exec.args[0], exec.args[2])
}

func TestReplaceMonths_BatchesAndErrors(t *testing.T) {
	deptID := uuid.New()
	shifts := monthShifts(deptID, time.June, 30)
	for len(shifts) <= shiftBatchSize {
		shifts = append(shifts, monthShifts(deptID, time.June, 30)...)
	}

	exec := &recordingExec{}
	require.NoError(t, replaceMonths(context.Background(), exec, shifts, time.UTC))
	assert.Len(t, exec.queries, 1+2, "一次删除加两批插入")

	failing := &recordingExec{failOn: 1}
	err := replaceMonths(context.Background(), failing, shifts, time.UTC)
	require.Error(t, err)
	assert.Len(t, failing.queries, 1, "删除失败后不再插入")
}

func TestPublishedMonths(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ist := time.FixedZone("UTC+3", 3*3600)

	shifts := append(monthShifts(a, time.June, 2), monthShifts(b, time.June, 1)...)
	// UTC 6月30日 22:00 在 UTC+3 是 7月1日
	late := time.Date(2026, 6, 30, 22, 0, 0, 0, time.UTC)
	shifts = append(shifts, &model.Shift{DepartmentID: a, StartDate: late, EndDate: late.Add(8 * time.Hour)})

	months := publishedMonths(shifts, ist)

	require.Len(t, months, 3)
	for i := 1; i < len(months); i++ {
		assert.NotEqual(t, months[i-1], months[i])
	}
	assert.Contains(t, months, departmentMonth{DepartmentID: a, Period: model.NewPeriod(2026, time.July)})
	assert.Contains(t, months, departmentMonth{DepartmentID: a, Period: model.NewPeriod(2026, time.June)})
	assert.Contains(t, months, departmentMonth{DepartmentID: b, Period: model.NewPeriod(2026, time.June)})
}
