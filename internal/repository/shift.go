package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
)

// shiftColumns 每条班次插入的列数
const shiftColumns = 8

// shiftBatchSize 单条 INSERT 的最大行数
const shiftBatchSize = 500

// ShiftRepository 班次仓储，同时作为排班发布器
type ShiftRepository struct {
	db  Transactor
	loc *time.Location
}

// NewShiftRepository 创建班次仓储
// loc 用于按自然月查询
func NewShiftRepository(db Transactor, loc *time.Location) *ShiftRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &ShiftRepository{db: db, loc: loc}
}

// SaveAll 在一个事务内发布班次
// 先删除这些班次所属科室月份中已发布的班次再插入，重复发布同一月份时整月替换
func (r *ShiftRepository) SaveAll(ctx context.Context, shifts []*model.Shift) ([]*model.Shift, error) {
	if len(shifts) == 0 {
		return shifts, nil
	}

	now := time.Now()
	for _, s := range shifts {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.CreatedAt = now
		s.UpdatedAt = now
	}

	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		return replaceMonths(ctx, tx, shifts, r.loc)
	})
	if err != nil {
		return nil, fmt.Errorf("批量保存班次失败: %w", err)
	}

	return shifts, nil
}

// departmentMonth 科室 + 排班月份
type departmentMonth struct {
	DepartmentID uuid.UUID
	Period       model.Period
}

// publishedMonths 班次涉及的科室月份，按科室、年月排序
func publishedMonths(shifts []*model.Shift, loc *time.Location) []departmentMonth {
	seen := make(map[departmentMonth]struct{})
	result := make([]departmentMonth, 0, 1)
	for _, s := range shifts {
		start := s.StartDate.In(loc)
		key := departmentMonth{DepartmentID: s.DepartmentID, Period: model.NewPeriod(start.Year(), start.Month())}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.DepartmentID != b.DepartmentID {
			return a.DepartmentID.String() < b.DepartmentID.String()
		}
		if a.Period.Year != b.Period.Year {
			return a.Period.Year < b.Period.Year
		}
		return a.Period.Month < b.Period.Month
	})
	return result
}

// replaceMonths 删除涉及月份的旧班次，再分批插入
func replaceMonths(ctx context.Context, exec Execer, shifts []*model.Shift, loc *time.Location) error {
	for _, dm := range publishedMonths(shifts, loc) {
		from, to := monthRange(dm.Period.Year, dm.Period.Month, loc)
		if _, err := exec.ExecContext(ctx, deleteMonthQuery, dm.DepartmentID, from, to); err != nil {
			return fmt.Errorf("删除科室 %s %s 旧班次失败: %w", dm.DepartmentID, dm.Period, err)
		}
	}

	for start := 0; start < len(shifts); start += shiftBatchSize {
		end := start + shiftBatchSize
		if end > len(shifts) {
			end = len(shifts)
		}
		query, args := buildShiftInsert(shifts[start:end])
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// FindByNurse 查询护士某月的班次，按开始时间排序
func (r *ShiftRepository) FindByNurse(ctx context.Context, nurseID uuid.UUID, year int, month time.Month) ([]*model.Shift, error) {
	from, to := monthRange(year, month, r.loc)

	query := `
		SELECT s.id, s.nurse_id, s.department_id, s.shift_type, s.start_date, s.end_date,
			s.created_at, s.updated_at, n.first_name, n.last_name
		FROM shifts s
		JOIN nurses n ON n.id = s.nurse_id
		WHERE s.nurse_id = $1 AND s.start_date >= $2 AND s.start_date < $3
		ORDER BY s.start_date
	`

	rows, err := r.db.QueryContext(ctx, query, nurseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("查询护士班次失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.Shift
	for rows.Next() {
		s := &model.Shift{}
		if err := rows.Scan(
			&s.ID, &s.NurseID, &s.DepartmentID, &s.ShiftType, &s.StartDate, &s.EndDate,
			&s.CreatedAt, &s.UpdatedAt, &s.NurseFirstName, &s.NurseLastName,
		); err != nil {
			return nil, fmt.Errorf("扫描班次失败: %w", err)
		}
		shifts = append(shifts, s)
	}

	return shifts, rows.Err()
}

const deleteMonthQuery = `DELETE FROM shifts WHERE department_id = $1 AND start_date >= $2 AND start_date < $3`

// buildShiftInsert 生成多行 INSERT 语句及参数
func buildShiftInsert(shifts []*model.Shift) (string, []interface{}) {
	values := make([]string, 0, len(shifts))
	args := make([]interface{}, 0, len(shifts)*shiftColumns)
	argIndex := 1

	for _, s := range shifts {
		placeholders := make([]string, shiftColumns)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", argIndex+i)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			s.ID, s.NurseID, s.DepartmentID, int(s.ShiftType),
			s.StartDate, s.EndDate, s.CreatedAt, s.UpdatedAt,
		)
		argIndex += shiftColumns
	}

	query := fmt.Sprintf(`
		INSERT INTO shifts (
			id, nurse_id, department_id, shift_type, start_date, end_date, created_at, updated_at
		) VALUES %s
	`, strings.Join(values, ", "))

	return query, args
}
