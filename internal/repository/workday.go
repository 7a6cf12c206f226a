package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paiban/nurse-roster/pkg/model"
)

// WorkDayRepository 护士可上班日期仓储
type WorkDayRepository struct {
	db DB
}

// NewWorkDayRepository 创建可上班日期仓储
func NewWorkDayRepository(db DB) *WorkDayRepository {
	return &WorkDayRepository{db: db}
}

// Resolve 查询护士某月的可上班日期
// 没有记录时返回 nil，表示整月可用
func (r *WorkDayRepository) Resolve(ctx context.Context, nurseID uuid.UUID, year int, month time.Month) (*model.Availability, error) {
	query := `
		SELECT work_dates
		FROM work_days
		WHERE nurse_id = $1 AND year = $2 AND month = $3
	`

	var dates pq.StringArray
	err := r.db.QueryRowContext(ctx, query, nurseID, year, int(month)).Scan(&dates)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询可上班日期失败: %w", err)
	}

	return model.NewAvailability(nurseID, model.NewPeriod(year, month), []string(dates)), nil
}

// Save 保存护士某月的可上班日期，覆盖已有记录
func (r *WorkDayRepository) Save(ctx context.Context, a *model.Availability) error {
	query := `
		INSERT INTO work_days (nurse_id, year, month, work_dates, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (nurse_id, year, month) DO UPDATE SET
			work_dates = EXCLUDED.work_dates,
			updated_at = EXCLUDED.updated_at
	`

	dates := a.WorkDates
	if dates == nil {
		dates = []string{}
	}

	_, err := r.db.ExecContext(ctx, query, a.NurseID, a.Year, a.Month, pq.Array(dates), time.Now())
	if err != nil {
		return fmt.Errorf("保存可上班日期失败: %w", err)
	}
	return nil
}
