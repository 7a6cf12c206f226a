package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
)

// StaffingRepository 科室班次人数约束仓储
type StaffingRepository struct {
	db DB
}

// NewStaffingRepository 创建人数约束仓储
func NewStaffingRepository(db DB) *StaffingRepository {
	return &StaffingRepository{db: db}
}

// FindByDepartment 查询科室人数约束，未配置时返回 nil, nil
func (r *StaffingRepository) FindByDepartment(ctx context.Context, departmentID uuid.UUID) (*model.StaffingConstraint, error) {
	query := `
		SELECT id, department_id, min_day, min_evening, min_full, created_at, updated_at
		FROM staffing_constraints
		WHERE department_id = $1
	`

	c := &model.StaffingConstraint{}
	err := r.db.QueryRowContext(ctx, query, departmentID).Scan(
		&c.ID, &c.DepartmentID,
		&c.MinNursesPerShift[model.ShiftDay],
		&c.MinNursesPerShift[model.ShiftEvening],
		&c.MinNursesPerShift[model.ShiftFull],
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询人数约束失败: %w", err)
	}
	return c, nil
}

// Save 保存人数约束，科室已有配置时覆盖
func (r *StaffingRepository) Save(ctx context.Context, c *model.StaffingConstraint) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := `
		INSERT INTO staffing_constraints (
			id, department_id, min_day, min_evening, min_full, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (department_id) DO UPDATE SET
			min_day = EXCLUDED.min_day,
			min_evening = EXCLUDED.min_evening,
			min_full = EXCLUDED.min_full,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.DepartmentID,
		c.MinNursesPerShift[model.ShiftDay],
		c.MinNursesPerShift[model.ShiftEvening],
		c.MinNursesPerShift[model.ShiftFull],
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存人数约束失败: %w", err)
	}
	return nil
}
