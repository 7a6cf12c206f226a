package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
)

// NurseRepository 护士仓储
type NurseRepository struct {
	db DB
}

// NewNurseRepository 创建护士仓储
func NewNurseRepository(db DB) *NurseRepository {
	return &NurseRepository{db: db}
}

// Create 创建护士
func (r *NurseRepository) Create(ctx context.Context, nurse *model.Nurse) error {
	if nurse.ID == uuid.Nil {
		nurse.ID = uuid.New()
	}
	if nurse.Status == "" {
		nurse.Status = "active"
	}
	now := time.Now()
	nurse.CreatedAt = now
	nurse.UpdatedAt = now

	query := `
		INSERT INTO nurses (id, department_id, first_name, last_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		nurse.ID, nurse.DepartmentID, nurse.FirstName, nurse.LastName,
		nurse.Status, nurse.CreatedAt, nurse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建护士失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取护士
func (r *NurseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Nurse, error) {
	query := `
		SELECT id, department_id, first_name, last_name, status, created_at, updated_at
		FROM nurses
		WHERE id = $1 AND deleted_at IS NULL
	`

	nurse, err := scanNurse(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询护士失败: %w", err)
	}
	return nurse, nil
}

// ListByDepartment 列出科室护士（含非在职，由调用方过滤）
func (r *NurseRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.Nurse, error) {
	query := `
		SELECT id, department_id, first_name, last_name, status, created_at, updated_at
		FROM nurses
		WHERE department_id = $1 AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("查询科室护士失败: %w", err)
	}
	defer rows.Close()

	var nurses []*model.Nurse
	for rows.Next() {
		nurse, err := scanNurse(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描护士失败: %w", err)
		}
		nurses = append(nurses, nurse)
	}
	return nurses, rows.Err()
}

func scanNurse(row Scanner) (*model.Nurse, error) {
	n := &model.Nurse{}
	err := row.Scan(&n.ID, &n.DepartmentID, &n.FirstName, &n.LastName, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}
