package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
)

// DepartmentRepository 科室仓储
type DepartmentRepository struct {
	db DB
}

// NewDepartmentRepository 创建科室仓储
func NewDepartmentRepository(db DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create 创建科室
func (r *DepartmentRepository) Create(ctx context.Context, dept *model.Department) error {
	if dept.ID == uuid.Nil {
		dept.ID = uuid.New()
	}
	now := time.Now()
	dept.CreatedAt = now
	dept.UpdatedAt = now

	query := `
		INSERT INTO departments (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, dept.ID, dept.Name, dept.CreatedAt, dept.UpdatedAt); err != nil {
		return fmt.Errorf("创建科室失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取科室
func (r *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM departments
		WHERE id = $1 AND deleted_at IS NULL
	`

	dept, err := scanDepartment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询科室失败: %w", err)
	}
	return dept, nil
}

// ListDepartments 列出全部科室
func (r *DepartmentRepository) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM departments
		WHERE deleted_at IS NULL
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询科室列表失败: %w", err)
	}
	defer rows.Close()

	var depts []*model.Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描科室失败: %w", err)
		}
		depts = append(depts, dept)
	}
	return depts, rows.Err()
}

func scanDepartment(row Scanner) (*model.Department, error) {
	dept := &model.Department{}
	if err := row.Scan(&dept.ID, &dept.Name, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
		return nil, err
	}
	return dept, nil
}
