// Package roster 按科室生成并发布月度排班
package roster

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
)

// DepartmentSource 科室来源
type DepartmentSource interface {
	ListDepartments(ctx context.Context) ([]*model.Department, error)
}

// NurseSource 护士来源
type NurseSource interface {
	ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.Nurse, error)
}

// StaffingSource 科室人数约束来源
// 未配置时返回 nil, nil
type StaffingSource interface {
	FindByDepartment(ctx context.Context, departmentID uuid.UUID) (*model.StaffingConstraint, error)
}

// Publisher 排班发布
type Publisher interface {
	SaveAll(ctx context.Context, shifts []*model.Shift) ([]*model.Shift, error)
}

// MetricsRecorder 记录科室运行结果
type MetricsRecorder interface {
	RecordDepartmentRun(status string, wallTime time.Duration, shifts int, failed bool)
}
