package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/internal/lock"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/logger"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/roster"
	"github.com/paiban/nurse-roster/pkg/scheduler/solver"
)

// Planner 单科室排班
type Planner interface {
	PlanDepartment(ctx context.Context, dept *model.Department, period model.Period, opts roster.RunOptions) (*roster.Report, error)
	DefaultRunOptions() roster.RunOptions
}

// DepartmentFinder 查询科室
type DepartmentFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Department, error)
}

// RosterHandler 排班生成处理器
type RosterHandler struct {
	planner Planner
	depts   DepartmentFinder
	locker  lock.Locker
	loc     *time.Location
	now     func() time.Time
}

// NewRosterHandler 创建排班生成处理器
// 发布前持有与月度任务相同的运行锁，locker 为 nil 时使用进程内锁
func NewRosterHandler(planner Planner, depts DepartmentFinder, locker lock.Locker, loc *time.Location) *RosterHandler {
	if loc == nil {
		loc = time.UTC
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &RosterHandler{planner: planner, depts: depts, locker: locker, loc: loc, now: time.Now}
}

// GenerateRequest 手动生成排班请求
// 未指定年月时生成下个月
type GenerateRequest struct {
	DepartmentID   string `json:"department_id" validate:"required,uuid"`
	Year           int    `json:"year" validate:"omitempty,min=2000,max=2100"`
	Month          int    `json:"month" validate:"omitempty,min=1,max=12"`
	Seed           *int64 `json:"seed,omitempty"`
	SolutionLimit  int    `json:"solution_limit" validate:"omitempty,min=1,max=100"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"omitempty,min=1,max=3600"`
	DryRun         bool   `json:"dry_run"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Report  *roster.Report `json:"report"`
}

// period 请求对应的排班月份
func (req *GenerateRequest) period(now time.Time) (model.Period, error) {
	if req.Year == 0 && req.Month == 0 {
		return model.NextPeriod(now), nil
	}
	if req.Year == 0 || req.Month == 0 {
		return model.Period{}, apperrors.New(apperrors.CodeInvalidTimeRange, "year 与 month 需同时指定")
	}
	return model.NewPeriod(req.Year, time.Month(req.Month)), nil
}

// Generate 为一个科室生成排班
func (h *RosterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	period, err := req.period(h.now().In(h.loc))
	if err != nil {
		respondError(w, r, err)
		return
	}

	deptID := uuid.MustParse(req.DepartmentID)
	dept, err := h.depts.GetByID(r.Context(), deptID)
	if err != nil {
		respondError(w, r, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询科室失败"))
		return
	}
	if dept == nil {
		respondError(w, r, apperrors.NotFound("科室", req.DepartmentID))
		return
	}

	opts := h.planner.DefaultRunOptions()
	opts.DryRun = opts.DryRun || req.DryRun
	if req.Seed != nil {
		opts.Solver.Seed = *req.Seed
	}
	if req.SolutionLimit > 0 {
		opts.Solver.SolutionLimit = req.SolutionLimit
	}
	if req.TimeoutSeconds > 0 {
		opts.Solver.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	ctx := logger.ContextWithDepartmentID(r.Context(), req.DepartmentID)
	if !opts.DryRun {
		release, err := h.locker.Acquire(ctx, lock.RunKey(period))
		if err != nil {
			respondError(w, r, err)
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.WithContext(ctx).Warn().Err(err).Str("period", period.String()).Msg("释放运行锁失败")
			}
		}()
	}

	report, err := h.planner.PlanDepartment(ctx, dept, period, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := GenerateResponse{
		Success: report.Status == string(solver.StatusFeasible),
		Report:  report,
	}
	switch {
	case report.Skipped:
		resp.Message = report.SkipReason
	case report.Status == string(solver.StatusInfeasible):
		resp.Message = apperrors.NoFeasibleSolution(fmt.Sprintf("科室 %s 在 %s 没有满足全部硬约束的排班", dept.Name, period)).Message
	}

	respondJSON(w, http.StatusOK, resp)
}
