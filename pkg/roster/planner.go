package roster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/logger"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint/builtin"
	"github.com/paiban/nurse-roster/pkg/scheduler/extractor"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
	"github.com/paiban/nurse-roster/pkg/scheduler/solver"
	"github.com/paiban/nurse-roster/pkg/stats"
	"github.com/paiban/nurse-roster/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// Sources 排班所需的外部数据
type Sources struct {
	Departments  DepartmentSource
	Nurses       NurseSource
	Staffing     StaffingSource
	Availability grid.AvailabilityResolver
	Publisher    Publisher
}

// Options 运行参数
type Options struct {
	Solver      solver.Options
	Parallelism int            // 并行处理的科室数，<=1 时顺序执行
	DryRun      bool           // 只求解不发布
	Location    *time.Location // 班次时间所在时区
}

// RunOptions 单个科室的运行参数
type RunOptions struct {
	Solver solver.Options
	DryRun bool
}

// Planner 科室排班流水线
// 构建网格 → 编码约束 → 求解 → 提取 → 发布
type Planner struct {
	src       Sources
	opts      Options
	builder   *grid.Builder
	extractor *extractor.Extractor
	logger    *logger.RosterLogger
	metrics   MetricsRecorder
}

// NewPlanner 创建流水线
func NewPlanner(src Sources, opts Options) *Planner {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Planner{
		src:       src,
		opts:      opts,
		builder:   grid.NewBuilder(src.Availability),
		extractor: extractor.New(opts.Location),
		logger:    logger.NewRosterLogger(),
	}
}

// SetMetrics 设置指标记录器
func (p *Planner) SetMetrics(m MetricsRecorder) {
	p.metrics = m
}

// DefaultRunOptions 按全局配置生成单科室参数
// 未配置种子时每次运行按当前时间取种子
func (p *Planner) DefaultRunOptions() RunOptions {
	opts := RunOptions{Solver: p.opts.Solver, DryRun: p.opts.DryRun}
	if opts.Solver.Seed == 0 {
		opts.Solver.Seed = time.Now().UnixNano()
	}
	return opts
}

// PlanDepartment 为一个科室生成 period 月的排班
// 缺少人数约束时跳过，无解时不发布，均不视为错误
func (p *Planner) PlanDepartment(ctx context.Context, dept *model.Department, period model.Period, opts RunOptions) (*Report, error) {
	report := newReport(dept.ID, period)
	deptID := dept.ID.String()

	defer func() {
		if p.metrics != nil {
			p.metrics.RecordDepartmentRun(report.Status, report.WallTime, report.ShiftsPublished, report.Err != nil)
		}
	}()

	staffing, err := p.src.Staffing.FindByDepartment(ctx, dept.ID)
	if err != nil {
		report.fail(apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询科室人数约束失败"))
		return report, report.Err
	}
	if staffing == nil {
		report.skip(apperrors.NoStaffingConstraint(deptID).Message)
		p.logger.DepartmentSkipped(deptID, report.SkipReason)
		return report, nil
	}

	all, err := p.src.Nurses.ListByDepartment(ctx, dept.ID)
	if err != nil {
		report.fail(apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询科室护士失败"))
		return report, report.Err
	}
	nurses := activeNurses(all)
	p.logger.StartDepartment(deptID, period.String(), len(nurses), period.Days())

	g, err := p.builder.Build(ctx, nurses, period)
	if err != nil {
		report.fail(err)
		return report, err
	}

	rules := builtin.NewNursingRuleSet()
	set, err := rules.Apply(g, staffing)
	if err != nil {
		report.fail(apperrors.Wrap(err, apperrors.CodeModelBuildFailed, "编码约束失败"))
		return report, report.Err
	}
	p.logger.ModelBuilt(deptID, g.NumVars(), set.NumClauses(), len(set.Linears))

	result, err := solver.NewSATSolver(opts.Solver).Solve(ctx, g, set)
	if err != nil {
		report.fail(apperrors.Wrap(err, apperrors.CodeModelBuildFailed, "求解模型无效"))
		return report, report.Err
	}
	report.setSearch(result)
	p.logger.SolveComplete(deptID, report.Status, report.SolutionCount, report.ConflictCount, report.BranchCount, report.WallTime)

	sol := result.Best()
	if sol == nil {
		if result.Status == solver.StatusUnknown && ctx.Err() != nil {
			report.fail(apperrors.Wrap(ctx.Err(), apperrors.CodeSearchAborted, "搜索被中止"))
			return report, report.Err
		}
		return report, nil
	}

	shifts := p.extractor.Extract(g, sol, dept.ID)
	report.Shifts = shifts

	detector := validator.NewConflictDetector(&validator.DetectorConfig{
		MinRestHours:    validator.DefaultDetectorConfig().MinRestHours,
		MinMonthlyHours: g.MinimumHours(),
	})
	report.Warnings = detector.DetectAll(shifts, nurseIndex(nurses))
	for _, c := range report.Warnings {
		p.logger.ConstraintViolation(string(c.Type), c.Message)
	}
	report.Fairness = stats.NewFairnessAnalyzer(p.opts.Location).Analyze(shifts, nurses)
	report.Coverage = stats.NewCoverageAnalyzer(p.opts.Location).Analyze(period, shifts, staffing)

	if opts.DryRun {
		return report, nil
	}

	saved, err := p.src.Publisher.SaveAll(ctx, shifts)
	if err != nil {
		report.fail(apperrors.PublishFailed(deptID, err))
		return report, report.Err
	}
	report.ShiftsPublished = len(saved)
	p.logger.Published(deptID, len(saved))

	return report, nil
}

// RunMonth 为全部科室生成 now 下一个月的排班
// 单个科室失败或 panic 不影响其他科室
func (p *Planner) RunMonth(ctx context.Context, now time.Time) *RunSummary {
	period := model.NextPeriod(now.In(p.opts.Location))
	summary := &RunSummary{Period: period.String(), Started: time.Now()}
	defer func() { summary.Finished = time.Now() }()

	depts, err := p.src.Departments.ListDepartments(ctx)
	if err != nil {
		summary.Err = apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询科室失败")
		logger.Error().Err(err).Msg("查询科室失败")
		return summary
	}

	summary.Reports = p.runAll(ctx, depts, period)

	logger.Info().
		Str("period", summary.Period).
		Int("departments", len(depts)).
		Int("feasible", summary.Count(string(solver.StatusFeasible))).
		Int("infeasible", summary.Count(string(solver.StatusInfeasible))).
		Int("skipped", summary.Count(StatusSkipped)).
		Int("failed", summary.Failed()).
		Int("shifts_published", summary.ShiftsPublished()).
		Msg("月度排班完成")

	return summary
}

func (p *Planner) runAll(ctx context.Context, depts []*model.Department, period model.Period) []*Report {
	reports := make([]*Report, len(depts))
	opts := p.DefaultRunOptions()

	if p.opts.Parallelism <= 1 {
		for i, dept := range depts {
			reports[i] = p.runIsolated(ctx, dept, period, opts)
		}
		return reports
	}

	var g errgroup.Group
	g.SetLimit(p.opts.Parallelism)
	for i, dept := range depts {
		g.Go(func() error {
			reports[i] = p.runIsolated(ctx, dept, period, opts)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// runIsolated 运行单个科室，错误与 panic 只记录在报告中
func (p *Planner) runIsolated(ctx context.Context, dept *model.Department, period model.Period, opts RunOptions) (report *Report) {
	defer func() {
		if r := recover(); r != nil {
			report = newReport(dept.ID, period)
			report.fail(apperrors.New(apperrors.CodeInternal, fmt.Sprintf("科室排班异常: %v", r)))
			p.logger.DepartmentFailed(dept.ID.String(), report.Err)
		}
	}()

	report, err := p.PlanDepartment(ctx, dept, period, opts)
	if err != nil {
		p.logger.DepartmentFailed(dept.ID.String(), err)
	}
	return report
}

func activeNurses(nurses []*model.Nurse) []*model.Nurse {
	active := make([]*model.Nurse, 0, len(nurses))
	for _, n := range nurses {
		if n.IsActive() {
			active = append(active, n)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ID.String() < active[j].ID.String()
	})
	return active
}

func nurseIndex(nurses []*model.Nurse) map[uuid.UUID]*model.Nurse {
	m := make(map[uuid.UUID]*model.Nurse, len(nurses))
	for _, n := range nurses {
		m[n.ID] = n
	}
	return m
}
