package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/solver"
	"github.com/paiban/nurse-roster/pkg/stats"
	"github.com/paiban/nurse-roster/pkg/validator"
)

const (
	// StatusSkipped 科室被跳过
	StatusSkipped = "SKIPPED"
	// StatusFailed 求解前出错
	StatusFailed = "FAILED"
)

// Report 单个科室的运行记录
type Report struct {
	DepartmentID    uuid.UUID              `json:"department_id"`
	Period          string                 `json:"period"`
	Status          string                 `json:"status"`
	SolutionCount   int                    `json:"solution_count"`
	ConflictCount   int                    `json:"conflict_count"` // 以无解结束的搜索轮数
	BranchCount     int                    `json:"branch_count"`   // 搜索轮数
	WallTime        time.Duration          `json:"-"`
	WallTimeSeconds float64                `json:"wall_time_seconds"`
	ShiftsPublished int                    `json:"shifts_published"`
	Skipped         bool                   `json:"skipped"`
	SkipReason      string                 `json:"skip_reason,omitempty"`
	Warnings        []validator.Conflict   `json:"warnings,omitempty"`
	Fairness        *stats.FairnessMetrics `json:"fairness,omitempty"`
	Coverage        *stats.CoverageMetrics `json:"coverage,omitempty"`
	Shifts          []*model.Shift         `json:"shifts,omitempty"`
	Err             error                  `json:"-"`
	Error           string                 `json:"error,omitempty"`
}

func newReport(departmentID uuid.UUID, period model.Period) *Report {
	return &Report{
		DepartmentID: departmentID,
		Period:       period.String(),
		Status:       string(solver.StatusUnknown),
	}
}

func (r *Report) fail(err error) {
	if r.Status == string(solver.StatusUnknown) && r.BranchCount == 0 {
		r.Status = StatusFailed
	}
	r.Err = err
	r.Error = err.Error()
}

func (r *Report) skip(reason string) {
	r.Skipped = true
	r.SkipReason = reason
	r.Status = StatusSkipped
}

func (r *Report) setSearch(result *solver.Result) {
	r.Status = string(result.Status)
	r.SolutionCount = result.Statistics.Solutions
	r.ConflictCount = result.Statistics.Conflicts
	r.BranchCount = result.Statistics.Branches
	r.WallTime = result.Statistics.WallTime
	r.WallTimeSeconds = result.Statistics.WallTime.Seconds()
}

// RunSummary 一次月度运行的汇总
type RunSummary struct {
	Period   string    `json:"period"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Reports  []*Report `json:"reports"`
	Err      error     `json:"-"`
}

// Count 按状态统计科室数
func (s *RunSummary) Count(status string) int {
	n := 0
	for _, r := range s.Reports {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failed 出错的科室数
func (s *RunSummary) Failed() int {
	n := 0
	for _, r := range s.Reports {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// ShiftsPublished 发布的班次总数
func (s *RunSummary) ShiftsPublished() int {
	n := 0
	for _, r := range s.Reports {
		n += r.ShiftsPublished
	}
	return n
}
