// Package solver 提供排班求解器
package solver

import (
	"context"
	"time"

	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// Solver 求解器接口
type Solver interface {
	// Solve 在约束集合上搜索可行解
	Solve(ctx context.Context, g *grid.Grid, set *constraint.Set) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Status 求解状态
type Status string

const (
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusUnknown    Status = "UNKNOWN" // 超时或取消时尚未找到解
)

// Options 求解参数
type Options struct {
	SolutionLimit int           `json:"solution_limit"` // 找到多少个解后停止
	Seed          int64         `json:"seed"`           // 随机种子，决定搜索顺序
	Timeout       time.Duration `json:"timeout"`        // 0 表示不限时
}

// DefaultOptions 返回默认参数，种子取当前时间
func DefaultOptions() Options {
	return Options{
		SolutionLimit: 1,
		Seed:          time.Now().UnixNano(),
	}
}

func (o Options) limit() int {
	if o.SolutionLimit < 1 {
		return 1
	}
	return o.SolutionLimit
}

// Solution 一个可行解，下标为网格变量编号
type Solution struct {
	Values []bool `json:"-"`
}

// Value 变量 v 的取值
func (s *Solution) Value(v int) bool {
	return v >= 0 && v < len(s.Values) && s.Values[v]
}

// TrueVars 取值为真的变量
func (s *Solution) TrueVars() []int {
	vars := make([]int, 0)
	for v, ok := range s.Values {
		if ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// Result 求解结果
type Result struct {
	Status     Status      `json:"status"`
	Solutions  []*Solution `json:"-"`
	Statistics *Statistics `json:"statistics"`
}

// Best 返回第一个解，没有解时返回 nil
func (r *Result) Best() *Solution {
	if len(r.Solutions) == 0 {
		return nil
	}
	return r.Solutions[0]
}

// Statistics 搜索统计
// gini 不公开内部的冲突与决策计数，Conflicts 和 Branches 均以搜索轮次为单位：
// 每求出一个解或证明无解算一轮
type Statistics struct {
	Variables int           `json:"variables"`
	Clauses   int           `json:"clauses"`
	Solutions int           `json:"solutions"`
	Conflicts int           `json:"conflicts"` // 以无解结束的搜索轮数（0 或 1），不是 SAT 冲突数
	Branches  int           `json:"branches"`  // 搜索轮数，不是决策分支数
	WallTime  time.Duration `json:"wall_time"`
}
