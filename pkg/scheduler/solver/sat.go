package solver

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/paiban/nurse-roster/pkg/logger"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

const pollInterval = 10 * time.Millisecond

// SATSolver 基于 gini 的可满足性求解器
// 每次 Solve 都新建求解实例，不同科室之间没有共享状态
type SATSolver struct {
	opts Options
}

// NewSATSolver 创建求解器
func NewSATSolver(opts Options) *SATSolver {
	return &SATSolver{opts: opts}
}

// Name 返回求解器名称
func (s *SATSolver) Name() string {
	return "SATSolver"
}

// Options 返回求解参数
func (s *SATSolver) Options() Options {
	return s.opts
}

// Solve 搜索至多 SolutionLimit 个可行解
func (s *SATSolver) Solve(ctx context.Context, g *grid.Grid, set *constraint.Set) (*Result, error) {
	start := time.Now()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	result := &Result{
		Status: StatusUnknown,
		Statistics: &Statistics{
			Variables: g.NumVars(),
			Clauses:   set.NumClauses() + len(set.Linears),
		},
	}
	defer func() {
		result.Statistics.Solutions = len(result.Solutions)
		result.Statistics.WallTime = time.Since(start)
	}()

	m, err := encode(g, set, s.opts.Seed)
	if err != nil {
		return nil, err
	}
	if m.trivial {
		logger.Debug().Str("reason", m.reason).Msg("模型显然无解")
		result.Status = StatusInfeasible
		return result, nil
	}

	last := 0
	for len(result.Solutions) < s.opts.limit() {
		last = search(ctx, m.g)
		result.Statistics.Branches++

		if last != 1 {
			if last == -1 {
				result.Statistics.Conflicts++
			}
			break
		}

		sol := m.read()
		result.Solutions = append(result.Solutions, sol)
		m.block(sol)
	}

	switch {
	case len(result.Solutions) > 0:
		result.Status = StatusFeasible
	case last == -1:
		result.Status = StatusInfeasible
	default:
		result.Status = StatusUnknown
	}

	return result, nil
}

// search 运行一轮求解，返回 1 有解、-1 无解、0 被中止
func search(ctx context.Context, g *gini.Gini) int {
	if ctx.Done() == nil {
		return g.Solve()
	}
	if ctx.Err() != nil {
		return 0
	}

	sv := g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if res, done := sv.Test(); done {
			return res
		}
		select {
		case <-ctx.Done():
			return sv.Stop()
		case <-ticker.C:
		}
	}
}

// satModel 编码后的求解实例
type satModel struct {
	g       *gini.Gini
	lits    []z.Lit // 网格变量 -> gini 文字
	trivial bool
	reason  string
}

func (m *satModel) infeasible(reason string) {
	if !m.trivial {
		m.trivial = true
		m.reason = reason
	}
}

func (m *satModel) lit(l constraint.Lit) z.Lit {
	if l.Neg {
		return m.lits[l.Var].Not()
	}
	return m.lits[l.Var]
}

func (m *satModel) read() *Solution {
	values := make([]bool, len(m.lits))
	for v, lit := range m.lits {
		values[v] = m.g.Value(lit)
	}
	return &Solution{Values: values}
}

// block 排除已找到的解
func (m *satModel) block(sol *Solution) {
	for v, lit := range m.lits {
		if sol.Values[v] {
			m.g.Add(lit.Not())
		} else {
			m.g.Add(lit)
		}
	}
	m.g.Add(0)
}

// encode 把网格与约束集合编码为 gini 实例
// 决策变量按种子打乱后的顺序分配，种子决定搜索先找到哪个解
func encode(g *grid.Grid, set *constraint.Set, seed int64) (*satModel, error) {
	n := g.NumVars()
	c := logic.NewC()
	m := &satModel{g: gini.New(), lits: make([]z.Lit, n)}

	rng := rand.New(rand.NewSource(seed))
	for _, v := range rng.Perm(n) {
		m.lits[v] = c.Lit()
	}

	forced := make(map[int]bool)
	for _, clause := range set.Clauses {
		if len(clause) == 0 {
			m.infeasible("空子句")
			continue
		}
		for _, l := range clause {
			if l.Var < 0 || l.Var >= n {
				return nil, fmt.Errorf("子句引用了不存在的变量 %d", l.Var)
			}
		}
		if len(clause) == 1 && clause[0].Neg {
			forced[clause[0].Var] = true
		}
	}

	var roots []z.Lit
	for _, lin := range set.Linears {
		root, err := m.compileLinear(c, lin, forced)
		if err != nil {
			return nil, err
		}
		if root != z.LitNull {
			roots = append(roots, root)
		}
	}

	c.ToCnf(m.g)

	for _, clause := range set.Clauses {
		for _, l := range clause {
			m.g.Add(m.lit(l))
		}
		m.g.Add(0)
	}
	for _, root := range roots {
		m.g.Add(root)
		m.g.Add(0)
	}

	return m, nil
}

// compileLinear 把线性约束编译为基数约束电路
// 系数除以最大公约数后展开为重复文字；已被强制为假的项直接丢弃
func (m *satModel) compileLinear(c *logic.C, lin constraint.Linear, forced map[int]bool) (z.Lit, error) {
	div := 0
	for _, t := range lin.Terms {
		if t.Coef < 0 {
			return z.LitNull, fmt.Errorf("线性约束 %s 不支持负系数", lin.Name)
		}
		if t.Var < 0 || t.Var >= len(m.lits) {
			return z.LitNull, fmt.Errorf("线性约束 %s 引用了不存在的变量 %d", lin.Name, t.Var)
		}
		div = gcd(div, t.Coef)
	}

	if div == 0 {
		// 没有有效项，左边恒为 0
		if (lin.Op == constraint.OpGE && lin.RHS > 0) || (lin.Op == constraint.OpEQ && lin.RHS != 0) {
			m.infeasible(fmt.Sprintf("%s: 0 %s %d", lin.Name, lin.Op, lin.RHS))
		}
		return z.LitNull, nil
	}

	var ms []z.Lit
	for _, t := range lin.Terms {
		if t.Coef == 0 || forced[t.Var] {
			continue
		}
		for i := 0; i < t.Coef/div; i++ {
			ms = append(ms, m.lits[t.Var])
		}
	}

	var k int
	switch lin.Op {
	case constraint.OpGE:
		if lin.RHS <= 0 {
			return z.LitNull, nil
		}
		k = (lin.RHS + div - 1) / div
	case constraint.OpEQ:
		if lin.RHS < 0 || lin.RHS%div != 0 {
			m.infeasible(fmt.Sprintf("%s: 无法取到 %d", lin.Name, lin.RHS))
			return z.LitNull, nil
		}
		k = lin.RHS / div
	default:
		return z.LitNull, fmt.Errorf("线性约束 %s 比较符 %q 不支持", lin.Name, lin.Op)
	}

	if k > len(ms) {
		m.infeasible(fmt.Sprintf("%s: 至多 %d，需要 %d", lin.Name, len(ms), k))
		return z.LitNull, nil
	}

	if lin.Op == constraint.OpEQ && k == 0 {
		for _, lit := range ms {
			m.g.Add(lit.Not())
			m.g.Add(0)
		}
		return z.LitNull, nil
	}
	if k == len(ms) {
		for _, lit := range ms {
			m.g.Add(lit)
			m.g.Add(0)
		}
		return z.LitNull, nil
	}

	cs := c.CardSort(ms)
	if lin.Op == constraint.OpEQ {
		return c.And(cs.Geq(k), cs.Leq(k)), nil
	}
	return cs.Geq(k), nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
