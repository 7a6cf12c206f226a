package constraint

import "fmt"

// Lit 文字：变量或其否定
type Lit struct {
	Var int
	Neg bool
}

// Pos 变量的正文字
func Pos(v int) Lit { return Lit{Var: v} }

// Not 变量的负文字
func Not(v int) Lit { return Lit{Var: v, Neg: true} }

// Negate 取反
func (l Lit) Negate() Lit { return Lit{Var: l.Var, Neg: !l.Neg} }

func (l Lit) String() string {
	if l.Neg {
		return fmt.Sprintf("¬x%d", l.Var)
	}
	return fmt.Sprintf("x%d", l.Var)
}

// Op 线性约束比较符
type Op string

const (
	OpGE Op = ">="
	OpEQ Op = "=="
)

// Term 线性项 Coef·x
type Term struct {
	Var  int
	Coef int
}

// Linear 线性约束 Σ Coef·x Op RHS
type Linear struct {
	Name  string
	Terms []Term
	Op    Op
	RHS   int
}

// Holds 在给定取值下线性约束是否成立
func (l Linear) Holds(values func(v int) bool) bool {
	sum := 0
	for _, t := range l.Terms {
		if values(t.Var) {
			sum += t.Coef
		}
	}
	if l.Op == OpEQ {
		return sum == l.RHS
	}
	return sum >= l.RHS
}

// Set 声明式约束集合：子句与线性约束，与添加顺序无关
type Set struct {
	Clauses [][]Lit
	Linears []Linear
}

// NewSet 创建空约束集合
func NewSet() *Set {
	return &Set{}
}

// AddClause 添加析取子句
func (s *Set) AddClause(lits ...Lit) {
	clause := make([]Lit, len(lits))
	copy(clause, lits)
	s.Clauses = append(s.Clauses, clause)
}

// Implies a ⇒ b
func (s *Set) Implies(a, b Lit) {
	s.AddClause(a.Negate(), b)
}

// Forbid 强制变量为假
func (s *Set) Forbid(v int) {
	s.AddClause(Not(v))
}

// AtLeast 至少 n 个变量为真
func (s *Set) AtLeast(name string, vars []int, n int) {
	s.addCardinality(name, vars, OpGE, n)
}

// Exactly 恰好 n 个变量为真
func (s *Set) Exactly(name string, vars []int, n int) {
	s.addCardinality(name, vars, OpEQ, n)
}

// AddLinear 添加线性约束
func (s *Set) AddLinear(l Linear) {
	s.Linears = append(s.Linears, l)
}

func (s *Set) addCardinality(name string, vars []int, op Op, n int) {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coef: 1}
	}
	s.AddLinear(Linear{Name: name, Terms: terms, Op: op, RHS: n})
}

// NumClauses 子句数量
func (s *Set) NumClauses() int {
	return len(s.Clauses)
}

// Satisfied 在给定取值下所有子句与线性约束是否成立
func (s *Set) Satisfied(values func(v int) bool) bool {
	for _, clause := range s.Clauses {
		ok := false
		for _, l := range clause {
			if values(l.Var) != l.Neg {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, l := range s.Linears {
		if !l.Holds(values) {
			return false
		}
	}
	return true
}
