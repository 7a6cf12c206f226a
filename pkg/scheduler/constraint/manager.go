// Package constraint 定义约束接口和管理器
package constraint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paiban/nurse-roster/pkg/logger"
	"github.com/paiban/nurse-roster/pkg/model"
	"github.com/paiban/nurse-roster/pkg/scheduler/grid"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
	logger      *logger.RosterLogger
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		logger:      logger.NewRosterLogger(),
	}
}

// Register 注册约束
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 检查是否已存在同类型约束
	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c // 替换
			return
		}
	}

	m.constraints = append(m.constraints, c)

	// 硬约束在前，同类别按类型排序，结果与注册顺序无关
	sort.Slice(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Type() < cj.Type()
	})
}

// Unregister 注销约束
func (m *Manager) Unregister(t Type) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.constraints {
		if c.Type() == t {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			return
		}
	}
}

// GetConstraint 获取约束
func (m *Manager) GetConstraint(t Type) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// Apply 将全部约束编码为一个新的约束集合
func (m *Manager) Apply(g *grid.Grid, staffing *model.StaffingConstraint) (*Set, error) {
	if staffing == nil {
		return nil, fmt.Errorf("缺少班次人数约束")
	}

	set := NewSet()
	for _, c := range m.GetAll() {
		if err := c.Apply(g, staffing, set); err != nil {
			return nil, fmt.Errorf("编码约束 %s 失败: %w", c.Name(), err)
		}
	}
	return set, nil
}

// Evaluate 评估所有约束
func (m *Manager) Evaluate(ctx *Context) *Result {
	result := &Result{
		IsValid:        true,
		HardViolations: make([]ViolationDetail, 0),
		SoftViolations: make([]ViolationDetail, 0),
	}

	for _, c := range m.GetAll() {
		valid, details := c.Evaluate(ctx)
		if valid {
			continue
		}
		if c.Category() == CategoryHard {
			result.IsValid = false
		}

		for _, d := range details {
			if c.Category() == CategoryHard {
				result.HardViolations = append(result.HardViolations, d)
				m.logger.ConstraintViolation(c.Name(), d.Message)
			} else {
				result.SoftViolations = append(result.SoftViolations, d)
			}
		}
	}

	return result
}

// Clear 清除所有约束
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make([]Constraint, 0)
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}
