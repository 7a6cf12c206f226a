package handler

import (
	"net/http"

	"github.com/paiban/nurse-roster/internal/constraints"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint"
	"github.com/paiban/nurse-roster/pkg/scheduler/constraint/builtin"
)

// RuleHandler 约束库查询
type RuleHandler struct {
	rules *constraint.Manager
}

// NewRuleHandler 创建约束库处理器，rules 为空时使用默认护理规则集
func NewRuleHandler(rules *constraint.Manager) *RuleHandler {
	if rules == nil {
		rules = builtin.NewNursingRuleSet()
	}
	return &RuleHandler{rules: rules}
}

// List 列出约束库及其生效状态
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, constraints.LibraryResponse{Library: constraints.ActiveLibrary(h.rules)})
}
