package handler

import "net/http"

// Handlers 全部 API 处理器
type Handlers struct {
	Roster   *RosterHandler
	Shifts   *ShiftHandler
	WorkDays *WorkDayHandler
	Rules    *RuleHandler
}

// Register 注册 API v1 路由
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/roster/generate", h.Roster.Generate)
	mux.HandleFunc("GET /api/v1/shifts", h.Shifts.List)
	mux.HandleFunc("POST /api/v1/workdays", h.WorkDays.Submit)
	mux.HandleFunc("GET /api/v1/workdays", h.WorkDays.Get)
	if h.Rules != nil {
		mux.HandleFunc("GET /api/v1/rules", h.Rules.List)
	}
}
