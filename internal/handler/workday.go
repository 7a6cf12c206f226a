package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/model"
)

// WorkDayStore 可上班日期存储
type WorkDayStore interface {
	Resolve(ctx context.Context, nurseID uuid.UUID, year int, month time.Month) (*model.Availability, error)
	Save(ctx context.Context, a *model.Availability) error
}

// NurseFinder 查询护士
type NurseFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Nurse, error)
}

// WorkDayHandler 可上班日期处理器
type WorkDayHandler struct {
	store  WorkDayStore
	nurses NurseFinder
}

// NewWorkDayHandler 创建可上班日期处理器
func NewWorkDayHandler(store WorkDayStore, nurses NurseFinder) *WorkDayHandler {
	return &WorkDayHandler{store: store, nurses: nurses}
}

// SubmitWorkDaysRequest 提交可上班日期
// 同一月份的提交覆盖该月已有记录
type SubmitWorkDaysRequest struct {
	NurseID   string   `json:"nurse_id" validate:"required,uuid"`
	WorkDates []string `json:"work_dates" validate:"required,min=1,dive,datetime=2006-01-02"`
}

// WorkDaysResponse 某月可上班日期
type WorkDaysResponse struct {
	NurseID   string   `json:"nurse_id"`
	Year      int      `json:"year"`
	Month     int      `json:"month"`
	AllDays   bool     `json:"all_days"` // 未提交时整月可用
	WorkDates []string `json:"work_dates"`
}

// Submit 提交可上班日期
func (h *WorkDayHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitWorkDaysRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	nurseID := uuid.MustParse(req.NurseID)
	if err := h.ensureNurse(r.Context(), nurseID); err != nil {
		respondError(w, r, err)
		return
	}

	groups, err := model.GroupWorkDates(nurseID, req.WorkDates)
	if err != nil {
		respondError(w, r, apperrors.InvalidInput("work_dates", err.Error()))
		return
	}

	resp := make([]WorkDaysResponse, 0, len(groups))
	for _, a := range groups {
		if err := h.store.Save(r.Context(), a); err != nil {
			respondError(w, r, apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存可上班日期失败"))
			return
		}
		resp = append(resp, toWorkDaysResponse(nurseID, a.Year, a.Month, a))
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"months": resp})
}

// Get 查询护士某月可上班日期
func (h *WorkDayHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := parseMonthQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	nurseID := uuid.MustParse(q.NurseID)
	a, err := h.store.Resolve(r.Context(), nurseID, q.Year, time.Month(q.Month))
	if err != nil {
		respondError(w, r, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询可上班日期失败"))
		return
	}

	respondJSON(w, http.StatusOK, toWorkDaysResponse(nurseID, q.Year, q.Month, a))
}

func (h *WorkDayHandler) ensureNurse(ctx context.Context, id uuid.UUID) error {
	nurse, err := h.nurses.GetByID(ctx, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询护士失败")
	}
	if nurse == nil {
		return apperrors.NotFound("护士", id.String())
	}
	return nil
}

func toWorkDaysResponse(nurseID uuid.UUID, year, month int, a *model.Availability) WorkDaysResponse {
	resp := WorkDaysResponse{NurseID: nurseID.String(), Year: year, Month: month}
	if a == nil {
		resp.AllDays = true
		resp.WorkDates = []string{}
		return resp
	}
	resp.WorkDates = a.WorkDates
	if resp.WorkDates == nil {
		resp.WorkDates = []string{}
	}
	return resp
}
