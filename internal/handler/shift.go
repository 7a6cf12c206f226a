package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/model"
)

// ShiftFinder 查询已发布班次
type ShiftFinder interface {
	FindByNurse(ctx context.Context, nurseID uuid.UUID, year int, month time.Month) ([]*model.Shift, error)
}

// ShiftHandler 班次查询处理器
type ShiftHandler struct {
	shifts ShiftFinder
}

// NewShiftHandler 创建班次查询处理器
func NewShiftHandler(shifts ShiftFinder) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// monthQuery 护士 + 年月查询参数
type monthQuery struct {
	NurseID string `validate:"required,uuid"`
	Year    int    `validate:"min=2000,max=2100"`
	Month   int    `validate:"min=1,max=12"`
}

func parseMonthQuery(r *http.Request) (*monthQuery, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return nil, err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return nil, err
	}

	q := &monthQuery{NurseID: r.URL.Query().Get("nurse_id"), Year: year, Month: month}
	if err := validateStruct(q); err != nil {
		return nil, err
	}
	return q, nil
}

// ShiftOutput 班次输出
type ShiftOutput struct {
	ID        string  `json:"id"`
	NurseID   string  `json:"nurse_id"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	ShiftType string  `json:"shift_type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Hours     float64 `json:"hours"`
}

// List 查询护士某月班次
func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseMonthQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shifts, err := h.shifts.FindByNurse(r.Context(), uuid.MustParse(q.NurseID), q.Year, time.Month(q.Month))
	if err != nil {
		respondError(w, r, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询班次失败"))
		return
	}

	out := make([]ShiftOutput, 0, len(shifts))
	totalHours := 0.0
	for _, s := range shifts {
		out = append(out, ShiftOutput{
			ID:        s.ID.String(),
			NurseID:   s.NurseID.String(),
			FirstName: s.NurseFirstName,
			LastName:  s.NurseLastName,
			ShiftType: s.ShiftType.String(),
			StartDate: s.StartDate.Format(time.RFC3339),
			EndDate:   s.EndDate.Format(time.RFC3339),
			Hours:     s.WorkingHours(),
		})
		totalHours += s.WorkingHours()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"shifts":      out,
		"total_hours": totalHours,
	})
}
