// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/paiban/nurse-roster/pkg/errors"
	"github.com/paiban/nurse-roster/pkg/logger"
)

var validate = validator.New()

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应，非 AppError 按内部错误处理
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.New(apperrors.CodeInternal, "内部错误").WithCause(err)
	}
	status := apperrors.GetHTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("请求处理失败")
	}

	respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
		"fields":  appErr.Fields,
	})
}

// decodeJSON 解析并校验请求体
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败")
	}
	return validateStruct(dst)
}

// validateStruct 将 validator 错误转换为字段级 AppError
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "请求参数无效")
	}

	ve := &apperrors.ValidationErrors{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), "不满足 "+fe.Tag()+" "+fe.Param())
	}
	return ve.ToAppError().WithDetails(ve.Error())
}

// queryInt 读取整数查询参数，缺省时返回 0
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(key, "应为整数")
	}
	return v, nil
}
