package response

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
)

// CodeOf 錯誤對應的 rj_error code, 不認得的錯誤一律 InternalErrorCode
func CodeOf(err error) er.ErrCode {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return er.BadRequestCode
	}
	var anaErr *er.AnaError
	if errors.As(err, &anaErr) {
		return anaErr.Code
	}
	return er.InternalErrorCode
}

/*
Error 依 code 回應 api.FailedResponse
驗證錯誤的 details 為每個欄位一行
5xx 不回傳內部錯誤內容
*/
func Error(w http.ResponseWriter, err error) {
	code := CodeOf(err)
	if code >= er.InternalErrorCode {
		api.ErrorJSON(w, int(code), nil, er.ErrStrMap[code])
		return
	}
	api.ErrorJSON(w, int(code), err, er.ErrStrMap[code])
}

// ErrorCode 直接以 code 回應, 不帶 details
func ErrorCode(w http.ResponseWriter, code er.ErrCode) {
	api.ErrorJSON(w, int(code), nil, er.ErrStrMap[code])
}

// Created api.SuccessJSON 固定 200, 建立資源時改用 201
func Created(w http.ResponseWriter, data any) {
	api.JSON(w, http.StatusCreated, api.Response{
		Success: true,
		Data:    data,
	})
}
