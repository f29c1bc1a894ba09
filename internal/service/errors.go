package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	er "github.com/RoyceAzure/rj/util/rj_error"
)

// 帶 rj_error code 的錯誤, errors.Is 以 code 比對
var (
	ErrNotFound         = er.New(er.NotFoundCode, "")
	ErrEmptyCart        = er.New(er.ConflictCode, "cart is empty")
	ErrInvalidSignature = er.New(er.BadRequestCode, "invalid payment callback signature")
)

// ErrValidation 表單錯誤, 欄位細節在 ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError 欄位 -> 訊息
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Error 每個欄位一行, 依欄位名排序
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(lines, "\n")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
