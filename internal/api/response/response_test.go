package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect er.ErrCode
	}{
		{name: "validation", err: service.NewValidationError("email", "required"), expect: er.BadRequestCode},
		{name: "wrapped not found", err: fmt.Errorf("product x: %w", service.ErrNotFound), expect: er.NotFoundCode},
		{name: "empty cart", err: service.ErrEmptyCart, expect: er.ConflictCode},
		{name: "signature", err: fmt.Errorf("%w: bad header", service.ErrInvalidSignature), expect: er.BadRequestCode},
		{name: "rate limited", err: ratelimit.ErrRateLimited, expect: er.TooManyRequestsCode},
		{name: "ana error", err: er.New(er.UnauthenticatedCode, "missing token"), expect: er.UnauthenticatedCode},
		{name: "other", err: errors.New("db down"), expect: er.InternalErrorCode},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, CodeOf(tc.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, &service.ValidationError{Fields: map[string]string{"email": "required", "address": "required"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body api.FailedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, int(er.BadRequestCode), body.ResponseError.Code)
	require.Equal(t, []string{"address: required", "email: required"}, body.ResponseError.Details)

	rec = httptest.NewRecorder()
	Error(rec, errors.New("password=secret"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.ResponseError.Message)
	require.Equal(t, er.ErrStrMap[er.InternalErrorCode], *body.ResponseError.Message)
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]int{"id": 7})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"success":true,"data":{"id":7}}`, rec.Body.String())
}
