package handler

import (
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func parseID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// requireSession session middleware 沒有掛上時回傳 500
func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		zerolog.Ctx(r.Context()).Error().Msg("session middleware not installed")
		response.ErrorCode(w, er.InternalErrorCode)
		return nil, false
	}
	return sess, true
}

// writeError 5xx 才記錄 log, 其他是呼叫端錯誤
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if response.CodeOf(err) >= er.InternalErrorCode {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("url", r.URL.String()).Msg("request failed")
	}
	response.Error(w, err)
}
