package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
)

const authorizationTypeBearer = "bearer"

// AdminMiddleware 驗證 Authorization: Bearer <token>, token 未設定時一律拒絕
func AdminMiddleware(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fields := strings.Fields(r.Header.Get("Authorization"))
			if token == "" || len(fields) != 2 || strings.ToLower(fields[0]) != authorizationTypeBearer {
				api.ErrorJSON(w, int(er.UnauthenticatedCode), er.New(er.UnauthenticatedCode, "missing bearer token"), er.ErrStrMap[er.UnauthenticatedCode])
				return
			}
			if subtle.ConstantTimeCompare([]byte(fields[1]), []byte(token)) != 1 {
				api.ErrorJSON(w, int(er.UnauthenticatedCode), er.New(er.UnauthenticatedCode, "invalid token"), er.ErrStrMap[er.UnauthenticatedCode])
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
