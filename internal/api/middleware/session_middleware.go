package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/rs/zerolog"
)

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

/*
SessionMiddleware 從 cookie 載入 session 放進 context
cookie 在 handler 執行前就寫入, 新 session 只有在 handler 存檔後才會出現在 store
*/
func SessionMiddleware(store session.Store, opts SessionOptions, logger *zerolog.Logger) func(next http.Handler) http.Handler {
	if opts.CookieName == "" {
		opts.CookieName = constants.DefaultSessionCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = constants.DefaultSessionTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(opts.CookieName); err == nil {
				id = c.Value
			}
			sess, err := store.Load(r.Context(), id)
			if err != nil {
				logger.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("failed to load session")
				response.ErrorCode(w, er.InternalErrorCode)
				return
			}

			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("session_id", sess.ID)
			})
			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), constants.SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(constants.SessionKey).(*session.Session)
	return sess
}
