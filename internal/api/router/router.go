package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const requestTimeout = 30 * time.Second

type Options struct {
	Logger   *zerolog.Logger
	Sessions session.Store
	Session  m.SessionOptions
	// AdminToken 為空時 admin API 全部回 401
	AdminToken string
	// Limiter 為 nil 時不限流
	Limiter ratelimit.Limiter
	Metrics *metrics.ServerMetrics
	// MediaURL/MediaRoot 為空時不提供上傳檔案
	MediaURL  string
	MediaRoot string
}

func SetupRouter(server *api.Server, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(middleware.RealIP)
	r.Use(m.RequestIdMiddleware)
	r.Use(m.LoggerMiddleware(opts.Logger))
	r.Use(m.RecoverMiddleware(opts.Logger))
	r.Use(m.MetricsMiddleware(opts.Metrics))
	r.Use(middleware.Timeout(requestTimeout))

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	if opts.MediaURL != "" && opts.MediaRoot != "" {
		prefix := "/" + strings.Trim(opts.MediaURL, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(opts.MediaRoot))))
	}

	limit := func(next http.Handler) http.Handler { return next }
	if opts.Limiter != nil {
		limit = m.NewRateLimitMiddleware(opts.Limiter, opts.Logger)
	}

	// 金流 callback 不需要 session
	r.Post("/checkout/stripe/webhook", server.CheckoutHandler.Webhook)

	r.Get("/branding", server.BrandingHandler.Get)
	r.Get("/branding/favicon-tags", server.BrandingHandler.FaviconTags)

	r.Group(func(r chi.Router) {
		r.Use(m.SessionMiddleware(opts.Sessions, opts.Session, opts.Logger))

		r.Get("/categories", server.CatalogHandler.ListCategories)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.CatalogHandler.ListProducts)
			r.Get("/{slug}", server.CatalogHandler.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.View)
			r.Group(func(r chi.Router) {
				r.Use(limit)
				r.Delete("/", server.CartHandler.Clear)
				r.Post("/items", server.CartHandler.Add)
				r.Patch("/items/{lineID}", server.CartHandler.Update)
				r.Delete("/items/{lineID}", server.CartHandler.Remove)
			})
		})

		r.With(limit).Post("/checkout", server.CheckoutHandler.Checkout)
		r.Get("/checkout/success", server.CheckoutHandler.Success)
		r.Get("/checkout/cancel", server.CheckoutHandler.Cancel)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(m.AdminMiddleware(opts.AdminToken))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", server.OrderHandler.List)
			r.Get("/{id}", server.OrderHandler.Get)
			r.Patch("/{id}/status", server.OrderHandler.SetStatus)
		})
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", server.CouponHandler.List)
			r.Post("/", server.CouponHandler.Create)
			r.Put("/{code}", server.CouponHandler.Update)
			r.Delete("/{code}", server.CouponHandler.Delete)
		})
		r.Post("/categories", server.CatalogHandler.CreateCategory)
		r.Route("/products", func(r chi.Router) {
			r.Post("/", server.CatalogHandler.CreateProduct)
			r.Patch("/{id}", server.CatalogHandler.UpdateProduct)
			r.Post("/{id}/variants", server.CatalogHandler.CreateVariant)
		})
		r.Route("/branding", func(r chi.Router) {
			r.Patch("/", server.BrandingHandler.UpdateSettings)
			r.Post("/logo", server.BrandingHandler.UploadLogo)
			r.Post("/favicon", server.BrandingHandler.UploadFavicon)
		})
	})

	return r
}

// PrintRoutes 啟動時印出路由樹
func PrintRoutes(r chi.Routes, logger *zerolog.Logger) error {
	return chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})
}
