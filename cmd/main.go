package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
)

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal(err)
		return
	}
	logger := app.Logger

	// 初始化 handler
	server := api.NewServer(
		handler.NewCatalogHandler(app.CatalogService),
		handler.NewCartHandler(app.CartService),
		handler.NewCheckoutHandler(app.CheckoutService),
		handler.NewOrderHandler(app.OrderService),
		handler.NewCouponHandler(app.CouponService),
		handler.NewBrandingHandler(app.BrandingService),
	)

	// 設置路由
	r := router.SetupRouter(server, router.Options{
		Logger:   logger,
		Sessions: app.Sessions,
		Session: m.SessionOptions{
			CookieName: app.Cf.SessionCookieName,
			TTL:        app.Cf.SessionTTL,
			Secure:     constants.ENV(app.Cf.Env) == constants.Prod,
		},
		AdminToken: app.Cf.AdminToken,
		Limiter:    app.Limiter,
		Metrics:    app.Metrics,
		MediaURL:   app.Cf.MediaUrl,
		MediaRoot:  app.Cf.MediaRoot,
	})
	if err := router.PrintRoutes(r, logger); err != nil {
		logger.Warn().Err(err).Msg("failed to walk routes")
	}

	// 設定服務器參數
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	// 監聽退出訊號
	go func() {
		<-sigChan
		logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown error")
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Application shutdown error")
		}

		shutDownCompleted <- struct{}{}
	}()

	// 啟動服務
	logger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	<-shutDownCompleted
	logger.Info().Msg("closed completed")
}
