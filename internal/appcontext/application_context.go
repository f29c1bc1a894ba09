package appcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/notify"
	"github.com/RoyceAzure/lab/storefront/internal/infra/payment"
	"github.com/RoyceAzure/lab/storefront/internal/infra/redis_client"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/seed"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	serviceName                = "storefront"
	backendRedis               = "redis"
	sessionKeyPrefix           = "storefront:session"
	rateLimitPrefix            = "storefront:ratelimit"
	redisPingTimeout           = 5 * time.Second
	kafkaWriteTimeout          = 10 * time.Second
	memorySessionSweepInterval = 10 * time.Minute
)

type ApplicationContext struct {
	Cf              *config.Config
	Logger          *zerolog.Logger
	Metrics         *metrics.ServerMetrics
	DbConn          *gorm.DB
	DbDao           db.UnifiedDB
	RedisClient     *redis.Client
	Sessions        session.Store
	Storage         storage.Storage
	Gateway         payment.Gateway
	Notifier        notify.Notifier
	Limiter         ratelimit.Limiter
	CatalogService  service.ICatalogService
	CartService     service.ICartService
	CouponService   service.ICouponService
	OrderService    service.IOrderService
	CheckoutService service.ICheckoutService
	BrandingService service.IBrandingService

	kafkaNotifier *notify.KafkaNotifier
	stopSweeps    []context.CancelFunc
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	err := app.Init()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	app.setUpLogger()
	app.setUpMetrics()

	steps := []func() error{
		app.setUpdbConn,
		app.setUpdbDao,
		app.seedCatalog,
		app.setUpRedis,
		app.setUpSessionStore,
		app.setUpStorage,
		app.setUpPaymentGateway,
		app.setUpNotifier,
		app.setUpRateLimiter,
		app.setUpServices,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() {
	app.Logger = logger.New(logger.Options{
		Service: serviceName,
		Env:     app.Cf.Env,
		Level:   app.Cf.LogLevel,
	})
	app.Logger.Info().
		Str("port", app.Cf.ServerPort).
		Str("db_driver", app.Cf.DbDriver).
		Str("session_backend", app.Cf.SessionBackend).
		Str("rate_limit_backend", app.Cf.RateLimitBackend).
		Bool("payments_enabled", app.Cf.PaymentsEnabled()).
		Msg("config loaded")
}

func (app *ApplicationContext) setUpMetrics() {
	app.Metrics = metrics.NewServerMetrics("http")
}

func (app *ApplicationContext) setUpdbConn() error {
	app.Logger.Info().Msg("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	app.DbConn = conn
	app.Logger.Info().Msg("Finish setup database connection")
	return nil
}

/*
setUpdbDao
有設定 DB_MIGRATION_URL 時以 migration 建表 (postgres)
否則用 gorm AutoMigrate, 給 sqlite/mysql 與本機開發使用
*/
func (app *ApplicationContext) setUpdbDao() error {
	app.Logger.Info().Msg("Start setup database DAO")
	app.DbDao = db.NewUnifiedDB(app.DbConn)
	if app.Cf.DbMigrationUrl != "" {
		if err := db.RunDBMigration(app.Cf.DbMigrationUrl); err != nil {
			return err
		}
	} else if err := app.DbDao.InitMigrate(); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	app.Logger.Info().Msg("Finish setup database DAO")
	return nil
}

func (app *ApplicationContext) seedCatalog() error {
	if app.Cf.CatalogSeedFile == "" {
		return nil
	}
	app.Logger.Info().Str("file", app.Cf.CatalogSeedFile).Msg("Start seed catalog")
	catalog, err := seed.LoadFile(app.Cf.CatalogSeedFile)
	if err != nil {
		return err
	}
	if err := seed.Apply(context.Background(), app.DbDao, catalog, app.Logger); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	app.Logger.Info().Msg("Finish seed catalog")
	return nil
}

// setUpRedis session 或限流使用 redis 時才建立連線
func (app *ApplicationContext) setUpRedis() error {
	if app.Cf.SessionBackend != backendRedis && app.Cf.RateLimitBackend != backendRedis {
		return nil
	}
	app.Logger.Info().Str("addr", app.Cf.RedisAddr).Msg("Start setup redis client")
	client := redis_client.GetRedisClient(app.Cf.RedisAddr,
		redis_client.WithPassword(app.Cf.RedisPassword),
		redis_client.WithDB(app.Cf.RedisDB),
	)
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := redis_client.Ping(ctx, client); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	app.RedisClient = client
	app.Logger.Info().Msg("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setUpSessionStore() error {
	ttl := app.Cf.SessionTTL
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	if app.Cf.SessionBackend == backendRedis {
		app.Sessions = session.NewRedisStore(app.RedisClient, sessionKeyPrefix, ttl)
	} else {
		app.Logger.Warn().Msg("using in-memory session store, carts are lost on restart")
		memory := session.NewMemoryStore(ttl)
		app.Sessions = memory
		app.startSweeper(min(ttl, memorySessionSweepInterval), memory)
	}
	return nil
}

func (app *ApplicationContext) setUpStorage() error {
	app.Storage = storage.NewLocalStorage(app.Cf.MediaRoot, app.Cf.MediaUrl)
	return nil
}

// setUpPaymentGateway 未啟用時 Gateway 保持 nil, checkout 一律貨到付款
func (app *ApplicationContext) setUpPaymentGateway() error {
	if !app.Cf.PaymentsEnabled() {
		app.Logger.Info().Msg("payments disabled, card checkout falls back to cash on delivery")
		return nil
	}
	app.Gateway = payment.NewStripeGateway(app.Cf.StripeSecretKey, app.Cf.StripeWebhookSecret)
	return nil
}

func (app *ApplicationContext) setUpNotifier() error {
	var notifiers notify.MultiNotifier
	if app.Cf.EmailAccount != "" {
		notifiers = append(notifiers, notify.NewMailNotifier(app.Cf.EmailSenderName, app.Cf.EmailAccount, app.Cf.SmtpAuthKey, app.Cf.Currency))
	}
	if brokers := app.Cf.KafkaBrokerList(); len(brokers) > 0 {
		writer := notify.NewKafkaWriter(brokers, app.Cf.KafkaOrderTopic)
		writer.WriteTimeout = kafkaWriteTimeout
		app.kafkaNotifier = notify.NewKafkaNotifier(writer, app.Cf.Currency)
		notifiers = append(notifiers, app.kafkaNotifier)
	}
	if len(notifiers) == 0 {
		app.Logger.Warn().Msg("no notifier configured, order emails are not sent")
		return nil
	}
	app.Notifier = notifiers
	return nil
}

func (app *ApplicationContext) setUpRateLimiter() error {
	cfg := ratelimit.Config{Capacity: app.Cf.RateLimitCapacity, Window: app.Cf.RateLimitWindow}
	if app.Cf.RateLimitBackend == backendRedis {
		app.Limiter = ratelimit.NewRedisFixedWindow(app.RedisClient, rateLimitPrefix, cfg)
		return nil
	}
	local := ratelimit.NewFixedWindow(cfg)
	app.Limiter = local
	app.startSweeper(local.Window, local)
	return nil
}

type sweeper interface {
	Sweep()
}

// startSweeper 定期清掉過期資料, Shutdown 時停止
func (app *ApplicationContext) startSweeper(interval time.Duration, s sweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	app.stopSweeps = append(app.stopSweeps, cancel)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (app *ApplicationContext) setUpServices() error {
	app.Logger.Info().Msg("Start setup services")
	catalog := service.NewCatalogService(app.DbDao)
	carts := service.NewCartService(catalog, app.Sessions, app.Metrics, app.Logger)
	coupons := service.NewCouponService(app.DbDao)

	app.CatalogService = catalog
	app.CartService = carts
	app.CouponService = coupons
	app.OrderService = service.NewOrderService(app.DbDao)
	app.CheckoutService = service.NewCheckoutService(
		app.DbDao, carts, coupons, app.Gateway, app.Notifier, app.Metrics, app.Logger,
		service.CheckoutConfig{Currency: app.Cf.Currency, SiteURL: app.Cf.SiteUrl},
	)
	app.BrandingService = service.NewBrandingService(app.DbDao, app.Storage, app.Logger)
	app.Logger.Info().Msg("Finish setup services")
	return nil
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		defer close(done)

		for _, stop := range app.stopSweeps {
			stop()
		}

		if app.kafkaNotifier != nil {
			app.Logger.Info().Msg("Closing kafka writer...")
			if err := app.kafkaNotifier.Close(); err != nil {
				//有錯誤不結束流程
				app.Logger.Error().Err(err).Msg("kafka writer close error")
			}
		}

		if app.RedisClient != nil {
			app.Logger.Info().Msg("Closing redis client...")
			if err := redis_client.Close(app.Cf.RedisAddr); err != nil {
				app.Logger.Error().Err(err).Msg("redis close error")
			}
		}

		// 關閉 DB
		if app.DbConn != nil {
			app.Logger.Info().Msg("Closing database connection...")
			if sqlDB, err := app.DbConn.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					app.Logger.Error().Err(err).Msg("database close error")
				}
			}
		}

		app.Logger.Info().Msg("Application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}
