package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init config跟read config分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取  需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	Env        string `mapstructure:"ENV"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DbDriver       string `mapstructure:"DB_DRIVER"`
	DbName         string `mapstructure:"POSTGRES_DB"`
	DbHost         string `mapstructure:"POSTGRES_HOST"`
	DbPort         string `mapstructure:"POSTGRES_PORT"`
	DbUser         string `mapstructure:"POSTGRES_USER"`
	DbPas          string `mapstructure:"POSTGRES_PASSWORD"`
	MysqlDsn       string `mapstructure:"MYSQL_DSN"`
	SqlitePath     string `mapstructure:"SQLITE_PATH"`
	DbMigrationUrl string `mapstructure:"DB_MIGRATION_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	SessionBackend    string        `mapstructure:"SESSION_BACKEND"`
	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`

	SiteUrl  string `mapstructure:"SITE_URL"`
	Currency string `mapstructure:"CURRENCY"`

	UseStripe            bool   `mapstructure:"USE_STRIPE"`
	StripeSecretKey      string `mapstructure:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `mapstructure:"STRIPE_PUBLISHABLE_KEY"`
	StripeWebhookSecret  string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	EmailSenderName string `mapstructure:"EMAIL_SENDER_NAME"`
	EmailAccount    string `mapstructure:"EMAIL_ACCOUNT"`
	SmtpAuthKey     string `mapstructure:"SMTP_AUTH_KEY"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	MediaRoot string `mapstructure:"MEDIA_ROOT"`
	MediaUrl  string `mapstructure:"MEDIA_URL"`

	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	RateLimitBackend  string        `mapstructure:"RATE_LIMIT_BACKEND"`
	RateLimitCapacity int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	CatalogSeedFile string `mapstructure:"CATALOG_SEED_FILE"`
}

// PaymentsEnabled 沒有金鑰時視同關閉金流
func (c *Config) PaymentsEnabled() bool {
	return c.UseStripe && c.StripeSecretKey != ""
}

func (c *Config) KafkaBrokerList() []string {
	brokers := []string{}
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	muonce.Do(func() {
		config_singleton = &ConfigSingleTon{}
		cf, err := loadConfig()
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		config_singleton.Config = cf
		if viper.ConfigFileUsed() == "" {
			return
		}
		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			if cf, err := loadConfig(); err == nil {
				config_singleton.Config = cf
			} else {
				log.Printf("failed to reload config file: %v", err)
			}
		})
	})
}

/*
單純回傳錯誤  由外部決定要不要Fatal
.env 檔案不存在時只讀環境變數
*/
func loadConfig() (cf *Config, err error) {
	config_singleton.mu.Lock()
	defer config_singleton.mu.Unlock()

	setDefaults(viper.GetViper())

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = ".env"
	}
	if _, statErr := os.Stat(configFile); statErr == nil {
		viper.SetConfigFile(configFile)
		viper.SetConfigType("env")
		if err = viper.ReadInConfig(); err != nil {
			return
		}
	}
	viper.AutomaticEnv()

	cf = &Config{}
	err = viper.Unmarshal(cf)
	if err != nil {
		return
	}
	if !cf.PaymentsEnabled() {
		cf.UseStripe = false
	}
	return
}

// AutomaticEnv 只對已知的 key 生效, 所以每個 key 都要有預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("MYSQL_DSN", "")
	v.SetDefault("SQLITE_PATH", "storefront.db")
	v.SetDefault("DB_MIGRATION_URL", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_BACKEND", "redis")
	v.SetDefault("SESSION_COOKIE_NAME", "sessionid")
	v.SetDefault("SESSION_TTL", "336h")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("CURRENCY", "bgn")
	v.SetDefault("USE_STRIPE", false)
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_PUBLISHABLE_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("EMAIL_SENDER_NAME", "Storefront")
	v.SetDefault("EMAIL_ACCOUNT", "")
	v.SetDefault("SMTP_AUTH_KEY", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_ORDER_TOPIC", "storefront.orders")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("RATE_LIMIT_BACKEND", "local")
	v.SetDefault("RATE_LIMIT_CAPACITY", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("CATALOG_SEED_FILE", "")
}
