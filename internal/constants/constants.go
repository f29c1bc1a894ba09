package constants

import "time"

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	SessionKey   ContextKey = "session"
)

// session 內固定的 key
const (
	SessionCartKey = "cart"
)

const (
	DefaultSessionCookieName = "sessionid"
	DefaultSessionTTL        = 14 * 24 * time.Hour
	RequestIDHeader          = "X-Request-ID"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

// 品牌上傳限制
const (
	LogoMaxBytes      = 512 * 1024
	LogoMaxDimension  = 512
	FaviconMaxBytes   = 256 * 1024
	BrandingSingleton = 1
)
