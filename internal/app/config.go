package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (OTAKU_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string        `usage:"PostgreSQL connection URL (OTAKU_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisAddr    string        `default:"localhost:6379" usage:"Redis address for cart storage" flag:"redis-addr"`
	KafkaBrokers []string      `usage:"Kafka broker addresses; event publishing is disabled when empty" flag:"kafka-brokers"`
	KafkaTopic   string        `default:"otakumart.orders" usage:"Kafka topic for order lifecycle events" flag:"kafka-topic"`
	JWTSecret    string        `usage:"HMAC secret for bearer token validation (OTAKU_JWT_SECRET)" flag:"jwt-secret"`
	CartTTL      time.Duration `default:"720h" usage:"Idle time before an abandoned cart expires" flag:"cart-ttl"`
	Gateway      GatewayConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// GatewayConfig holds payment processor credentials. When KeyID or KeySecret
// is empty the payment endpoints respond with a misconfiguration error
// instead of attempting upstream calls.
type GatewayConfig struct {
	BaseURL   string `default:"https://api.razorpay.com" usage:"Payment gateway base URL" flag:"gateway-base-url"`
	KeyID     string `usage:"Payment gateway key id (OTAKU_GATEWAY_KEY_ID)" flag:"gateway-key-id"`
	KeySecret string `usage:"Payment gateway key secret, also used for signature verification" flag:"gateway-key-secret"`
	Currency  string `default:"INR" usage:"Currency code for gateway orders" flag:"gateway-currency"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "OTAKU",
		Files:     []string{"config.yaml", "/etc/otakumart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set OTAKU_DATABASE_URL or DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required: set OTAKU_JWT_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's OTAKU_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
