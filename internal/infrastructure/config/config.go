package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/freshcart/storefront/internal/core/domain"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// AdminPrefix is the route prefix of the administrator area.
	AdminPrefix string `env:"ADMIN_PATH_PREFIX, default=/admin"`

	Remote  RemoteConfig
	Storage StorageConfig
	Pricing PricingConfig
	Audit   AuditConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type RemoteConfig struct {
	BaseURL string `env:"REMOTE_BASE_URL, default=http://localhost:8081/api"`
	// Timeout of zero leaves remote calls bounded only by the inbound request.
	Timeout time.Duration `env:"REMOTE_TIMEOUT, default=0s"`
}

type StorageConfig struct {
	Driver       string        `env:"STORAGE_DRIVER,       default=memory"`
	TTL          time.Duration `env:"STORAGE_TTL,          default=720h"`
	CookieSecure bool          `env:"DEVICE_COOKIE_SECURE, default=false"`
}

type PricingConfig struct {
	FreeDeliveryThreshold float64 `env:"FREE_DELIVERY_THRESHOLD, default=500"`
	DeliveryFee           float64 `env:"DELIVERY_FEE,            default=30"`
}

type AuditConfig struct {
	Enabled bool `env:"AUDIT_ENABLED, default=false"`
	Workers int  `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=storefront"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=0"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`
}

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

// PricingPolicy converts the pricing settings into the domain policy.
func (c *Config) PricingPolicy() domain.PricingPolicy {
	return domain.PricingPolicy{
		FreeDeliveryThreshold: c.Pricing.FreeDeliveryThreshold,
		DeliveryFee:           c.Pricing.DeliveryFee,
	}
}

// NeedsMongo reports whether any component is backed by MongoDB.
func (c *Config) NeedsMongo() bool {
	return c.Storage.Driver == DriverMongo || c.Audit.Enabled
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverRedis, DriverMongo:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Pricing.FreeDeliveryThreshold < 0 || c.Pricing.DeliveryFee < 0 {
		return fmt.Errorf("config: pricing values must not be negative")
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("config: REMOTE_TIMEOUT must not be negative")
	}
	return nil
}

// LoadFrom reads configuration through lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// DemoConfig configures the demo remote API.
type DemoConfig struct {
	Port      string        `env:"DEMO_PORT,  default=8081"`
	JWTSecret string        `env:"JWT_SECRET, default=demo-secret-change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	LogPretty bool          `env:"LOG_PRETTY, default=false"`
	// OTPCode, when set, is accepted for every phone instead of a random code.
	OTPCode   string        `env:"DEMO_OTP_CODE"`
}

// LoadDemoFrom reads the demo API configuration through lookuper.
func LoadDemoFrom(ctx context.Context, lookuper envconfig.Lookuper) (*DemoConfig, error) {
	var cfg DemoConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load demo configuration: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be positive")
	}
	return &cfg, nil
}

// LoadDemo reads the demo API configuration from the environment.
func LoadDemo() *DemoConfig {
	cfg, err := LoadDemoFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
