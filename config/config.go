package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
	Paywall  PaywallConfig  `mapstructure:"paywall"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
	Cookie   CookieConfig   `mapstructure:"cookie"`
	Callback CallbackConfig `mapstructure:"callback"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig validates tokens issued by the marketplace auth API.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// GatewayConfig points at the server-side STK push trigger.
type GatewayConfig struct {
	STKPushURL string        `mapstructure:"stk_push_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// BreakerConfig configures the circuit breaker around the STK push trigger.
type BreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

// PaywallConfig holds the payment flow timings and limits.
type PaywallConfig struct {
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	MaxPolls          int           `mapstructure:"max_polls"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	PricingAttempts   int           `mapstructure:"pricing_attempts"`
	PricingBackoff    time.Duration `mapstructure:"pricing_backoff"`
	SuccessCloseDelay time.Duration `mapstructure:"success_close_delay"`
	MinPhoneDigits    int           `mapstructure:"min_phone_digits"`
	ClosedDialogTTL   time.Duration `mapstructure:"closed_dialog_ttl"`
}

// SweeperConfig controls out-of-band reconciliation of late callbacks.
type SweeperConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	MinAge    time.Duration `mapstructure:"min_age"`
	BatchSize int           `mapstructure:"batch_size"`
}

type CookieConfig struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
	Secure bool   `mapstructure:"secure"`
}

// CallbackConfig guards the M-Pesa callback receiver. Callbacks are refused
// while Token is empty.
type CallbackConfig struct {
	Token string `mapstructure:"token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: MPW_ (M-Pesa paywall).
// Nested keys use underscore: MPW_DATABASE_HOST, MPW_GATEWAY_STK_PUSH_URL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "marketplace")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "marketplace-api")
	v.SetDefault("gateway.stk_push_url", "")
	v.SetDefault("gateway.timeout", "30s")
	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "60s")
	v.SetDefault("breaker.timeout", "30s")
	v.SetDefault("breaker.consecutive_failures", 5)
	v.SetDefault("paywall.poll_interval", "3s")
	v.SetDefault("paywall.max_polls", 40)
	v.SetDefault("paywall.session_ttl", "3h")
	v.SetDefault("paywall.pricing_attempts", 5)
	v.SetDefault("paywall.pricing_backoff", "1s")
	v.SetDefault("paywall.success_close_delay", "2s")
	v.SetDefault("paywall.min_phone_digits", 9)
	v.SetDefault("paywall.closed_dialog_ttl", "5m")
	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.interval", "1m")
	v.SetDefault("sweeper.min_age", "3m")
	v.SetDefault("sweeper.batch_size", 100)
	v.SetDefault("cookie.name", "mpw_client")
	v.SetDefault("cookie.secret", "")
	v.SetDefault("cookie.secure", false)
	v.SetDefault("callback.token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: MPW_DATABASE_HOST -> database.host
	v.SetEnvPrefix("MPW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate reports settings the service cannot run without. Outside debug
// and test mode the callback token is mandatory.
func (c *Config) Validate() error {
	if c.Gateway.STKPushURL == "" {
		return fmt.Errorf("gateway.stk_push_url is required")
	}
	switch c.Server.Mode {
	case "debug", "test":
	default:
		if c.Callback.Token == "" {
			return fmt.Errorf("callback.token is required in %s mode", c.Server.Mode)
		}
	}
	return nil
}
