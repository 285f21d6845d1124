package config

import (
	"bytes"
	_ "embed"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http"`
	Log         LogConfig         `mapstructure:"log"`
	RecordStore RecordStoreConfig `mapstructure:"record_store"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Intake      IntakeConfig      `mapstructure:"intake"`
	MySQL       DatabaseConfig    `mapstructure:"mysql"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Alerts      AlertsConfig      `mapstructure:"alerts"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

// RecordStoreConfig selects and configures the backend holding booking_requests and contact_messages.
type RecordStoreConfig struct {
	Driver    string        `mapstructure:"driver"` // rest | mysql
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

type AuthConfig struct {
	BaseURL   string `mapstructure:"base_url"` // empty => record_store.base_url
	AdminRole string `mapstructure:"admin_role"`
	LoginPath string `mapstructure:"login_path"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type IntakeConfig struct {
	BookingsTable string `mapstructure:"bookings_table"`
	MessagesTable string `mapstructure:"messages_table"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	Topic          string        `mapstructure:"topic"`
	GroupID        string        `mapstructure:"group_id"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout"`
	MinBytes       int           `mapstructure:"min_bytes"`
	MaxBytes       int           `mapstructure:"max_bytes"`
	CommitInterval int           `mapstructure:"commit_interval"` // ms
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

type WebhookConfig struct {
	Name      string        `mapstructure:"name"`
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

// AlertsConfig drives the staff notifier worker.
type AlertsConfig struct {
	Lang        string          `mapstructure:"lang"`
	Workers     int             `mapstructure:"workers"`
	MaxAttempts int             `mapstructure:"max_attempts"`
	DedupTTL    time.Duration   `mapstructure:"dedup_ttl"`
	Webhooks    []WebhookConfig `mapstructure:"webhooks"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (CLINIC_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (CLINIC_RECORD_STORE_API_KEY, ...)
	v.SetEnvPrefix("CLINIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Auth.BaseURL == "" {
		cfg.Auth.BaseURL = cfg.RecordStore.BaseURL
	}
	return cfg, nil
}
