package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds process settings read from the environment (and .env).
type Config struct {
	Port     string `mapstructure:"PORT"`
	WebPort  string `mapstructure:"WEB_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StoreDriver    string `mapstructure:"STORE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	FirestoreProjectID  string `mapstructure:"FIRESTORE_PROJECT_ID"`
	FirestoreCollection string `mapstructure:"FIRESTORE_COLLECTION"`
	CredentialsFile     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`

	CacheDriver   string `mapstructure:"CACHE_DRIVER"`
	CachePath     string `mapstructure:"CACHE_PATH"`
	CacheKey      string `mapstructure:"CACHE_KEY"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	ReceiptSecret string `mapstructure:"RECEIPT_SECRET"`
	ResyncCron    string `mapstructure:"RESYNC_CRON"`
	SchedulePath  string `mapstructure:"SCHEDULE_PATH"`

	OtelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OtelEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelSampleRatio float64 `mapstructure:"OTEL_SAMPLING_RATIO"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// comma-separated addresses or CIDRs whose X-Forwarded-For is believed
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
}

var defaults = map[string]any{
	"PORT":                           "50051",
	"WEB_PORT":                       "8080",
	"ENV":                            "development",
	"LOG_LEVEL":                      "info",
	"STORE_DRIVER":                   "memory",
	"DATABASE_URL":                   "",
	"MIGRATIONS_PATH":                "db/migrations/001_init.sql",
	"FIRESTORE_PROJECT_ID":           "",
	"FIRESTORE_COLLECTION":           "registrations",
	"GOOGLE_APPLICATION_CREDENTIALS": "",
	"CACHE_DRIVER":                   "file",
	"CACHE_PATH":                     "data/registrations.json",
	"CACHE_KEY":                      "activity_registrations_v2",
	"REDIS_ADDR":                     "localhost:6379",
	"REDIS_PASSWORD":                 "",
	"REDIS_DB":                       0,
	"KAFKA_BROKERS":                  "",
	"KAFKA_TOPIC":                    "reservations",
	"RECEIPT_SECRET":                 "",
	"RESYNC_CRON":                    "@every 5m",
	"SCHEDULE_PATH":                  "config/schedule.yaml",
	"OTEL_ENABLED":                   false,
	"OTEL_EXPORTER_OTLP_ENDPOINT":    "localhost:4317",
	"OTEL_SAMPLING_RATIO":            1.0,
	"RATE_LIMIT_RPS":                 0.5,
	"TRUSTED_PROXIES":                "",
	"RATE_LIMIT_BURST":               5,
}

// Load reads envFiles (missing ones are ignored) and then the environment.
// Values already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.CacheDriver = strings.ToLower(strings.TrimSpace(cfg.CacheDriver))
	if cfg.OtelSampleRatio < 0 || cfg.OtelSampleRatio > 1 {
		cfg.OtelSampleRatio = 1
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
