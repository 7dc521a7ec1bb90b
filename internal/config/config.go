package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/praneeth552/Jobfinder/internal/domain/rules"
)

type Config struct {
	Env        string           `yaml:"env"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	Auth       AuthConfig       `yaml:"auth"`
	Razorpay   RazorpayConfig   `yaml:"razorpay"`
	Mail       MailConfig       `yaml:"mail"`
	Billing    BillingConfig    `yaml:"billing"`
	Generation GenerationConfig `yaml:"generation"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Jobs       JobsConfig       `yaml:"jobs"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AMQPConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	JWTAccessTTL time.Duration `yaml:"jwt_access_ttl"`
}

type RazorpayConfig struct {
	KeyID         string `yaml:"key_id"`
	KeySecret     string `yaml:"key_secret"`
	WebhookSecret string `yaml:"webhook_secret"`
	PlanID        string `yaml:"plan_id"`
	TotalCount    int    `yaml:"total_count"`
}

// MailConfig.Delivery is one of direct, queue or log. Production runs
// queue so webhook and API requests never wait on Postmark.
// WebhookTimeout caps a send made inside a webhook request.
type MailConfig struct {
	Delivery       string        `yaml:"delivery"`
	PostmarkToken  string        `yaml:"postmark_token"`
	PostmarkURL    string        `yaml:"postmark_url"`
	From           string        `yaml:"from"`
	Timeout        time.Duration `yaml:"timeout"`
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
}

type BillingConfig struct {
	Cycle             time.Duration `yaml:"cycle"`
	PastDueGrace      time.Duration `yaml:"past_due_grace"`
	ReminderWindow    time.Duration `yaml:"reminder_window"`
	ReminderDedupeTTL time.Duration `yaml:"reminder_dedupe_ttl"`
	DeletionGrace     time.Duration `yaml:"deletion_grace"`
}

type GenerationConfig struct {
	FreeIntervalDays int `yaml:"free_interval_days"`
	ProIntervalDays  int `yaml:"pro_interval_days"`
}

type GeminiConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	JobsLimit int    `yaml:"jobs_limit"`
}

type JobsConfig struct {
	LockTTL time.Duration `yaml:"lock_ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Default() Config {
	return Config{
		Env: "local",
		HTTP: HTTPConfig{
			Addr:         ":8000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "jobfinder",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		AMQP: AMQPConfig{
			Queue: "notifications",
		},
		Auth: AuthConfig{
			JWTAccessTTL: 24 * time.Hour,
		},
		Razorpay: RazorpayConfig{
			TotalCount: 12,
		},
		Mail: MailConfig{
			Delivery:       "log",
			PostmarkURL:    "https://api.postmarkapp.com/email",
			From:           "Tackleit <noreply@tackleit.com>",
			Timeout:        10 * time.Second,
			WebhookTimeout: 3 * time.Second,
		},
		Billing: BillingConfig{
			Cycle:             31 * 24 * time.Hour,
			PastDueGrace:      72 * time.Hour,
			ReminderWindow:    7 * 24 * time.Hour,
			ReminderDedupeTTL: 8 * 24 * time.Hour,
			DeletionGrace:     30 * 24 * time.Hour,
		},
		Generation: GenerationConfig{
			FreeIntervalDays: 30,
			ProIntervalDays:  7,
		},
		Gemini: GeminiConfig{
			Model:     "gemini-1.5-flash",
			JobsLimit: 50,
		},
		Jobs: JobsConfig{
			LockTTL: 30 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Policy projects the billing and generation settings onto the domain rules.
func (c Config) Policy() rules.Policy {
	return rules.Policy{
		BillingCycle:           c.Billing.Cycle,
		PastDueGrace:           c.Billing.PastDueGrace,
		FreeGenerationInterval: c.Generation.FreeIntervalDays,
		ProGenerationInterval:  c.Generation.ProIntervalDays,
	}
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Generation.FreeIntervalDays <= 0 || c.Generation.ProIntervalDays <= 0 {
		return fmt.Errorf("generation intervals must be positive")
	}
	if c.Billing.Cycle <= 0 {
		return fmt.Errorf("billing.cycle must be positive")
	}
	if c.Billing.PastDueGrace < 0 {
		return fmt.Errorf("billing.past_due_grace must not be negative")
	}
	switch c.Mail.Delivery {
	case "direct", "queue", "log":
	default:
		return fmt.Errorf("unsupported mail.delivery %q", c.Mail.Delivery)
	}
	if c.IsProduction() && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	return nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	if v := os.Getenv("AMQP_QUEUE"); v != "" {
		cfg.AMQP.Queue = v
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := overrideDuration("JWT_ACCESS_TTL", &cfg.Auth.JWTAccessTTL); err != nil {
		return err
	}

	if v := os.Getenv("RAZORPAY_KEY_ID"); v != "" {
		cfg.Razorpay.KeyID = v
	}
	if v := os.Getenv("RAZORPAY_KEY_SECRET"); v != "" {
		cfg.Razorpay.KeySecret = v
	}
	if v := os.Getenv("RAZORPAY_WEBHOOK_SECRET"); v != "" {
		cfg.Razorpay.WebhookSecret = v
	}
	if v := os.Getenv("RAZORPAY_PRO_PLAN_ID"); v != "" {
		cfg.Razorpay.PlanID = v
	}
	if err := overrideInt("RAZORPAY_TOTAL_COUNT", &cfg.Razorpay.TotalCount); err != nil {
		return err
	}

	if v := os.Getenv("MAIL_DELIVERY"); v != "" {
		cfg.Mail.Delivery = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("POSTMARK_SERVER_TOKEN"); v != "" {
		cfg.Mail.PostmarkToken = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.Mail.From = v
	}
	if err := overrideDuration("MAIL_TIMEOUT", &cfg.Mail.Timeout); err != nil {
		return err
	}
	if err := overrideDuration("MAIL_WEBHOOK_TIMEOUT", &cfg.Mail.WebhookTimeout); err != nil {
		return err
	}

	if err := overrideDuration("BILLING_CYCLE", &cfg.Billing.Cycle); err != nil {
		return err
	}
	if err := overrideDuration("BILLING_PAST_DUE_GRACE", &cfg.Billing.PastDueGrace); err != nil {
		return err
	}
	if err := overrideDuration("BILLING_REMINDER_WINDOW", &cfg.Billing.ReminderWindow); err != nil {
		return err
	}

	if err := overrideInt("GENERATION_FREE_INTERVAL_DAYS", &cfg.Generation.FreeIntervalDays); err != nil {
		return err
	}
	if err := overrideInt("GENERATION_PRO_INTERVAL_DAYS", &cfg.Generation.ProIntervalDays); err != nil {
		return err
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL_NAME"); v != "" {
		cfg.Gemini.Model = v
	}

	if err := overrideDuration("JOBS_LOCK_TTL", &cfg.Jobs.LockTTL); err != nil {
		return err
	}
	if err := overrideBool("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
