package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// MemoryDatabase selects the in-process store instead of postgres.
const MemoryDatabase = "memory"

// Config is built once in main and handed to every component that needs it.
type Config struct {
	Port           string        `envconfig:"PORT" default:"8000"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxIdle      int           `envconfig:"DB_MAX_IDLE" default:"10"`
	DBMaxOpen      int           `envconfig:"DB_MAX_OPEN" default:"30"`
	DBConnLifetime time.Duration `envconfig:"DB_CONN_LIFETIME" default:"1h"`

	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"24"`
	AuthRequired   bool   `envconfig:"AUTH_REQUIRED" default:"true"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	BotToken     string   `envconfig:"BOT_TOKEN"`
	AdminChatIDs []string `envconfig:"ADMIN_CHAT_IDS"`

	TwilioAccountSID string   `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string   `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string   `envconfig:"TWILIO_FROM_NUMBER"`
	SMSRecipients    []string `envconfig:"SMS_RECIPIENTS"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"salon.appointments"`

	NotifyTimeout  time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"5s"`
	CashReportSpec string        `envconfig:"CASH_REPORT_SPEC" default:"0 21 * * *"`
	Timezone       string        `envconfig:"TIMEZONE" default:"Europe/Moscow"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`

	SeedMasters []string `envconfig:"SEED_MASTERS"`

	location *time.Location
}

// Load reads environment variables into Config and validates them.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		problems = append(problems, "JWT_SECRET cannot be empty")
	}
	if cfg.JWTExpiryHours <= 0 {
		problems = append(problems, fmt.Sprintf("JWT_EXPIRY_HOURS must be positive, got: %d", cfg.JWTExpiryHours))
	}
	if cfg.DBMaxOpen < cfg.DBMaxIdle {
		problems = append(problems, fmt.Sprintf("DB_MAX_OPEN (%d) must be >= DB_MAX_IDLE (%d)", cfg.DBMaxOpen, cfg.DBMaxIdle))
	}
	if cfg.NotifyTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("NOTIFY_TIMEOUT must be positive, got: %s", cfg.NotifyTimeout))
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		problems = append(problems, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.CashReportSpec != "" {
		if _, err := cron.ParseStandard(cfg.CashReportSpec); err != nil {
			problems = append(problems, fmt.Sprintf("CASH_REPORT_SPEC is not a valid cron spec: %v", err))
		}
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE is unknown: %s", cfg.Timezone))
	} else {
		cfg.location = loc
	}
	if (cfg.TwilioAccountSID == "") != (cfg.TwilioAuthToken == "") {
		problems = append(problems, "TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be set together")
	}

	if len(problems) > 0 {
		msg := "configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// Location is the salon's local timezone, used for "today".
func (cfg *Config) Location() *time.Location {
	if cfg.location == nil {
		return time.Local
	}
	return cfg.location
}

func (cfg *Config) JWTExpiry() time.Duration {
	return time.Duration(cfg.JWTExpiryHours) * time.Hour
}

func (cfg *Config) TwilioEnabled() bool {
	return cfg.TwilioAccountSID != "" && cfg.TwilioFromNumber != "" && len(cfg.SMSRecipients) > 0
}

func (cfg *Config) TelegramEnabled() bool {
	return cfg.BotToken != "" && len(cfg.AdminChatIDs) > 0
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic != ""
}
