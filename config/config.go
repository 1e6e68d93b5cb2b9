package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Processor ProcessorConfig `envPrefix:"PROCESSOR_"`
	Policy    PolicyConfig    `envPrefix:"POLICY_"`
	Log       LogConfig       `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	Env          string        `env:"ENV" envDefault:"development"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	DSN             string        `env:"DSN" envDefault:"shiftly:shiftly@tcp(localhost:3306)/shiftly?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"ACCESS_SECRET" envDefault:"change-me-in-production"`
	RefreshSecret string        `env:"REFRESH_SECRET" envDefault:"change-me-refresh"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
	Issuer        string        `env:"ISSUER" envDefault:"shiftly"`
}

// ProcessorConfig configures the external payment/payout provider.
type ProcessorConfig struct {
	BaseURL        string `env:"BASE_URL" envDefault:"https://api.railspay.example.com"`
	APIKey         string `env:"API_KEY" envDefault:""`
	CallbackToken  string `env:"CALLBACK_TOKEN" envDefault:""` // shared secret checked on X-Callback-Token
	WebhookBaseURL string `env:"WEBHOOK_BASE_URL" envDefault:""`
	UseStub        bool   `env:"USE_STUB" envDefault:"true"`
}

// PolicyConfig carries the money-movement policy constants.
type PolicyConfig struct {
	MinTopUpCents    int64         `env:"MIN_TOPUP_CENTS" envDefault:"1000000"`  // IDR 10,000.00
	MinPayoutCents   int64         `env:"MIN_PAYOUT_CENTS" envDefault:"5000000"` // IDR 50,000.00
	PayoutFeeBps     int64         `env:"PAYOUT_FEE_BPS" envDefault:"250"`       // 2.50% in basis points
	FreeWeeklyPayout bool          `env:"FREE_WEEKLY_PAYOUT" envDefault:"true"`
	ReviewWindow     time.Duration `env:"REVIEW_WINDOW" envDefault:"72h"`
	SettlementLag    time.Duration `env:"SETTLEMENT_LAG" envDefault:"24h"`
	RateLimitPerSec  float64       `env:"RATE_LIMIT_PER_SEC" envDefault:"20"`
	RateLimitBurst   int           `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
