package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultAutoReleaseWindow = 72 * time.Hour
	defaultTimeoutCeiling    = 30 * 24 * time.Hour
	defaultSweepInterval     = 5 * time.Minute
)

type Config struct {
	RunAddress           string `env:"RUN_ADDRESS"`
	DatabaseDSN          string `env:"DATABASE_URI"`
	MigrationsDir        string `env:"MIGRATIONS_DIR"`
	JWTUserSecret        string `env:"JWT_USER_SECRET"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`
	// AutoReleaseWindow сколько покупателю дается на подтверждение доставки.
	AutoReleaseWindow time.Duration `env:"AUTO_RELEASE_WINDOW"`
	// TimeoutCeiling абсолютный потолок жизни незавершенного заказа.
	TimeoutCeiling time.Duration `env:"ORDER_TIMEOUT_CEILING"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	// .env опционален, в проде переменные приходят из окружения.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTUserSecret == "" {
		return nil, errors.New("JWT user secret is not set")
	}
	if conf.PaymentWebhookSecret == "" {
		return nil, errors.New("payment webhook secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTUserSecret, "j", "", "JWT secret for user tokens")
	flag.StringVar(&flagConfig.PaymentWebhookSecret, "w", "", "HMAC secret of the payment gateway webhook")
	flag.DurationVar(&flagConfig.AutoReleaseWindow, "r", defaultAutoReleaseWindow, "Buyer confirmation window")
	flag.DurationVar(&flagConfig.TimeoutCeiling, "t", defaultTimeoutCeiling, "Absolute order lifetime ceiling")
	flag.DurationVar(&flagConfig.SweepInterval, "s", defaultSweepInterval, "Interval between scheduler sweeps")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:           defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:          defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:        defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTUserSecret:        defaultIfBlank(envConfig.JWTUserSecret, flagsConfig.JWTUserSecret),
		PaymentWebhookSecret: defaultIfBlank(envConfig.PaymentWebhookSecret, flagsConfig.PaymentWebhookSecret),
		AutoReleaseWindow:    defaultIfZero(envConfig.AutoReleaseWindow, flagsConfig.AutoReleaseWindow),
		TimeoutCeiling:       defaultIfZero(envConfig.TimeoutCeiling, flagsConfig.TimeoutCeiling),
		SweepInterval:        defaultIfZero(envConfig.SweepInterval, flagsConfig.SweepInterval),
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func defaultIfZero(value time.Duration, defaultValue time.Duration) time.Duration {
	if value == 0 {
		return defaultValue
	}
	return value
}
