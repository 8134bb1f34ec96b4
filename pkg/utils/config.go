package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Broker   BrokerConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	Timezone    string
	FrontendURL string
	CORSOrigins []string
}

// Location resolves Timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type PaymentConfig struct {
	Provider            string
	Currency            string
	CheckoutExpiry      time.Duration
	StripeSecretKey     string
	StripeWebhookSecret string
	OmisePublicKey      string
	OmiseSecretKey      string
	OmiseSourceType     string
}

type BrokerConfig struct {
	URL      string
	Exchange string
}

type JobsConfig struct {
	Enabled  bool
	Schedule string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "room-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("PAYMENT_PROVIDER", "stripe")
	v.SetDefault("PAYMENT_CURRENCY", "eur")
	v.SetDefault("CHECKOUT_EXPIRY", "30m")
	v.SetDefault("OMISE_SOURCE_TYPE", "promptpay")
	v.SetDefault("AMQP_EXCHANGE", "room-booking.events")
	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("JOBS_SCHEDULE", "*/5 * * * *")
}

// LoadConfig reads .env when present, then lets the environment override it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.AutomaticEnv()

	return buildConfig(v)
}

func buildConfig(v *viper.Viper) (*Config, error) {
	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			Timezone:    v.GetString("TIMEZONE"),
			FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			Issuer:    v.GetString("JWT_ISSUER"),
		},
		Payment: PaymentConfig{
			Provider:            strings.ToLower(v.GetString("PAYMENT_PROVIDER")),
			Currency:            strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
			CheckoutExpiry:      v.GetDuration("CHECKOUT_EXPIRY"),
			StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			OmisePublicKey:      v.GetString("OMISE_PUBLIC_KEY"),
			OmiseSecretKey:      v.GetString("OMISE_SECRET_KEY"),
			OmiseSourceType:     v.GetString("OMISE_SOURCE_TYPE"),
		},
		Broker: BrokerConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Jobs: JobsConfig{
			Enabled:  v.GetBool("JOBS_ENABLED"),
			Schedule: v.GetString("JOBS_SCHEDULE"),
		},
	}

	if config.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	switch config.Payment.Provider {
	case "stripe", "omise":
	default:
		return nil, fmt.Errorf("unsupported PAYMENT_PROVIDER %q", config.Payment.Provider)
	}
	if config.Payment.CheckoutExpiry < 30*time.Minute {
		// providers refuse shorter checkout windows
		config.Payment.CheckoutExpiry = 30 * time.Minute
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
