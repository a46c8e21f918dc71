package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Audience   string
	ExpireDays int
}

// AdminConfig bootstraps the first admin account when none exists.
type AdminConfig struct {
	Email    string
	Password string
	FullName string
}

type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	FromName     string
	AppURL       string
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpireDays) * 24 * time.Hour
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func (s *ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "alumnihub")
	v.SetDefault("DATABASE_PASSWORD", "alumnihub_secret")
	v.SetDefault("DATABASE_NAME", "alumnihub")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_ISSUER", "alumni-hub-api")
	v.SetDefault("JWT_AUDIENCE", "alumni-hub-client")
	v.SetDefault("JWT_EXPIRE_DAYS", 7)
	v.SetDefault("ADMIN_EMAIL", "admin@alumnihub.local")
	v.SetDefault("ADMIN_NAME", "System Administrator")
	v.SetDefault("RESEND_FROM_EMAIL", "onboarding@resend.dev")
	v.SetDefault("RESEND_FROM_NAME", "Alumni Hub")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 900)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET_KEY"),
			Issuer:     v.GetString("JWT_ISSUER"),
			Audience:   v.GetString("JWT_AUDIENCE"),
			ExpireDays: v.GetInt("JWT_EXPIRE_DAYS"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			FullName: v.GetString("ADMIN_NAME"),
		},
		Email: EmailConfig{
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			FromEmail:    v.GetString("RESEND_FROM_EMAIL"),
			FromName:     v.GetString("RESEND_FROM_NAME"),
			AppURL:       v.GetString("APP_URL"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}
