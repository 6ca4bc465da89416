package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Redis    RedisConfig    `json:"redis"`
	Postgres PostgresConfig `json:"postgres"`
	Auth     AuthConfig     `json:"auth"`
	Pipeline PipelineConfig `json:"pipeline"`
	Upstream UpstreamConfig `json:"upstream"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

type AuthConfig struct {
	JWTSecret     string `json:"-"` // from env JWT_SECRET, never from file
	TokenTTLHours int    `json:"token_ttl_hours"`
	CookieName    string `json:"cookie_name"`
	LoginPath     string `json:"login_path"`
}

// LimiterClassConfig holds one sliding-window budget.
type LimiterClassConfig struct {
	Max           int `json:"max"`
	WindowSeconds int `json:"window_seconds"`
}

func (l LimiterClassConfig) Window() time.Duration {
	return time.Duration(l.WindowSeconds) * time.Second
}

type PipelineConfig struct {
	APIPrefix   string `json:"api_prefix"`
	AuthMarker  string `json:"auth_marker"`
	OrderMarker string `json:"order_marker"`

	DefaultLimit LimiterClassConfig `json:"default_limit"`
	AuthLimit    LimiterClassConfig `json:"auth_limit"`
	OrderLimit   LimiterClassConfig `json:"order_limit"`

	PublicPaths     []string `json:"public_paths"`
	ProtectedPaths  []string `json:"protected_paths"`
	PrivilegedPaths []string `json:"privileged_paths"`

	SessionTTLSeconds    int `json:"session_ttl_seconds"`
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

func (p PipelineConfig) SessionTTL() time.Duration {
	return time.Duration(p.SessionTTLSeconds) * time.Second
}

func (p PipelineConfig) SweepInterval() time.Duration {
	return time.Duration(p.SweepIntervalSeconds) * time.Second
}

type UpstreamConfig struct {
	Targets               []string `json:"targets"`
	Strategy              string   `json:"strategy"`
	BreakerMaxFailures    int      `json:"breaker_max_failures"`
	BreakerTimeoutSeconds int      `json:"breaker_timeout_seconds"`
	HealthPath            string   `json:"health_path"`
	HealthIntervalSeconds int      `json:"health_interval_seconds"`
}

// Load reads the JSON config file, applies compiled-in defaults for anything
// the file leaves unset, then overlays secrets from the environment.
func Load(path string) (*Config, error) {
	config := defaults()

	file, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		config.Postgres.DSN = dsn
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
			CookieName:    "session_token",
			LoginPath:     "/auth/welcome",
		},
		Pipeline: PipelineConfig{
			APIPrefix:   "/api",
			AuthMarker:  "/auth",
			OrderMarker: "/order",

			DefaultLimit: LimiterClassConfig{Max: 10, WindowSeconds: 10},
			AuthLimit:    LimiterClassConfig{Max: 5, WindowSeconds: 60},
			OrderLimit:   LimiterClassConfig{Max: 20, WindowSeconds: 60},

			PublicPaths: []string{
				"/",
				"/auth/welcome",
				"/auth/signup",
				"/auth/verify",
				"/auth/callback",
				"/api/auth/login",
				"/api/auth/register",
				"/api/health",
			},
			ProtectedPaths: []string{
				"/Order",
				"/profile",
				"/points",
				"/api/orders",
				"/api/profile",
			},
			PrivilegedPaths: []string{
				"/admin",
				"/api/admin",
			},

			SessionTTLSeconds:    60,
			SweepIntervalSeconds: 300,
		},
		Upstream: UpstreamConfig{
			Strategy:              "round-robin",
			BreakerMaxFailures:    5,
			BreakerTimeoutSeconds: 30,
			HealthPath:            "/health",
			HealthIntervalSeconds: 10,
		},
	}
}
