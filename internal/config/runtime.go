package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL     = "24h"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultOverdueInterval  = "1h"
	defaultRetentionWindow  = "720h" // 30 days
	defaultRetentionEvery   = "24h"
	defaultDispatchTimeout  = "5s"
	defaultEnableJobTickers = "true"
)

// RuntimeConfig is the env-driven process configuration, owned by the cmd
// entry points and handed down to the components that need it.
type RuntimeConfig struct {
	AppEnv    string
	JWTSecret string

	JWTAccessTTL time.Duration

	// OverdueScanInterval is both the scan period and the width of the
	// due-date window each scan covers.
	OverdueScanInterval time.Duration

	// RetentionWindow is how long read notifications are kept.
	RetentionWindow time.Duration
	RetentionEvery  time.Duration

	// DispatchTimeout bounds the notification-store write on the request
	// path so a hung dispatch never blocks the caller.
	DispatchTimeout time.Duration

	// EnableJobTickers runs the scheduled jobs in-process. Disable when an
	// external scheduler drives the /internal/jobs endpoints instead.
	EnableJobTickers bool
}

func LoadRuntimeConfig() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.OverdueScanInterval, err = parseDurationEnv("OVERDUE_SCAN_INTERVAL", defaultOverdueInterval)
	if err != nil {
		return nil, err
	}

	cfg.RetentionWindow, err = parseDurationEnv("NOTIFICATION_RETENTION", defaultRetentionWindow)
	if err != nil {
		return nil, err
	}

	cfg.RetentionEvery, err = parseDurationEnv("NOTIFICATION_RETENTION_INTERVAL", defaultRetentionEvery)
	if err != nil {
		return nil, err
	}

	cfg.DispatchTimeout, err = parseDurationEnv("NOTIFY_DISPATCH_TIMEOUT", defaultDispatchTimeout)
	if err != nil {
		return nil, err
	}

	cfg.EnableJobTickers = parseBoolEnv("ENABLE_JOB_TICKERS", defaultEnableJobTickers)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *RuntimeConfig) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.OverdueScanInterval <= 0 {
		return fmt.Errorf("OVERDUE_SCAN_INTERVAL must be > 0")
	}
	if cfg.RetentionWindow <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION must be > 0")
	}
	if cfg.RetentionEvery <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION_INTERVAL must be > 0")
	}
	if cfg.DispatchTimeout <= 0 {
		return fmt.Errorf("NOTIFY_DISPATCH_TIMEOUT must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
