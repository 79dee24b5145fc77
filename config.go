package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"tryognik-dashboard/internal/audit"
	"tryognik-dashboard/internal/budget/interfaces"
)

type config struct {
	HTTPAddr         string        `yaml:"http_addr"`
	JWTSecret        string        `yaml:"auth_jwt_secret"`
	DatabaseURL      string        `yaml:"database_url"`
	SampleCSVPath    string        `yaml:"sample_csv_path"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	AuditLogCapacity int           `yaml:"audit_log_capacity"`
	ReportTitle      string        `yaml:"report_title"`
	ReportFilename   string        `yaml:"report_filename"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
}

// loadConfig reads the environment, then overlays the YAML file at path
// (or DASHBOARD_CONFIG when path is empty).
func loadConfig(path string) (config, error) {
	cfg := config{
		HTTPAddr:         getenvDefault("HTTP_ADDR", ":4000"),
		JWTSecret:        getenvDefault("AUTH_JWT_SECRET", ""),
		DatabaseURL:      getenvDefault("DATABASE_URL", ""),
		SampleCSVPath:    getenvDefault("SAMPLE_CSV_PATH", ""),
		MaxUploadBytes:   getenvInt64Default("MAX_UPLOAD_BYTES", interfaces.DefaultMaxUploadBytes),
		AuditLogCapacity: getenvIntDefault("AUDIT_LOG_CAPACITY", audit.DefaultCapacity),
		ReportTitle:      getenvDefault("REPORT_TITLE", interfaces.DefaultReportTitle),
		ReportFilename:   getenvDefault("REPORT_FILENAME", interfaces.DefaultReportFilename),
		ShutdownTimeout:  getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if path == "" {
		path = os.Getenv("DASHBOARD_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: http_addr required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("config: max_upload_bytes must be positive")
	}
	if c.AuditLogCapacity <= 0 {
		return errors.New("config: audit_log_capacity must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: shutdown_timeout must be positive")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64Default(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
