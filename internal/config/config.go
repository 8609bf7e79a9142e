package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings, populated from environment variables.
// One Config serves both binaries; each reads the subset it needs.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Prediction service artifacts.
	ModelPath   string
	ColumnsPath string

	// Audit trail (feature-flagged; disabled unless AUDIT_ENABLED).
	AuditEnabled       bool
	KafkaBrokers       []string
	KafkaAuditTopic    string
	AuditQueueSize     int
	AuditBatchSize     int
	AuditFlushInterval time.Duration

	// Scoring result cache; 0 disables it.
	PredictionCacheSize int

	// Dashboard aggregation input.
	DatasetPath   string
	DashboardAddr string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MODEL_PATH", "artifacts/model.json")
	v.SetDefault("COLUMNS_PATH", "artifacts/columns.json")
	v.SetDefault("AUDIT_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_AUDIT_TOPIC", "flight-delay-predictions")
	v.SetDefault("AUDIT_QUEUE_SIZE", 256)
	v.SetDefault("AUDIT_BATCH_SIZE", 32)
	v.SetDefault("AUDIT_FLUSH_INTERVAL", "2s")
	v.SetDefault("PREDICTION_CACHE_SIZE", 1024)
	v.SetDefault("DATASET_PATH", "data/airlines.csv")
	v.SetDefault("DASHBOARD_ADDR", ":8081")

	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	flushInterval, err := time.ParseDuration(v.GetString("AUDIT_FLUSH_INTERVAL"))
	if err != nil || flushInterval <= 0 {
		return nil, errors.New("invalid AUDIT_FLUSH_INTERVAL")
	}

	cfg := &Config{
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		ShutdownTimeout: shutdownTimeout,
		ModelPath:       v.GetString("MODEL_PATH"),
		ColumnsPath:     v.GetString("COLUMNS_PATH"),
		AuditEnabled:    v.GetBool("AUDIT_ENABLED"),
		KafkaBrokers:    splitBrokers(v.GetString("KAFKA_BROKERS")),
		KafkaAuditTopic: strings.TrimSpace(v.GetString("KAFKA_AUDIT_TOPIC")),

		AuditQueueSize:     v.GetInt("AUDIT_QUEUE_SIZE"),
		AuditBatchSize:     v.GetInt("AUDIT_BATCH_SIZE"),
		AuditFlushInterval: flushInterval,

		PredictionCacheSize: v.GetInt("PREDICTION_CACHE_SIZE"),

		DatasetPath:   v.GetString("DATASET_PATH"),
		DashboardAddr: v.GetString("DASHBOARD_ADDR"),
	}

	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.AuditEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("AUDIT_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAuditTopic == "" {
			return nil, errors.New("AUDIT_ENABLED is true but KAFKA_AUDIT_TOPIC is empty")
		}
		if cfg.AuditQueueSize <= 0 || cfg.AuditBatchSize <= 0 {
			return nil, errors.New("AUDIT_QUEUE_SIZE and AUDIT_BATCH_SIZE must be positive")
		}
	}
	if cfg.PredictionCacheSize < 0 {
		return nil, errors.New("PREDICTION_CACHE_SIZE must not be negative")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
