package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// AppConfig carries everything the serve and consume modes need. Values
// resolve in three layers: built-in defaults, then an optional TOML file
// named by ENGINE_CONFIG, then environment variables.
type AppConfig struct {
	HTTPAddr             string
	RedisAddr            string
	RedisPass            string
	KafkaBrokers         []string
	KafkaTopic           string
	KafkaGroupID         string
	KafkaDeadLetterTopic string
	QueueSize            int
	ShutdownTimeout      time.Duration
}

// fileConfig is the TOML shape of AppConfig. Durations are strings so
// the file can say "30s" rather than nanosecond counts.
type fileConfig struct {
	HTTPAddr             string   `toml:"http_addr"`
	RedisAddr            string   `toml:"redis_addr"`
	RedisPass            string   `toml:"redis_pass"`
	KafkaBrokers         []string `toml:"kafka_brokers"`
	KafkaTopic           string   `toml:"kafka_topic"`
	KafkaGroupID         string   `toml:"kafka_group_id"`
	KafkaDeadLetterTopic string   `toml:"kafka_dead_letter_topic"`
	QueueSize            int      `toml:"queue_size"`
	ShutdownTimeout      string   `toml:"shutdown_timeout"`
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:        ":8025",
		KafkaBrokers:    []string{"kafka:9092"},
		KafkaTopic:      "engine.transactions",
		KafkaGroupID:    "payments-engine",
		QueueSize:       1024,
		ShutdownTimeout: 10 * time.Second,
	}

	if path := os.Getenv("ENGINE_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return AppConfig{}, err
		}
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPass = getEnv("REDIS_PASS", cfg.RedisPass)
	cfg.KafkaBrokers = getEnvSlice("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", cfg.KafkaGroupID)
	cfg.KafkaDeadLetterTopic = getEnv("KAFKA_DEAD_LETTER_TOPIC", cfg.KafkaDeadLetterTopic)

	var err error
	if cfg.QueueSize, err = getEnvInt("QUEUE_SIZE", cfg.QueueSize); err != nil {
		return AppConfig{}, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func overlayFile(cfg *AppConfig, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}

	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if fc.RedisAddr != "" {
		cfg.RedisAddr = fc.RedisAddr
	}
	if fc.RedisPass != "" {
		cfg.RedisPass = fc.RedisPass
	}
	if len(fc.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = fc.KafkaBrokers
	}
	if fc.KafkaTopic != "" {
		cfg.KafkaTopic = fc.KafkaTopic
	}
	if fc.KafkaGroupID != "" {
		cfg.KafkaGroupID = fc.KafkaGroupID
	}
	if fc.KafkaDeadLetterTopic != "" {
		cfg.KafkaDeadLetterTopic = fc.KafkaDeadLetterTopic
	}
	if fc.QueueSize > 0 {
		cfg.QueueSize = fc.QueueSize
	}
	if fc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("config file %s: shutdown_timeout: %w", path, err)
		}
		cfg.ShutdownTimeout = d
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
