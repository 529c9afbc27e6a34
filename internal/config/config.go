package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Sink selection values.
const (
	SinkKafka    = "kafka"
	SinkPostgres = "postgres"
	SinkBoth     = "both"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Storms to ingest each cycle, as ATCF identifiers ("AL092005").
	StormIDs     []string
	FileDeck     string
	Mode         string
	RecordTypes  []string
	PollInterval time.Duration

	FTPHost    string
	FTPTimeout time.Duration

	CatalogURL       string
	CatalogTimeout   time.Duration
	CatalogCacheSize int

	Sink           string
	KafkaBrokers   []string
	KafkaSinkTopic string
	PostgresDSN    string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}
	ftpTimeout, err := parsePositiveDuration("FTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	catalogTimeout, err := parsePositiveDuration("CATALOG_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StormIDs:     splitList(os.Getenv("STORM_IDS")),
		FileDeck:     sharedcfg.EnvOrDefault("FILE_DECK", "b"),
		Mode:         sharedcfg.EnvOrDefault("ATCF_MODE", "historical"),
		RecordTypes:  splitList(os.Getenv("RECORD_TYPES")),
		PollInterval: pollInterval,

		FTPHost:    sharedcfg.EnvOrDefault("FTP_HOST", "ftp.nhc.noaa.gov:21"),
		FTPTimeout: ftpTimeout,

		CatalogURL:       sharedcfg.EnvOrDefault("CATALOG_URL", "https://ftp.nhc.noaa.gov/atcf/index/storm_list.txt"),
		CatalogTimeout:   catalogTimeout,
		CatalogCacheSize: parseCatalogCacheSize(),

		Sink:           sharedcfg.EnvOrDefault("SINK", SinkKafka),
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "storm-track-records"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.FileDeck {
	case "a", "b", "f":
	default:
		return fmt.Errorf("FILE_DECK must be one of a, b, f; got %q", c.FileDeck)
	}

	switch c.Mode {
	case "historical", "realtime":
	default:
		return fmt.Errorf("ATCF_MODE must be historical or realtime; got %q", c.Mode)
	}

	switch c.Sink {
	case SinkKafka, SinkPostgres, SinkBoth:
	default:
		return fmt.Errorf("SINK must be one of %s, %s, %s; got %q", SinkKafka, SinkPostgres, SinkBoth, c.Sink)
	}

	if c.KafkaSink() {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if c.PostgresSink() && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when SINK includes postgres")
	}

	return nil
}

// KafkaSink reports whether decoded records are published to Kafka.
func (c *Config) KafkaSink() bool { return c.Sink == SinkKafka || c.Sink == SinkBoth }

// PostgresSink reports whether decoded records are loaded into Postgres.
func (c *Config) PostgresSink() bool { return c.Sink == SinkPostgres || c.Sink == SinkBoth }

func parsePositiveDuration(key, def string) (time.Duration, error) {
	raw := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseCatalogCacheSize() int {
	if s := os.Getenv("CATALOG_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}

// splitList splits a comma-separated env value into trimmed entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
