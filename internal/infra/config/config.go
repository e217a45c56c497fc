package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Predictor PredictorConfig `yaml:"predictor"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	History   HistoryConfig   `yaml:"history"`
	State     StateConfig     `yaml:"state"`
	Events    EventsConfig    `yaml:"events"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	ShutdownGrace  time.Duration   `yaml:"shutdownGrace"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
	Auth           AuthConfig      `yaml:"auth"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for POST requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig guards the write endpoints with HS256 bearer tokens.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
	Issuer  string `yaml:"issuer"`
}

// PredictorConfig points at the external prediction service.
type PredictorConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// DashboardConfig controls curve shaping and history paging.
type DashboardConfig struct {
	Shaping        metrics.Shaping `yaml:"shaping"`
	HistoryLimit   int             `yaml:"historyLimit"`
	MaxHistory     int             `yaml:"maxHistory"`
	LabelStep      time.Duration   `yaml:"labelStep"`
	ArchiveReports bool            `yaml:"archiveReports"`
}

// HistoryConfig selects the snapshot history backend. Postgres wins when both
// are set; neither means in-memory.
type HistoryConfig struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ClickHouseConfig contains connection details for the columnar history.
type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StateConfig controls where the snapshot pair is persisted.
type StateConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains connection information for the Valkey state store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Key     string `yaml:"key"`
}

// EventsConfig lists the sinks for snapshot events.
type EventsConfig struct {
	MQTT  MQTTConfig  `yaml:"mqtt"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"clientId"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ArchiveConfig configures the S3 compatible report archive.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_SHUTDOWN_GRACE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ShutdownGrace = d
		}
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		cfg.HTTP.Auth.Enabled = parseBool(v)
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.HTTP.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.HTTP.Auth.Issuer = v
	}
	if v := os.Getenv("PREDICTOR_BASE_URL"); v != "" {
		cfg.Predictor.BaseURL = v
	}
	if v := os.Getenv("PREDICTOR_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Predictor.Timeout = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_TIME_CONSTANT"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Dashboard.Shaping.TimeConstant = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_HISTORY_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.HistoryLimit = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_ARCHIVE_REPORTS"); v != "" {
		cfg.Dashboard.ArchiveReports = parseBool(v)
	}
	if v := os.Getenv("HISTORY_POSTGRES_DSN"); v != "" {
		cfg.History.Postgres.DSN = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("HISTORY_CLICKHOUSE_ADDR"); v != "" {
		cfg.History.ClickHouse.Addr = v
	}
	if v := os.Getenv("HISTORY_CLICKHOUSE_DB"); v != "" {
		cfg.History.ClickHouse.Database = v
	}
	if v := os.Getenv("HISTORY_CLICKHOUSE_USER"); v != "" {
		cfg.History.ClickHouse.Username = v
	}
	if v := os.Getenv("HISTORY_CLICKHOUSE_PASS"); v != "" {
		cfg.History.ClickHouse.Password = v
	}
	if v := os.Getenv("STATE_REDIS_ENABLED"); v != "" {
		cfg.State.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("STATE_REDIS_ADDR"); v != "" {
		cfg.State.Redis.Addr = v
	}
	if v := os.Getenv("MQTT_ENABLED"); v != "" {
		cfg.Events.MQTT.Enabled = parseBool(v)
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.Events.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.Events.MQTT.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.Events.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.Events.MQTT.Password = v
	}
	if v := os.Getenv("MQTT_TOPIC"); v != "" {
		cfg.Events.MQTT.Topic = v
	}
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.Events.Kafka.Enabled = parseBool(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Events.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Events.Kafka.Topic = v
	}
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHIVE_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("ARCHIVE_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_REGION"); v != "" {
		cfg.Archive.Region = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:       ":8080",
			ReadTimeout:   5 * time.Second,
			WriteTimeout:  15 * time.Second,
			ShutdownGrace: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     false,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/snapshots",
				},
			},
			Auth: AuthConfig{
				Issuer: "solar-dashboard",
			},
		},
		Predictor: PredictorConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			Shaping:      metrics.DefaultShaping(),
			HistoryLimit: 20,
			MaxHistory:   500,
			LabelStep:    10 * time.Second,
		},
		History: HistoryConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			ClickHouse: ClickHouseConfig{
				Database: "solar",
				Username: "default",
			},
		},
		State: StateConfig{
			Redis: RedisConfig{
				Key: "solar:dashboard:state",
			},
		},
		Events: EventsConfig{
			MQTT: MQTTConfig{
				Broker:   "tcp://localhost:1883",
				ClientID: "solar-dashboard",
				Topic:    "solar/dashboard/snapshots",
				QoS:      1,
			},
			Kafka: KafkaConfig{
				Topic: "solar.dashboard.snapshots",
			},
		},
		Archive: ArchiveConfig{
			Bucket: "solar-dashboard-reports",
			Region: "auto",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.HTTP.Auth.Enabled && len(c.HTTP.Auth.Secret) < 16 {
		return errors.New("http.auth.secret must be at least 16 bytes when auth is enabled")
	}
	if strings.TrimSpace(c.Predictor.BaseURL) == "" {
		return errors.New("predictor.baseUrl cannot be empty")
	}
	if c.Predictor.Timeout <= 0 {
		return errors.New("predictor.timeout must be positive")
	}
	shaping := c.Dashboard.Shaping
	if shaping.TimeConstant <= 0 {
		return errors.New("dashboard.shaping.timeConstant must be positive")
	}
	if shaping.LossBase < 0 || shaping.LossStep < 0 || shaping.NetBase < 0 || shaping.NetStep < 0 {
		return errors.New("dashboard.shaping coefficients must be non-negative")
	}
	if c.Dashboard.HistoryLimit < 0 || c.Dashboard.MaxHistory < 0 {
		return errors.New("dashboard history limits cannot be negative")
	}
	if c.Dashboard.LabelStep < time.Second {
		return errors.New("dashboard.labelStep must be at least 1s")
	}
	if c.State.Redis.Enabled && strings.TrimSpace(c.State.Redis.Addr) == "" {
		return errors.New("state.redis.addr cannot be empty when redis state is enabled")
	}
	if c.Events.MQTT.Enabled {
		if strings.TrimSpace(c.Events.MQTT.Broker) == "" || strings.TrimSpace(c.Events.MQTT.Topic) == "" {
			return errors.New("events.mqtt.broker and events.mqtt.topic are required when mqtt is enabled")
		}
		if c.Events.MQTT.QoS > 2 {
			return errors.New("events.mqtt.qos must be 0, 1 or 2")
		}
	}
	if c.Events.Kafka.Enabled && (len(c.Events.Kafka.Brokers) == 0 || strings.TrimSpace(c.Events.Kafka.Topic) == "") {
		return errors.New("events.kafka.brokers and events.kafka.topic are required when kafka is enabled")
	}
	if c.Archive.Enabled && (strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "") {
		return errors.New("archive.endpoint and archive.bucket are required when archive is enabled")
	}
	return nil
}
