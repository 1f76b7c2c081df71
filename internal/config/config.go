package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/banking/sanctions-screening/internal/screening"
)

// Config holds all configuration for the sanctions screening service
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Screening     ScreeningConfig     `mapstructure:"screening"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	ReferenceList ReferenceListConfig `mapstructure:"reference_list"`
	Telemetry     TelemetryConfig     `mapstructure:"telemetry"`
	Security      SecurityConfig      `mapstructure:"security"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxRequestSize  int64         `mapstructure:"max_request_size"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d&pool_max_conn_lifetime=%s&pool_max_conn_idle_time=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
		d.MaxOpenConns, d.MinIdleConns, d.ConnMaxLifetime, d.ConnMaxIdleTime,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	PaymentTopic  string   `mapstructure:"payment_topic"`
	ResultTopic   string   `mapstructure:"result_topic"`
}

// FuzzyWeightsConfig weights the fuzzy sub-algorithms
type FuzzyWeightsConfig struct {
	Ratio    float64 `mapstructure:"ratio"`
	TokenSet float64 `mapstructure:"token_set"`
	Partial  float64 `mapstructure:"partial"`
}

// ScreeningConfig holds matching thresholds and decision policy
type ScreeningConfig struct {
	SimilarityThreshold float64            `mapstructure:"similarity_threshold"`
	FuzzyThreshold      float64            `mapstructure:"fuzzy_threshold"`
	LowRiskThreshold    float64            `mapstructure:"low_risk_threshold"`
	MediumRiskThreshold float64            `mapstructure:"medium_risk_threshold"`
	HighRiskThreshold   float64            `mapstructure:"high_risk_threshold"`
	FuzzyWeights        FuzzyWeightsConfig `mapstructure:"fuzzy_weights"`
	FieldBonus          float64            `mapstructure:"field_bonus"`
	SemanticTimeout     time.Duration      `mapstructure:"semantic_timeout"`
	MaxScreeningLatency time.Duration      `mapstructure:"max_screening_latency"`
}

// EngineConfig converts to the immutable engine configuration
func (s ScreeningConfig) EngineConfig() screening.Config {
	return screening.Config{
		SimilarityThreshold: s.SimilarityThreshold,
		FuzzyThreshold:      s.FuzzyThreshold,
		LowRiskThreshold:    s.LowRiskThreshold,
		MediumRiskThreshold: s.MediumRiskThreshold,
		HighRiskThreshold:   s.HighRiskThreshold,
		FuzzyWeights: screening.FuzzyWeights{
			Ratio:    s.FuzzyWeights.Ratio,
			TokenSet: s.FuzzyWeights.TokenSet,
			Partial:  s.FuzzyWeights.Partial,
		},
		FieldBonus:          s.FieldBonus,
		SemanticTimeout:     s.SemanticTimeout,
		MaxScreeningLatency: s.MaxScreeningLatency,
	}
}

// EmbeddingConfig holds the semantic similarity provider configuration.
// An empty endpoint disables semantic matching.
type EmbeddingConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Model           string        `mapstructure:"model"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	CacheSize       int           `mapstructure:"cache_size"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RedisTier       bool          `mapstructure:"redis_tier"`
	WarmTimeout     time.Duration `mapstructure:"warm_timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerOpenFor  time.Duration `mapstructure:"breaker_open_for"`
	BreakerHalfOpen uint32        `mapstructure:"breaker_half_open_requests"`
}

// Reference list sources
const (
	SourceSample   = "sample"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// ReferenceListConfig selects where sanctions entries come from
type ReferenceListConfig struct {
	Source          string        `mapstructure:"source"`
	Path            string        `mapstructure:"path"`
	FileSource      string        `mapstructure:"file_source"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	ServiceName   string  `mapstructure:"service_name"`
	Environment   string  `mapstructure:"environment"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	SamplingRatio float64 `mapstructure:"sampling_ratio"`
	Debug         bool    `mapstructure:"debug"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load loads configuration from environment and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("SANCTIONS_SCREENING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/sanctions-screening")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults + env
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	var errs []error

	if err := c.Screening.EngineConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("screening: %w", err))
	}

	switch c.ReferenceList.Source {
	case SourceSample:
	case SourceFile:
		if c.ReferenceList.Path == "" {
			errs = append(errs, errors.New("reference_list: path is required for the file source"))
		}
	case SourcePostgres:
		if !c.Database.Enabled {
			errs = append(errs, errors.New("reference_list: the postgres source requires database.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("reference_list: unknown source %q", c.ReferenceList.Source))
	}

	if c.Embedding.Endpoint != "" && c.Embedding.CacheSize <= 0 {
		errs = append(errs, errors.New("embedding: cache_size must be positive"))
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka: at least one broker is required"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8085)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_request_size", 1048576) // 1MB

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "sanctions_db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.min_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")

	// Redis defaults (optimized for low latency)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.min_idle_conns", 10)
	v.SetDefault("redis.max_retries", 1)
	v.SetDefault("redis.dial_timeout", "2s")
	v.SetDefault("redis.read_timeout", "50ms")
	v.SetDefault("redis.write_timeout", "50ms")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.client_id", "sanctions-screening")
	v.SetDefault("kafka.consumer_group", "sanctions-screening-group")
	v.SetDefault("kafka.payment_topic", "payment_messages")
	v.SetDefault("kafka.result_topic", "screening_results")

	// Screening defaults
	defaults := screening.DefaultConfig()
	v.SetDefault("screening.similarity_threshold", defaults.SimilarityThreshold)
	v.SetDefault("screening.fuzzy_threshold", defaults.FuzzyThreshold)
	v.SetDefault("screening.low_risk_threshold", defaults.LowRiskThreshold)
	v.SetDefault("screening.medium_risk_threshold", defaults.MediumRiskThreshold)
	v.SetDefault("screening.high_risk_threshold", defaults.HighRiskThreshold)
	v.SetDefault("screening.fuzzy_weights.ratio", defaults.FuzzyWeights.Ratio)
	v.SetDefault("screening.fuzzy_weights.token_set", defaults.FuzzyWeights.TokenSet)
	v.SetDefault("screening.fuzzy_weights.partial", defaults.FuzzyWeights.Partial)
	v.SetDefault("screening.field_bonus", defaults.FieldBonus)
	v.SetDefault("screening.semantic_timeout", defaults.SemanticTimeout)
	v.SetDefault("screening.max_screening_latency", defaults.MaxScreeningLatency)

	// Embedding defaults
	v.SetDefault("embedding.endpoint", "")
	v.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	v.SetDefault("embedding.request_timeout", "2s")
	v.SetDefault("embedding.cache_size", 10000)
	v.SetDefault("embedding.cache_ttl", "24h")
	v.SetDefault("embedding.redis_tier", false)
	v.SetDefault("embedding.warm_timeout", "2m")
	v.SetDefault("embedding.breaker_failures", 5)
	v.SetDefault("embedding.breaker_open_for", "30s")
	v.SetDefault("embedding.breaker_half_open_requests", 1)

	// Reference list defaults
	v.SetDefault("reference_list.source", SourceSample)
	v.SetDefault("reference_list.path", "")
	v.SetDefault("reference_list.file_source", "FILE")
	v.SetDefault("reference_list.refresh_interval", "24h")

	// Telemetry defaults
	v.SetDefault("telemetry.service_name", "sanctions-screening")
	v.SetDefault("telemetry.environment", "development")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sampling_ratio", 0.1)
	v.SetDefault("telemetry.debug", false)

	// Security defaults
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.allowed_origins", []string{"*"})
}
