package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	CasbinDatabase DatabaseConfig       `mapstructure:"casbin_database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Authorization  AuthorizationConfig  `mapstructure:"authorization"`
	Email          EmailConfig          `mapstructure:"email"`
	Password       PasswordConfig       `mapstructure:"password"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Media          MediaConfig          `mapstructure:"media"`
	S3             S3Config             `mapstructure:"s3"`
	Conversion     ConversionConfig     `mapstructure:"conversion"`
	Prediction     PredictionConfig     `mapstructure:"prediction"`
}

type DatabaseConfig struct {
	Host       string                  `mapstructure:"host"`
	Port       int                     `mapstructure:"port"`
	User       string                  `mapstructure:"user"`
	Password   string                  `mapstructure:"password"`
	DBName     string                  `mapstructure:"dbname"`
	SSLMode    string                  `mapstructure:"sslmode"`
	Pool       DatabasePoolConfig      `mapstructure:"pool"`
	Migrations DatabaseMigrationConfig `mapstructure:"migrations"`
	Logging    DatabaseLoggingConfig   `mapstructure:"logging"`
}

type DatabasePoolConfig struct {
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

type DatabaseMigrationConfig struct {
	AutoMigrate bool `mapstructure:"auto_migrate"`
	SafeMode    bool `mapstructure:"safe_mode"`
}

type DatabaseLoggingConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	SlowQueryThresholdMs int  `mapstructure:"slow_query_threshold_ms"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Environment    string          `mapstructure:"environment"`
	Domain         string          `mapstructure:"domain"`
	PublicURL      string          `mapstructure:"public_url"` // e.g. "https://api.iequus.pt"
	BodyLimitMB    int             `mapstructure:"body_limit_mb"`
	Databases      []string        `mapstructure:"databases"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	JWT               JWTConfig `mapstructure:"jwt"`
	MinPasswordLength int       `mapstructure:"min_password_length"`
	// MinPasswordScore is the lowest accepted zxcvbn score (0-4).
	MinPasswordScore int `mapstructure:"min_password_score"`
}

type JWTConfig struct {
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
	TTLDays int    `mapstructure:"ttl_days"`
}

type AuthorizationConfig struct {
	CasbinModelPath string `mapstructure:"casbin_model_path"`
	EnableAudit     bool   `mapstructure:"enable_audit"`
}

type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	UseTLS         bool   `mapstructure:"use_tls"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PasswordConfig struct {
	Algorithm     string `mapstructure:"algorithm"`
	MemoryKiB     uint32 `mapstructure:"memory_kib"`
	Iterations    uint32 `mapstructure:"iterations"`
	Parallelism   uint8  `mapstructure:"parallelism"`
	SaltLength    uint32 `mapstructure:"salt_length"`
	KeyLength     uint32 `mapstructure:"key_length"`
	LowMemoryMode bool   `mapstructure:"low_memory_mode"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/app.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	TenantID string `mapstructure:"tenant_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MediaConfig struct {
	Backend           string `mapstructure:"backend"` // local, s3
	Root              string `mapstructure:"root"`    // local backend directory
	StaticPrefix      string `mapstructure:"static_prefix"`
	MaxImageDimension int    `mapstructure:"max_image_dimension"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PublicURL       string `mapstructure:"public_url"`
}

type ConversionConfig struct {
	OfficeBinary   string `mapstructure:"office_binary"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	WorkDir        string `mapstructure:"work_dir"`
}

type PredictionConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RetryCount        int     `mapstructure:"retry_count"`
	WeightPlaceholder float64 `mapstructure:"weight_placeholder"`
}

// Validate fills defaults and rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds <= 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Server.BodyLimitMB <= 0 {
		c.Server.BodyLimitMB = 32
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	c.Server.PublicURL = strings.TrimRight(c.Server.PublicURL, "/")

	if c.Authentication.JWT.Secret == "" {
		return errors.New("authentication.jwt.secret is required")
	}
	if c.Authentication.JWT.TTLDays <= 0 {
		c.Authentication.JWT.TTLDays = 730
	}
	if c.Authentication.MinPasswordLength <= 0 {
		c.Authentication.MinPasswordLength = 8
	}
	if c.Authentication.MinPasswordScore == 0 {
		c.Authentication.MinPasswordScore = 2
	}
	if c.Authentication.MinPasswordScore < 0 || c.Authentication.MinPasswordScore > 4 {
		return fmt.Errorf("authentication.min_password_score must be within 0..4, got %d", c.Authentication.MinPasswordScore)
	}

	switch c.Media.Backend {
	case "":
		c.Media.Backend = "local"
	case "local", "s3":
	default:
		return fmt.Errorf("media.backend must be local or s3, got %q", c.Media.Backend)
	}
	if c.Media.Backend == "local" && c.Media.Root == "" {
		c.Media.Root = "static"
	}
	if c.Media.Backend == "s3" && c.S3.Bucket == "" {
		return errors.New("s3.bucket is required when media.backend is s3")
	}
	if c.Media.StaticPrefix == "" {
		c.Media.StaticPrefix = "/static"
	}
	if c.Media.MaxImageDimension <= 0 {
		c.Media.MaxImageDimension = 2048
	}

	if c.Conversion.OfficeBinary == "" {
		c.Conversion.OfficeBinary = "soffice"
	}
	if c.Conversion.TimeoutSeconds <= 0 {
		c.Conversion.TimeoutSeconds = 60
	}

	if c.Prediction.TimeoutSeconds <= 0 {
		c.Prediction.TimeoutSeconds = 10
	}

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "iequus_backend"
	}

	return nil
}
