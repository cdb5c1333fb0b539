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

	"github.com/nextcommerce/storedash/pkg/observability"
	"github.com/nextcommerce/storedash/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Storage       storage.Config
	Observability ObservabilityConfig
	Auth          AuthConfig
	StoreAPI      StoreAPIConfig
	Submission    SubmissionConfig
	Upgrade       UpgradeConfig
	Payment       PaymentConfig
	Reviewer      ReviewerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string

	// Checkout write endpoints are limited per merchant per minute
	WriteRateLimit int

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelEnvironment    string
	OTelInsecure       bool
	OTelSampleRatio    float64
}

// AuthConfig selects how merchants are identified
type AuthConfig struct {
	// Mode is "oidc" (verified bearer tokens) or "header" (trusted gateway header)
	Mode         string
	OIDCIssuer   string
	OIDCAudience string
	HeaderName   string
}

// StoreAPIConfig points at the upstream store REST API
type StoreAPIConfig struct {
	BaseURL string
	Timeout time.Duration
	// FreeOrderLimit applies when the account response carries no explicit limit
	FreeOrderLimit int
}

// SubmissionConfig selects where subscription requests are recorded
type SubmissionConfig struct {
	// Mode is "sql" (local database) or "remote" (upstream REST API)
	Mode      string
	RemoteURL string
	Timeout   time.Duration
}

// UpgradeConfig tunes the checkout workflow
type UpgradeConfig struct {
	IntentTTL        time.Duration
	SessionTTL       time.Duration
	LockTTL          time.Duration
	OperationTimeout time.Duration
	MaxProofBytes    int64
	DedupCacheSize   int
}

// PaymentConfig holds the manual payment instructions shown at checkout
type PaymentConfig struct {
	CCP         string `yaml:"ccp"`
	RIP         string `yaml:"rip"`
	AccountName string `yaml:"account_name"`
	Phone       string `yaml:"phone"`
	Currency    string `yaml:"currency"`
}

// ReviewerConfig configures the pending-request digest job
type ReviewerConfig struct {
	Schedule   string   `yaml:"schedule"`
	SMTPHost   string   `yaml:"smtp_host"`
	SMTPPort   int      `yaml:"smtp_port"`
	SMTPUser   string   `yaml:"smtp_user"`
	SMTPPass   string   `yaml:"-"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

// LoadConfig loads configuration from an optional .env file, an optional YAML
// file named by STOREDASH_CONFIG_FILE, and environment variables, in that
// order of increasing precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
		Auth:          loadAuthConfig(),
		StoreAPI:      loadStoreAPIConfig(),
		Submission:    loadSubmissionConfig(),
		Upgrade:       loadUpgradeConfig(),
		Payment:       DefaultPaymentConfig(),
		Reviewer:      defaultReviewerConfig(),
	}

	if path := getEnv("STOREDASH_CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	applyPaymentEnv(&cfg.Payment)
	applyReviewerEnv(&cfg.Reviewer)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the payment and reviewer sections from a YAML file
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file struct {
		Payment  *PaymentConfig  `yaml:"payment"`
		Reviewer *ReviewerConfig `yaml:"reviewer"`
	}
	file.Payment = &c.Payment
	file.Reviewer = &c.Reviewer

	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("STOREDASH_HOST", "0.0.0.0"),
		Port:            getEnv("STOREDASH_PORT", "8080"),
		ReadTimeout:     getEnvDuration("STOREDASH_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("STOREDASH_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     getEnvDuration("STOREDASH_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("STOREDASH_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("STOREDASH_MAX_BODY_BYTES", 12<<20),
		CORSOrigins:     getEnvList("STOREDASH_CORS_ORIGINS", []string{"*"}),
		WriteRateLimit:  getEnvInt("STOREDASH_WRITE_RATE_LIMIT", 30),
		HealthPort:      getEnv("STOREDASH_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	cfg.DatabaseDriver = getEnv("STOREDASH_DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnv("STOREDASH_DATABASE_URL", cfg.DatabaseURL)
	if maxConns := getEnvInt("STOREDASH_DATABASE_MAX_CONNS", 0); maxConns > 0 {
		cfg.DatabaseMaxConns = maxConns
	}
	if minConns := getEnvInt("STOREDASH_DATABASE_MIN_CONNS", 0); minConns > 0 {
		cfg.DatabaseMinConns = minConns
	}
	cfg.DatabaseTimeout = getEnvDuration("STOREDASH_DATABASE_TIMEOUT", cfg.DatabaseTimeout)

	cfg.S3Endpoint = getEnv("STOREDASH_S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3Region = getEnv("STOREDASH_S3_REGION", cfg.S3Region)
	cfg.S3Bucket = getEnv("STOREDASH_S3_BUCKET", cfg.S3Bucket)
	cfg.S3AccessKey = getEnv("STOREDASH_S3_ACCESS_KEY", "")
	cfg.S3SecretKey = getEnv("STOREDASH_S3_SECRET_KEY", "")
	cfg.S3UsePathStyle = getEnvBool("STOREDASH_S3_USE_PATH_STYLE", cfg.S3UsePathStyle)
	cfg.S3PublicBaseURL = strings.TrimRight(getEnv("STOREDASH_S3_PUBLIC_BASE_URL", ""), "/")
	cfg.S3CreateBucket = getEnvBool("STOREDASH_S3_CREATE_BUCKET", false)

	cfg.RedisURL = getEnv("STOREDASH_REDIS_URL", "")
	cfg.RedisPassword = getEnv("STOREDASH_REDIS_PASSWORD", "")
	if redisDB := getEnvInt("STOREDASH_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisPoolSize := getEnvInt("STOREDASH_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	return cfg
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("STOREDASH_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("STOREDASH_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("STOREDASH_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("STOREDASH_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("STOREDASH_OTEL_SERVICE_NAME", "storedash"),
		OTelServiceVersion: getEnv("STOREDASH_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelEnvironment:    getEnv("STOREDASH_ENV", "development"),
		OTelInsecure:       getEnvBool("STOREDASH_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("STOREDASH_OTEL_SAMPLE_RATIO", 1),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Mode:         getEnv("STOREDASH_AUTH_MODE", "oidc"),
		OIDCIssuer:   getEnv("STOREDASH_OIDC_ISSUER", ""),
		OIDCAudience: getEnv("STOREDASH_OIDC_AUDIENCE", "storedash"),
		HeaderName:   getEnv("STOREDASH_AUTH_HEADER", "X-Merchant-ID"),
	}
}

func loadStoreAPIConfig() StoreAPIConfig {
	return StoreAPIConfig{
		BaseURL:        strings.TrimRight(getEnv("STOREDASH_STORE_API_URL", "https://api.next-commerce.shop"), "/"),
		Timeout:        getEnvDuration("STOREDASH_STORE_API_TIMEOUT", 10*time.Second),
		FreeOrderLimit: getEnvInt("STOREDASH_FREE_ORDER_LIMIT", 150),
	}
}

func loadSubmissionConfig() SubmissionConfig {
	return SubmissionConfig{
		Mode:      getEnv("STOREDASH_SUBMISSION_MODE", "sql"),
		RemoteURL: strings.TrimRight(getEnv("STOREDASH_SUBMISSION_URL", ""), "/"),
		Timeout:   getEnvDuration("STOREDASH_SUBMISSION_TIMEOUT", 15*time.Second),
	}
}

func loadUpgradeConfig() UpgradeConfig {
	return UpgradeConfig{
		IntentTTL:        getEnvDuration("STOREDASH_INTENT_TTL", 24*time.Hour),
		SessionTTL:       getEnvDuration("STOREDASH_SESSION_TTL", 72*time.Hour),
		LockTTL:          getEnvDuration("STOREDASH_LOCK_TTL", 2*time.Minute),
		OperationTimeout: getEnvDuration("STOREDASH_OPERATION_TIMEOUT", 60*time.Second),
		MaxProofBytes:    getEnvInt64("STOREDASH_MAX_PROOF_BYTES", 10<<20),
		DedupCacheSize:   getEnvInt("STOREDASH_DEDUP_CACHE_SIZE", 1024),
	}
}

// DefaultPaymentConfig returns the receiving account used for manual payments
func DefaultPaymentConfig() PaymentConfig {
	return PaymentConfig{
		CCP:         "41545126 Clé 06",
		RIP:         "00799999004154512631",
		AccountName: "Kerbadj Abdelbari",
		Phone:       "213698320894",
		Currency:    "DZD",
	}
}

func applyPaymentEnv(p *PaymentConfig) {
	p.CCP = getEnv("STOREDASH_PAYMENT_CCP", p.CCP)
	p.RIP = getEnv("STOREDASH_PAYMENT_RIP", p.RIP)
	p.AccountName = getEnv("STOREDASH_PAYMENT_ACCOUNT_NAME", p.AccountName)
	p.Phone = getEnv("STOREDASH_PAYMENT_PHONE", p.Phone)
}

func defaultReviewerConfig() ReviewerConfig {
	return ReviewerConfig{
		Schedule: "0 */2 * * *",
		SMTPPort: 587,
		From:     "billing@next-commerce.shop",
	}
}

func applyReviewerEnv(r *ReviewerConfig) {
	r.Schedule = getEnv("STOREDASH_REVIEWER_SCHEDULE", r.Schedule)
	r.SMTPHost = getEnv("STOREDASH_SMTP_HOST", r.SMTPHost)
	r.SMTPPort = getEnvInt("STOREDASH_SMTP_PORT", r.SMTPPort)
	r.SMTPUser = getEnv("STOREDASH_SMTP_USER", r.SMTPUser)
	r.SMTPPass = getEnv("STOREDASH_SMTP_PASSWORD", r.SMTPPass)
	r.From = getEnv("STOREDASH_SMTP_FROM", r.From)
	r.Recipients = getEnvList("STOREDASH_REVIEWER_RECIPIENTS", r.Recipients)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.HealthPort == "" {
		return errors.New("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return errors.New("server port and health port must be different")
	}
	if c.Server.WriteRateLimit < 0 {
		return errors.New("write rate limit must not be negative")
	}

	switch c.Auth.Mode {
	case "oidc":
		if c.Auth.OIDCIssuer == "" {
			return errors.New("OIDC issuer is required for oidc auth mode")
		}
	case "header":
		if c.Auth.HeaderName == "" {
			return errors.New("auth header name is required for header auth mode")
		}
	default:
		return fmt.Errorf("invalid auth mode: %s (must be oidc or header)", c.Auth.Mode)
	}

	switch c.Submission.Mode {
	case "sql":
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required for sql submission mode")
		}
	case "remote":
		if c.Submission.RemoteURL == "" {
			return errors.New("submission URL is required for remote submission mode")
		}
	default:
		return fmt.Errorf("invalid submission mode: %s (must be sql or remote)", c.Submission.Mode)
	}

	if c.Storage.S3Bucket == "" {
		return errors.New("S3 bucket is required for payment proofs")
	}
	if c.StoreAPI.BaseURL == "" {
		return errors.New("store API URL is required")
	}
	if c.StoreAPI.FreeOrderLimit < 0 {
		return errors.New("free order limit must not be negative")
	}
	if c.Upgrade.MaxProofBytes <= 0 {
		return errors.New("max proof size must be positive")
	}
	if c.Upgrade.MaxProofBytes > c.Server.MaxBodyBytes {
		return errors.New("max proof size must not exceed max body size")
	}

	if c.Payment.Phone == "" {
		return errors.New("payment phone is required for the receipt deep link")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return errors.New("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return errors.New("OpenTelemetry service name is required when OTel is enabled")
		}
		if c.Observability.OTelSampleRatio < 0 || c.Observability.OTelSampleRatio > 1 {
			return errors.New("OpenTelemetry sample ratio must be between 0 and 1")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
