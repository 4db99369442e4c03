// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/filedrop/internal/generator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultBucket = "bucket-projeto-final-aws-ada"

// Storage backends.
const (
	BackendS3      = "s3"
	BackendGCS     = "gcs"
	BackendSevalla = "sevalla"
)

// Queue backends.
const (
	QueueSQS      = "sqs"
	QueueRabbitMQ = "rabbitmq"
)

// ErrInvalidBounds is the generator sentinel, re-exported for config callers.
var ErrInvalidBounds = generator.ErrInvalidBounds

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Storage  StorageConfig
	Notify   NotifyConfig
	Queue    QueueConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	WorkDir  string
	LogLevel string
	MinLines int
	MaxLines int
}

type StorageConfig struct {
	Backend      string
	Bucket       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	UseSSL       bool
}

type NotifyConfig struct {
	TopicARN string
	Region   string
	Endpoint string
}

// Enabled reports whether a topic has been configured.
func (c NotifyConfig) Enabled() bool {
	return strings.TrimSpace(c.TopicARN) != ""
}

type QueueConfig struct {
	Backend     string
	URL         string
	Region      string
	Endpoint    string
	RabbitURL   string
	RabbitQueue string
}

// Enabled reports whether the selected queue backend has an endpoint.
func (c QueueConfig) Enabled() bool {
	if c.Backend == QueueRabbitMQ {
		return strings.TrimSpace(c.RabbitURL) != "" && strings.TrimSpace(c.RabbitQueue) != ""
	}
	return strings.TrimSpace(c.URL) != ""
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// Configured reports whether caching is switched on and has somewhere to connect.
func (c CacheConfig) Configured() bool {
	return c.Enabled && (strings.TrimSpace(c.RedisURL) != "" || strings.TrimSpace(c.RedisHost) != "")
}

// TTL returns the record expiry; zero means the record never expires.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Load resolves the configuration once per process. Invalid configuration
// is reported through the returned error on every call.
func Load() (*Config, error) {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance, loadErr = Read(viper.New())
	})

	return instance, loadErr
}

// Read builds a Config from the environment through v without caching.
func Read(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	region := v.GetString("AWS_REGION")
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("RUNS_ENABLED"),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			WorkDir:  v.GetString("APP_WORK_DIR"),
			LogLevel: v.GetString("LOG_LEVEL"),
			MinLines: v.GetInt("MIN_LINES"),
			MaxLines: v.GetInt("MAX_LINES"),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(v.GetString("STORAGE_BACKEND")),
			Bucket:       v.GetString("S3_BUCKET_NAME"),
			Endpoint:     v.GetString("S3_ENDPOINT"),
			Region:       firstNonEmpty(v.GetString("S3_REGION"), region),
			AccessKey:    v.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey:    v.GetString("AWS_SECRET_ACCESS_KEY"),
			SessionToken: v.GetString("AWS_SESSION_TOKEN"),
			UseSSL:       v.GetBool("S3_USE_SSL"),
		},
		Notify: NotifyConfig{
			TopicARN: v.GetString("SNS_TOPIC_ARN"),
			Region:   region,
			Endpoint: v.GetString("AWS_ENDPOINT_URL"),
		},
		Queue: QueueConfig{
			Backend:     strings.ToLower(v.GetString("QUEUE_BACKEND")),
			URL:         v.GetString("SQS_QUEUE_URL"),
			Region:      region,
			Endpoint:    v.GetString("AWS_ENDPOINT_URL"),
			RabbitURL:   v.GetString("RABBITMQ_URL"),
			RabbitQueue: v.GetString("RABBITMQ_QUEUE"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.App.WorkDir); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that cannot be soft-disabled.
func (c *Config) Validate() error {
	if c.App.MinLines <= 0 || c.App.MinLines > c.App.MaxLines {
		return fmt.Errorf("%w: got min=%d max=%d", ErrInvalidBounds, c.App.MinLines, c.App.MaxLines)
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("S3_BUCKET_NAME must not be empty")
	}
	switch c.Storage.Backend {
	case BackendS3, BackendGCS, BackendSevalla:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	switch c.Queue.Backend {
	case QueueSQS, QueueRabbitMQ:
	default:
		return fmt.Errorf("unknown QUEUE_BACKEND %q", c.Queue.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "release")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("RUNS_ENABLED", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "filedrop")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("APP_WORK_DIR", os.TempDir())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MIN_LINES", 100)
	v.SetDefault("MAX_LINES", 1000)

	v.SetDefault("STORAGE_BACKEND", BackendS3)
	v.SetDefault("S3_BUCKET_NAME", DefaultBucket)
	v.SetDefault("S3_ENDPOINT", "s3.amazonaws.com")
	v.SetDefault("S3_REGION", "")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("AWS_SESSION_TOKEN", "")
	v.SetDefault("AWS_ENDPOINT_URL", "")

	v.SetDefault("SNS_TOPIC_ARN", "")

	v.SetDefault("QUEUE_BACKEND", QueueSQS)
	v.SetDefault("SQS_QUEUE_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "file_generated")

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 0)
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
