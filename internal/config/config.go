package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendLocal = "local"
	BackendS3    = "s3"
)

type Config struct {
	DBDriver   string `mapstructure:"DB_DRIVER"`
	Host       string `mapstructure:"DB_HOST"`
	User       string `mapstructure:"DB_USER"`
	Password   string `mapstructure:"DB_PASSWORD"`
	Name       string `mapstructure:"DB_NAME"`
	DBPort     string `mapstructure:"DB_PORT"`
	SSLMode    string `mapstructure:"DB_SSLMODE"`
	DBPath     string `mapstructure:"DB_PATH"`
	DBLogLevel string `mapstructure:"DB_LOG_LEVEL"`

	ServerPort     string `mapstructure:"SERVER_PORT"`
	Environment    string `mapstructure:"ENVIRONMENT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	JWTKey         string `mapstructure:"JWT_KEY"`

	UploadDir       string `mapstructure:"UPLOAD_DIR"`
	UploadURLPrefix string `mapstructure:"UPLOAD_URL_PREFIX"`
	MaxFileSizeRaw  string `mapstructure:"MAX_FILE_SIZE"`
	MaxFileSize     int64  `mapstructure:"-"`

	StorageBackend    string `mapstructure:"STORAGE_BACKEND"`
	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3BucketName      string `mapstructure:"S3_BUCKET"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3Prefix          string `mapstructure:"S3_PREFIX"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
}

var defaults = map[string]any{
	"DB_DRIVER":            DriverPostgres,
	"DB_HOST":              "",
	"DB_USER":              "",
	"DB_PASSWORD":          "",
	"DB_NAME":              "",
	"DB_PORT":              "",
	"DB_SSLMODE":           "disable",
	"DB_PATH":              "taskboard.db",
	"DB_LOG_LEVEL":         "warn",
	"SERVER_PORT":          "8080",
	"ENVIRONMENT":          "production",
	"ALLOWED_ORIGINS":      "*",
	"JWT_KEY":              "",
	"UPLOAD_DIR":           "uploads",
	"UPLOAD_URL_PREFIX":    "/uploads",
	"MAX_FILE_SIZE":        "25MiB",
	"STORAGE_BACKEND":      BackendLocal,
	"S3_ENDPOINT":          "",
	"S3_REGION":            "us-east-1",
	"S3_BUCKET":            "",
	"S3_ACCESS_KEY_ID":     "",
	"S3_SECRET_ACCESS_KEY": "",
	"S3_PREFIX":            "",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
}

// New returns a viper instance with defaults registered and environment
// overrides enabled. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// ReadFile merges configFile into v when it exists. An empty configFile
// means ".env" in the working directory.
func ReadFile(v *viper.Viper, configFile string) error {
	if configFile == "" {
		v.AddConfigPath("./")
		v.SetConfigFile(".env")
	} else {
		v.SetConfigFile(configFile)
	}
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load reads the config file, then unmarshals and validates the merged
// settings.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := ReadFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.DBPort == "" {
			return fmt.Errorf("DB_PORT is required")
		}
		if c.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}

	size, err := humanize.ParseBytes(c.MaxFileSizeRaw)
	if err != nil {
		return fmt.Errorf("invalid MAX_FILE_SIZE %q: %w", c.MaxFileSizeRaw, err)
	}
	if size == 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	c.MaxFileSize = int64(size)

	switch c.StorageBackend {
	case BackendLocal:
	case BackendS3:
		if c.S3BucketName == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	// only development may fall back to the built-in signing key
	if c.JWTKey == "" && !c.IsDevelopment() {
		return fmt.Errorf("JWT_KEY is required outside development")
	}

	return nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.DBPort, c.SSLMode)
}

// Origins splits ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
