package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAppEnv          = "dev"
	defaultPort            = "8080"
	defaultDatabaseURL     = "schools.db"
	defaultPublicDir       = "./public"
	defaultImageRoute      = "/schoolImages"
	defaultPlaceholder     = "/schoolImages/default.jpg"
	defaultMaxUploadBytes  = "5242880" // 5 MiB
	defaultStorageDriver   = "local"
	defaultDBMaxOpenConns  = "10"
	defaultDBMaxIdleConns  = "5"
	defaultDBConnLifetime  = "30m"
	defaultReadTimeout     = "15s"
	defaultWriteTimeout    = "30s"
	defaultShutdownTimeout = "10s"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultS3Region        = "us-east-1"
	storageDriverLocal     = "local"
	storageDriverS3        = "s3"
	envConfigPath          = "CONFIG_PATH"
	envDotFile             = ".env"
)

type Config struct {
	AppEnv             string        `yaml:"app_env"`
	Port               int           `yaml:"port"`
	DatabaseURL        string        `yaml:"database_url"`
	DB                 DBPoolConfig  `yaml:"db"`
	PublicDir          string        `yaml:"public_dir"`
	ImageRoute         string        `yaml:"image_route"`
	PlaceholderImage   string        `yaml:"placeholder_image"`
	MaxUploadBytes     int64         `yaml:"max_upload_bytes"`
	Storage            StorageConfig `yaml:"storage"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
}

type DBPoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type StorageConfig struct {
	Driver string   `yaml:"driver"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Load reads .env (if present), then the YAML file named by CONFIG_PATH (if
// set), then environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(envDotFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envDotFile, err)
	}

	cfg, err := defaults()
	if err != nil {
		return nil, err
	}

	if path := strings.TrimSpace(os.Getenv(envConfigPath)); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s port=%d storage=%s content_dir=%s", cfg.AppEnv, cfg.Port, cfg.Storage.Driver, cfg.ContentDir())

	return cfg, nil
}

// ContentDir is the filesystem directory that backs ImageRoute.
func (c *Config) ContentDir() string {
	return filepath.Join(c.PublicDir, strings.TrimPrefix(c.ImageRoute, "/"))
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func defaults() (*Config, error) {
	port, _ := strconv.Atoi(defaultPort)
	maxUpload, _ := strconv.ParseInt(defaultMaxUploadBytes, 10, 64)
	maxOpen, _ := strconv.Atoi(defaultDBMaxOpenConns)
	maxIdle, _ := strconv.Atoi(defaultDBMaxIdleConns)

	cfg := &Config{
		AppEnv:           defaultAppEnv,
		Port:             port,
		DatabaseURL:      defaultDatabaseURL,
		PublicDir:        defaultPublicDir,
		ImageRoute:       defaultImageRoute,
		PlaceholderImage: defaultPlaceholder,
		MaxUploadBytes:   maxUpload,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
			S3:     S3Config{Region: defaultS3Region},
		},
		DB: DBPoolConfig{
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}

	var err error
	if cfg.DB.ConnMaxLifetime, err = time.ParseDuration(defaultDBConnLifetime); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = time.ParseDuration(defaultReadTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = time.ParseDuration(defaultWriteTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(defaultShutdownTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv != "" {
		cfg.AppEnv = appEnv
	}
	cfg.AppEnv = strings.ToLower(cfg.AppEnv)

	var err error
	if cfg.Port, err = parseIntEnv("PORT", cfg.Port); err != nil {
		return err
	}
	if cfg.MaxUploadBytes, err = parseInt64Env("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes); err != nil {
		return err
	}
	if cfg.DB.MaxOpenConns, err = parseIntEnv("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns); err != nil {
		return err
	}
	if cfg.DB.MaxIdleConns, err = parseIntEnv("DB_MAX_IDLE_CONNS", cfg.DB.MaxIdleConns); err != nil {
		return err
	}
	if cfg.DB.ConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", cfg.DB.ConnMaxLifetime); err != nil {
		return err
	}
	if cfg.ReadTimeout, err = parseDurationEnv("READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}
	if cfg.WriteTimeout, err = parseDurationEnv("WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", cfg.DatabaseURL))
	cfg.PublicDir = strings.TrimSpace(getEnv("PUBLIC_DIR", cfg.PublicDir))
	cfg.ImageRoute = strings.TrimRight(strings.TrimSpace(getEnv("IMAGE_ROUTE", cfg.ImageRoute)), "/")
	cfg.PlaceholderImage = strings.TrimSpace(getEnv("PLACEHOLDER_IMAGE", cfg.PlaceholderImage))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", cfg.LogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", cfg.LogFormat)))

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", cfg.Storage.Driver)))
	cfg.Storage.S3.Endpoint = strings.TrimSpace(getEnv("S3_ENDPOINT", cfg.Storage.S3.Endpoint))
	cfg.Storage.S3.AccessKey = strings.TrimSpace(getEnv("S3_ACCESS_KEY", cfg.Storage.S3.AccessKey))
	cfg.Storage.S3.SecretKey = strings.TrimSpace(getEnv("S3_SECRET_KEY", cfg.Storage.S3.SecretKey))
	cfg.Storage.S3.Bucket = strings.TrimSpace(getEnv("S3_BUCKET", cfg.Storage.S3.Bucket))
	cfg.Storage.S3.Region = strings.TrimSpace(getEnv("S3_REGION", cfg.Storage.S3.Region))
	cfg.Storage.S3.Prefix = strings.Trim(strings.TrimSpace(getEnv("S3_PREFIX", cfg.Storage.S3.Prefix)), "/")
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		cfg.Storage.S3.UseSSL = parseBool(v)
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		cfg.CORSAllowedOrigins = cfg.CORSAllowedOrigins[:0]
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.PublicDir == "" {
		return fmt.Errorf("PUBLIC_DIR must not be empty")
	}
	if !strings.HasPrefix(cfg.ImageRoute, "/") && !strings.Contains(cfg.ImageRoute, "://") {
		return fmt.Errorf("IMAGE_ROUTE must start with / or be an absolute URL")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0")
	}
	if cfg.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	if cfg.DB.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be >= 0")
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("READ_TIMEOUT, WRITE_TIMEOUT and SHUTDOWN_TIMEOUT must be > 0")
	}

	switch cfg.Storage.Driver {
	case storageDriverLocal:
	case storageDriverS3:
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, s3")
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	if isProdLike(cfg.AppEnv) && cfg.LogFormat == "console" {
		return fmt.Errorf("in prod/release LOG_FORMAT must be json")
	}

	return nil
}

// UsesS3 reports whether images go to object storage instead of PublicDir.
func (c *Config) UsesS3() bool {
	return c.Storage.Driver == storageDriverS3
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseInt64Env(name string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
