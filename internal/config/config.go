package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds all configuration for ShareForge
type Config struct {
	// Server configuration
	Listen   string `mapstructure:"listen"`
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`

	// Public base URL, used for share links in notification mails
	PublicURL string `mapstructure:"public_url"`

	// TLS configuration
	EnableTLS bool   `mapstructure:"enable_tls"`
	CertFile  string `mapstructure:"cert_file"`
	KeyFile   string `mapstructure:"key_file"`

	Share   ShareConfig   `mapstructure:"share"`
	Storage StorageConfig `mapstructure:"storage"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Auth    AuthConfig    `mapstructure:"auth"`
	ClamAV  ClamAVConfig  `mapstructure:"clamav"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
}

// ShareConfig defines share lifecycle configuration
type ShareConfig struct {
	// Longest allowed share lifetime. A value of 0 disables the limit.
	MaxExpirationValue int    `mapstructure:"max_expiration_value"`
	MaxExpirationUnit  string `mapstructure:"max_expiration_unit"`

	// Largest accepted upload in bytes. A value of 0 disables the limit.
	MaxFileSize int64 `mapstructure:"max_file_size"`

	ZipCompressionLevel int `mapstructure:"zip_compression_level"`
}

// StorageConfig defines the file storage backend
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // filesystem, s3

	// Filesystem backend
	Root string `mapstructure:"root"`

	// S3 backend
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3Region    string `mapstructure:"s3_region"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
}

// SMTPConfig defines the outgoing mail server
type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// AuthConfig defines authentication configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ClamAVConfig defines the malware scanner
type ClamAVConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// MetricsConfig defines metrics configuration
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// CleanupConfig defines the expired share cleanup worker
type CleanupConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// Load loads configuration from flags, config file and environment
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := bindFlags(cmd, v); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SHAREFORGE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	// NO default for data_dir - must be explicitly configured
	v.SetDefault("log_level", "info")
	v.SetDefault("public_url", "http://localhost:8080")

	v.SetDefault("enable_tls", false)

	v.SetDefault("share.max_expiration_value", 0)
	v.SetDefault("share.max_expiration_unit", "days")
	v.SetDefault("share.max_file_size", 0)
	v.SetDefault("share.zip_compression_level", 6)

	v.SetDefault("storage.backend", "filesystem")
	v.SetDefault("storage.root", "") // Empty by default, will be set based on data_dir
	v.SetDefault("storage.s3_region", "us-east-1")

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", false)

	v.SetDefault("clamav.enabled", false)
	v.SetDefault("clamav.address", "127.0.0.1:3310")

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("cleanup.interval_minutes", 60)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := map[string]string{
		"listen":     "listen",
		"data-dir":   "data_dir",
		"log-level":  "log_level",
		"public-url": "public_url",
		"tls-cert":   "cert_file",
		"tls-key":    "key_file",
	}

	for flag, key := range flags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	return nil
}

func validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir is required: specify via --data-dir flag, config file, or SHAREFORGE_DATA_DIR environment variable")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if cfg.Storage.Backend != "filesystem" && cfg.Storage.Backend != "s3" {
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	// Build the storage root from data_dir unless set explicitly
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = filepath.Join(cfg.DataDir, "shares")
	}
	if !filepath.IsAbs(cfg.Storage.Root) {
		absRoot, err := filepath.Abs(cfg.Storage.Root)
		if err == nil {
			cfg.Storage.Root = absRoot
		}
	}

	if cfg.Storage.Backend == "s3" && cfg.Storage.S3Bucket == "" {
		return fmt.Errorf("storage.s3_bucket is required for the s3 backend")
	}

	if cfg.EnableTLS {
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert-file or key-file not specified")
		}
	}

	if cfg.Share.MaxExpirationValue < 0 {
		return fmt.Errorf("share.max_expiration_value must not be negative")
	}

	if cfg.Cleanup.IntervalMinutes <= 0 {
		return fmt.Errorf("cleanup.interval_minutes must be positive")
	}

	// Generate a JWT secret if not provided. Sessions and share tokens do
	// not survive a restart in that case.
	if cfg.Auth.JWTSecret == "" {
		secret, err := generateSecret(32)
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.Auth.JWTSecret = secret
	}

	return nil
}

func generateSecret(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
