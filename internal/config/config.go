package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Lookup  LookupConfig
	Process ProcessConfig
	Batch   BatchConfig
	Storage StorageConfig
	Email   EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds the embedded run-history database settings.
type DBConfig struct {
	Path    string `mapstructure:"path"`
	MaxOpen int    `mapstructure:"max_open"`
	MaxIdle int    `mapstructure:"max_idle"`
}

// DSN returns the sqlite connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", d.Path)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret       string        `mapstructure:"secret"`
	AccessExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer       string        `mapstructure:"issuer"`
}

// AuthConfig holds the single operator credential. PasswordHash is a bcrypt
// hash; an empty hash disables authentication entirely (local use).
type AuthConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// Enabled reports whether the API requires authentication.
func (a *AuthConfig) Enabled() bool { return a.PasswordHash != "" }

// LookupConfig holds content registry lookup settings.
type LookupConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	BatchSize   int           `mapstructure:"batch_size"`
	UserAgent   string        `mapstructure:"user_agent"`
	FirstName   string        `mapstructure:"first_name"`
	LastName    string        `mapstructure:"last_name"`
	Email       string        `mapstructure:"email"`
}

// ProcessConfig holds per-document processing defaults.
type ProcessConfig struct {
	MaxFileSizeMB   float64 `mapstructure:"max_file_size_mb"`
	BackupDir       string  `mapstructure:"backup_dir"`
	ContentIDSuffix string  `mapstructure:"content_id_suffix"`
	TrackAuthor     string  `mapstructure:"track_author"`
}

// BatchConfig holds batch scheduler settings.
type BatchConfig struct {
	Concurrency     int `mapstructure:"concurrency"`
	ReclaimInterval int `mapstructure:"reclaim_interval"`
}

// StorageConfig holds optional S3 archival settings.
type StorageConfig struct {
	ArchiveEnabled bool   `mapstructure:"archive_enabled"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	KeyPrefix      string `mapstructure:"key_prefix"`
}

// EmailConfig holds batch summary notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	NotifyTo    string `mapstructure:"notify_to"`
}

// Load reads configuration from environment variables with a DOCHUB prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.path", "dochub.db")
	v.SetDefault("db.max_open", 1)
	v.SetDefault("db.max_idle", 1)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "12h")
	v.SetDefault("jwt.issuer", "dochub")

	// Auth defaults (empty hash = auth disabled)
	v.SetDefault("auth.username", "operator")
	v.SetDefault("auth.password_hash", "")

	// Lookup defaults
	v.SetDefault("lookup.endpoint", "")
	v.SetDefault("lookup.timeout", "30s")
	v.SetDefault("lookup.batch_size", 50)
	v.SetDefault("lookup.user_agent", "DocHub/1.0")
	v.SetDefault("lookup.first_name", "")
	v.SetDefault("lookup.last_name", "")
	v.SetDefault("lookup.email", "")

	// Processing defaults
	v.SetDefault("process.max_file_size_mb", 50)
	v.SetDefault("process.backup_dir", "")
	v.SetDefault("process.content_id_suffix", "#content")
	v.SetDefault("process.track_author", "DocHub")

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.reclaim_interval", 10)

	// Storage defaults
	v.SetDefault("storage.archive_enabled", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "dochub-archive")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.key_prefix", "runs")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.from_name", "DocHub")
	v.SetDefault("email.notify_to", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	if c.Process.MaxFileSizeMB <= 0 {
		return fmt.Errorf("process.max_file_size_mb must be positive, got %v", c.Process.MaxFileSizeMB)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	if c.Batch.ReclaimInterval < 1 {
		return fmt.Errorf("batch.reclaim_interval must be at least 1, got %d", c.Batch.ReclaimInterval)
	}
	if c.Storage.ArchiveEnabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when archival is enabled")
	}
	if c.Email.Provider == "ses" && c.Email.FromAddress == "" {
		return fmt.Errorf("email.from_address is required for the ses provider")
	}
	return nil
}
