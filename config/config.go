package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Minio  MinioConfig  `yaml:"minio"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Review ReviewConfig `yaml:"review"`
	Intake IntakeConfig `yaml:"intake"`
	Users  []User       `yaml:"users"`
}

type ServerConfig struct {
	Port            int `yaml:"port"`
	RateLimit       int `yaml:"rate_limit"` // requests per minute per client
	ShutdownSeconds int `yaml:"shutdown_seconds"`
}

// MinioConfig configures document storage. Documents are kept in memory when
// Endpoint is empty.
type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
	PublicRead bool   `yaml:"public_read"` // bucket policy allows anonymous reads
}

// RedisConfig configures the session revocation store. Revocations are kept
// in memory when Addr is empty.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	MaxMotions int  `yaml:"max_motions"` // 0 = unlimited
	Seed       bool `yaml:"seed"`        // load demo fixtures at startup
}

type ReviewConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

type IntakeConfig struct {
	Workers       int           `yaml:"workers"`
	MaxFiles      int           `yaml:"max_files"`
	MaxFileSizeMB int64         `yaml:"max_file_size_mb"`
	UploadDelay   time.Duration `yaml:"upload_delay"`  // simulated per-file upload time
	ExtractDelay  time.Duration `yaml:"extract_delay"` // simulated per-file extraction time
}

// User is a clerk account. Passwords are compared in plain text; accounts are
// demo fixtures only.
type User struct {
	ID         string `yaml:"id"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	FullName   string `yaml:"full_name"`
	Role       string `yaml:"role"`
	CourtID    string `yaml:"court_id"`
	CourtName  string `yaml:"court_name"`
	CountyID   string `yaml:"county_id"`
	CountyName string `yaml:"county_name"`
	Inactive   bool   `yaml:"inactive"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = 5
	}
	if c.Minio.ExpireDays == 0 {
		c.Minio.ExpireDays = 7
	}
	if c.Minio.Bucket == "" {
		c.Minio.Bucket = "motions"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "motionflow:revoked:"
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Review.ConfidenceThreshold == 0 {
		c.Review.ConfidenceThreshold = 0.8
	}
	if c.Intake.Workers == 0 {
		c.Intake.Workers = 4
	}
	if c.Intake.MaxFiles == 0 {
		c.Intake.MaxFiles = 20
	}
	if c.Intake.MaxFileSizeMB == 0 {
		c.Intake.MaxFileSizeMB = 25
	}
}

// Validate reports configuration that would leave the server unusable.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Review.ConfidenceThreshold <= 0 || c.Review.ConfidenceThreshold > 1 {
		return fmt.Errorf("review.confidence_threshold must be in (0, 1], got %v", c.Review.ConfidenceThreshold)
	}
	for _, u := range c.Users {
		if u.Email == "" || u.CourtID == "" {
			return fmt.Errorf("user %q must have an email and a court_id", u.ID)
		}
	}
	return nil
}

// FindUser finds an active user by email
func (c *Config) FindUser(email string) *User {
	for i := range c.Users {
		if c.Users[i].Email == email && !c.Users[i].Inactive {
			return &c.Users[i]
		}
	}
	return nil
}
