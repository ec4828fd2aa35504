package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Rental    RentalConfig    `yaml:"rental"`
	Seed      SeedConfig      `yaml:"seed"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RentalConfig contains rental lifecycle settings
type RentalConfig struct {
	// StartGraceHours is how far in the past a rental's start date may
	// lie and still be accepted at creation time.
	StartGraceHours int `yaml:"start_grace_hours"`
}

// SeedConfig contains the bootstrap identities provisioned at startup
type SeedConfig struct {
	AdminEmail     string `yaml:"admin_email"`
	AdminPassword  string `yaml:"admin_password"`
	MemberEmail    string `yaml:"member_email"`
	MemberPassword string `yaml:"member_password"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReportOverdueRentals string `yaml:"report_overdue_rentals"`
	AuditInventory       string `yaml:"audit_inventory"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Seed identities
	if val := os.Getenv("SEED_ADMIN_EMAIL"); val != "" {
		c.Seed.AdminEmail = val
	}
	if val := os.Getenv("SEED_ADMIN_PASSWORD"); val != "" {
		c.Seed.AdminPassword = val
	}
	if val := os.Getenv("SEED_MEMBER_EMAIL"); val != "" {
		c.Seed.MemberEmail = val
	}
	if val := os.Getenv("SEED_MEMBER_PASSWORD"); val != "" {
		c.Seed.MemberPassword = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Rental defaults
	if c.Rental.StartGraceHours <= 0 {
		c.Rental.StartGraceHours = 24
	}

	// Seed defaults
	if c.Seed.AdminEmail == "" {
		c.Seed.AdminEmail = "admin@toolirent.local"
	}
	if c.Seed.AdminPassword == "" {
		c.Seed.AdminPassword = "Admin123!"
	}
	if c.Seed.MemberEmail == "" {
		c.Seed.MemberEmail = "member@toolirent.local"
	}
	if c.Seed.MemberPassword == "" {
		c.Seed.MemberPassword = "Member123!"
	}

	// Scheduler defaults
	if c.Scheduler.ReportOverdueRentals == "" {
		c.Scheduler.ReportOverdueRentals = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.AuditInventory == "" {
		c.Scheduler.AuditInventory = "0 30 2 * * *" // 2:30 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
