// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env           string `env:"VSALES_ENV" envDefault:"development"`
	LogLevel      string `env:"VSALES_LOG_LEVEL" envDefault:"info"`
	ServerHost    string `env:"VSALES_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"VSALES_SERVER_PORT" envDefault:"8080"`
	SessionSecret string `env:"VSALES_SESSION_SECRET,required"`

	// Database
	DBDriver   string `env:"VSALES_DB_DRIVER" envDefault:"sqlite"`
	DBPath     string `env:"VSALES_DB_PATH" envDefault:"./data/vsales.db"`
	DBHost     string `env:"VSALES_DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"VSALES_DB_PORT" envDefault:"3306"`
	DBUser     string `env:"VSALES_DB_USER"`
	DBPassword string `env:"VSALES_DB_PASSWORD"`
	DBName     string `env:"VSALES_DB_NAME" envDefault:"vsales"`

	// Outgoing mail; receipts are only logged when SMTPHost is empty
	SMTPHost     string `env:"VSALES_SMTP_HOST"`
	SMTPPort     int    `env:"VSALES_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"VSALES_SMTP_USERNAME"`
	SMTPPassword string `env:"VSALES_SMTP_PASSWORD"`
	SMTPFrom     string `env:"VSALES_SMTP_FROM" envDefault:"receipts@localhost"`

	BcryptCost int `env:"VSALES_BCRYPT_COST" envDefault:"13"`

	// Seeding
	AdminUsername string `env:"VSALES_ADMIN_USERNAME" envDefault:"Admin"`
	AdminPassword string `env:"VSALES_ADMIN_PASSWORD"`
	AdminEmail    string `env:"VSALES_ADMIN_EMAIL" envDefault:"admin@example.com"`
	SeedVehicles  bool   `env:"VSALES_SEED_VEHICLES" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SMTPEnabled returns true if an SMTP relay is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// SMTPAddr returns the SMTP relay address in host:port format.
func (c Config) SMTPAddr() string {
	return net.JoinHostPort(c.SMTPHost, strconv.Itoa(c.SMTPPort))
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver != DriverMySQL {
		return c.DBPath
	}
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort))
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.DBName = c.DBName
	mc.ParseTime = true
	// RowsAffected counts matched rows, not only changed ones
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("VSALES_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("VSALES_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("VSALES_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		if cfg.DBUser == "" || cfg.DBPassword == "" {
			return nil, fmt.Errorf("VSALES_DB_USER and VSALES_DB_PASSWORD are required for the mysql driver")
		}
	default:
		return nil, fmt.Errorf("unsupported VSALES_DB_DRIVER %q (want %s or %s)", cfg.DBDriver, DriverSQLite, DriverMySQL)
	}

	// bcrypt accepts 4..31
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("VSALES_BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
