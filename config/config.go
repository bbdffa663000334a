// Package config loads process settings from the environment, after reading
// an optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server and CLI tools need at startup.
type Config struct {
	DBDriver    string
	DBURL       string
	SQLitePath  string
	ListenAddr  string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	GinMode     string
}

// Load reads .env (if present) and then the environment. Environment values
// win over .env since godotenv never overrides variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SQLITE_PATH", "kbju.db")
	v.SetDefault("LISTEN_ADDR", "localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("GIN_MODE", "release")

	cfg := Config{
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DBURL:       v.GetString("DB_URL"),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		ListenAddr:  v.GetString("LISTEN_ADDR"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		GinMode:     v.GetString("GIN_MODE"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN is the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.DBURL
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBURL == "" {
			return errors.New("config: DB_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
