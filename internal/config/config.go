// Package config loads examtex settings from examtex.yaml and EXAMTEX_
// environment variables.
package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/internal/logging"
)

// EnvPrefix is prepended to every environment override, for example
// EXAMTEX_SERVER_ADDR for server.addr.
const EnvPrefix = "EXAMTEX"

// Config holds all application configuration.
type Config struct {
	Seed        int64        `mapstructure:"seed"`
	Template    string       `mapstructure:"template"`
	OutputDir   string       `mapstructure:"output_dir"`
	AttachSheet bool         `mapstructure:"attach_sheet"`
	Log         LogConfig    `mapstructure:"log"`
	Store       StoreConfig  `mapstructure:"store"`
	Server      ServerConfig `mapstructure:"server"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig locates the answer key registry.
type StoreConfig struct {
	DSN string `mapstructure:"dsn"` // SQLite path or postgres:// URL
}

// ServerConfig holds settings for examtex serve.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	JWTSecret string `mapstructure:"jwt_secret"` // empty disables auth
	JWTIssuer string `mapstructure:"jwt_issuer"`
	CacheSize int    `mapstructure:"cache_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed", 5)
	v.SetDefault("template", "")
	v.SetDefault("output_dir", ".")
	v.SetDefault("attach_sheet", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.dsn", "examtex.db")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_issuer", "examtex")
	v.SetDefault("server.cache_size", 64)
}

// Load reads configuration. An explicit path must exist; otherwise
// examtex.yaml is searched for in the working directory and its absence
// leaves the defaults and environment in effect.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("examtex")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfig("config", path, "reading config: "+err.Error())
		}
		logging.Debug("examtex.yaml not found, using environment variables and defaults")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfig("config", path, "decoding config: "+err.Error())
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be caught by decoding.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.NewConfig("log.level", c.Log.Level, "unknown log level")
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return errors.NewConfig("log.format", c.Log.Format, "unknown log format")
	}
	if c.Store.DSN == "" {
		return errors.NewConfig("store.dsn", "", "must not be empty")
	}
	if c.Server.CacheSize < 0 {
		return errors.NewConfig("server.cache_size", strconv.Itoa(c.Server.CacheSize), "must not be negative")
	}
	return nil
}

// Logging returns the configured log level and format.
func (c *Config) Logging() (logging.Level, logging.Format) {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	return level, format
}
