// Package config provides configuration loading and validation utilities.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultPort = 10000

var defaults = map[string]any{
	"app.timezone":               "Local",
	"bot.token":                  "",
	"bot.webhook_url":            "",
	"bot.webhook_secret":         "",
	"bot.language":               "ar",
	"bot.offline":                false,
	"server.port":                DefaultPort,
	"server.shutdown_timeout":    "10s",
	"database.dsn":               "",
	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "postgres",
	"database.password":          "",
	"database.name":              "finance",
	"database.sslmode":           "disable",
	"database.max_open_conns":    10,
	"queue.driver":               "memory",
	"queue.workers":              4,
	"queue.buffer":               256,
	"redis.addr":                 "localhost:6379",
	"redis.password":             "",
	"redis.db":                   0,
	"redis.pool_size":            10,
	"rate_limit.enabled":         true,
	"rate_limit.per_user.limit":  30,
	"rate_limit.per_user.window": "1m",
	"rate_limit.whitelist":       []int64{},
	"logger.level":               "info",
	"logger.format":              "text",
	"logger.file":                "",
	"logger.max_size_mb":         50,
	"logger.max_backups":         3,
	"logger.max_age_days":        14,
	"sentry.enabled":             false,
	"sentry.dsn":                 "",
	"sentry.sample_rate":         1.0,
}

// envAliases lets the short variable names of the hosting platform override nested keys.
var envAliases = map[string][]string{
	"bot.token":       {"BOT_TOKEN"},
	"bot.webhook_url": {"BOT_WEBHOOK_URL", "WEBHOOK_URL"},
	"server.port":     {"SERVER_PORT", "PORT"},
	"database.dsn":    {"DATABASE_DSN", "DATABASE_URL"},
	"sentry.dsn":      {"SENTRY_DSN"},
}

// Load reads configuration from an optional YAML file and environment variables,
// validates it, and returns the resulting Config.
func Load() (*Config, *viper.Viper, error) {
	// env files are optional
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	path := configPath(env)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	return cfg, v, nil
}

// Watch re-reads the config file on change and hands the validated result to onChange.
// It is a no-op when no config file was loaded.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) {
	if v == nil || v.ConfigFileUsed() == "" || onChange == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			log.Warn("ignoring invalid config change", slog.String("file", e.Name), slog.Any("error", err))
			return
		}

		log.Info("config reloaded", slog.String("file", e.Name), slog.String("op", e.Op.String()))
		onChange(cfg)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func configPath(env string) string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return fmt.Sprintf("%s/%s.yaml", strings.TrimRight(dir, "/"), env)
	}

	return fmt.Sprintf("./configs/%s.yaml", env)
}
