// Package config загружает конфигурацию сервера из окружения или .env файла.
package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// Config содержит конфигурацию сервера удаленного хранилища
type Config struct {
	ServerAddr   string `mapstructure:"SERVER_ADDR"`
	DatabasePath string `mapstructure:"DB_PATH"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	RateLimit    int    `mapstructure:"RATE_LIMIT"`
}

// New загружает конфигурацию. Переменные окружения имеют приоритет;
// при их отсутствии загружается .env файл, если он существует.
func New(logger *slog.Logger) (Config, error) {
	viper.AutomaticEnv()

	envVars := []string{"SERVER_ADDR", "DB_PATH", "LOG_LEVEL", "RATE_LIMIT"}
	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			logger.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	if !viper.IsSet("SERVER_ADDR") {
		// Переменные окружения не заданы - пробуем .env файл
		viper.SetConfigFile(".env")
		viper.SetConfigType("env")
		if err := viper.ReadInConfig(); err != nil {
			logger.Debug("No .env file found", "error", err)
		}
	}

	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("DB_PATH", "roomkeeper.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RATE_LIMIT", 100)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger.Info("Configuration loaded",
		"server_addr", config.ServerAddr,
		"db_path", config.DatabasePath,
		"log_level", config.LogLevel)

	return config, nil
}

// SlogLevel конвертирует текстовый уровень в slog.Level
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
