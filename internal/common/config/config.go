package config

import (
	"os"
	"strconv"
	"strings"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port           string
	Environment    string
	ReadTimeout    int
	WriteTimeout   int
	BodyLimitMB    int
	CORSOrigins    []string
	MergeTolerance float64

	// Файлы для режима наблюдения; пусто = выключено
	WatchSettings string
	WatchShapes   string
	WatchOutput   string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3003"),
		Environment:    getEnv("ENV", "development"),
		ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
		BodyLimitMB:    getEnvAsInt("BODY_LIMIT_MB", 16),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),
		MergeTolerance: getEnvAsFloat("MERGE_TOLERANCE", 0.0001),
		WatchSettings:  getEnv("WATCH_SETTINGS", ""),
		WatchShapes:    getEnv("WATCH_SHAPES", ""),
		WatchOutput:    getEnv("WATCH_OUTPUT", ""),
	}
}

// WatchEnabled: заданы оба файла для наблюдения.
func (c *Config) WatchEnabled() bool {
	return c.WatchSettings != "" && c.WatchShapes != ""
}

// BodyLimit лимит тела запроса в байтах.
func (c *Config) BodyLimit() int {
	return c.BodyLimitMB * 1024 * 1024
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
			return f
		}
	}
	return defaultVal
}

// getEnvAsList разбирает список через запятую
func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
