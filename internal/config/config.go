package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	Port          string
	OpenAIAPIKey  string
	LogLevel      string
	LogFormat     string

	SuperAdminUsername string
	SuperAdminPassword string

	// Progress formula and certificate policy
	ProgressTaskWeight        float64
	ProgressAttendanceCapDays int
	CertificateMinCompletion  float64
	CertificateMinAttendance  int

	ReconcileInterval       time.Duration
	StatsCacheTTL           time.Duration
	NotificationPollSeconds int
	ShutdownTimeout         time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "internuser"),
		DBPassword:    getEnv("DB_PASSWORD", "internpassword"),
		DBName:        getEnv("DB_NAME", "intern_management"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		Port:          getEnv("PORT", "8080"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),

		SuperAdminUsername: getEnv("SUPERADMIN_USERNAME", "Watcher"),
		SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", "change-me-watcher"),

		ProgressTaskWeight:        getEnvFloat("PROGRESS_TASK_WEIGHT", 80),
		ProgressAttendanceCapDays: getEnvInt("PROGRESS_ATTENDANCE_CAP_DAYS", 30),
		CertificateMinCompletion:  getEnvFloat("CERTIFICATE_MIN_COMPLETION", 0.80),
		CertificateMinAttendance:  getEnvInt("CERTIFICATE_MIN_ATTENDANCE", 20),

		ReconcileInterval:       getEnvDuration("RECONCILE_INTERVAL", time.Hour),
		StatsCacheTTL:           getEnvDuration("STATS_CACHE_TTL", 30*time.Second),
		NotificationPollSeconds: getEnvInt("NOTIFICATION_POLL_SECONDS", 5),
		ShutdownTimeout:         getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		slog.Warn("Invalid number in environment, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return parsed
}
