package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the notification service.
type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string
	LogLevel  string

	BaseURL         string
	ResourceBaseURL string
	AuthBaseURL     string
	GatewayTimeout  time.Duration

	IsMailOn         bool
	SMTPHost         string
	SMTPPort         string
	SMTPSender       string
	SMTPPassword     string
	EmailTemplateDir string

	FanOutConcurrency  int
	FanOutTimeout      time.Duration
	ActivityConfigPath string
	NotificationTTL    time.Duration

	RedisAddr     string
	RedisPassword string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:    getEnv("MONGO_DB", "notification"),
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		BaseURL:         getEnv("BASE_URL", "http://localhost:3000"),
		ResourceBaseURL: getEnv("RESOURCE_BASE_URL", "http://localhost:8081"),
		AuthBaseURL:     getEnv("AUTH_BASE_URL", "http://localhost:8082"),
		GatewayTimeout:  getEnvAsDuration("GATEWAY_TIMEOUT", 30*time.Second),

		IsMailOn:         getEnvAsBool("IS_MAIL_ON", false),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPSender:       getEnv("SMTP_SENDER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailTemplateDir: getEnv("EMAIL_TEMPLATE_DIR", "./templates/email"),

		FanOutConcurrency:  getEnvAsInt("FANOUT_CONCURRENCY", 8),
		FanOutTimeout:      getEnvAsDuration("FANOUT_TIMEOUT", 2*time.Minute),
		ActivityConfigPath: getEnv("ACTIVITY_CONFIG_PATH", ""),
		NotificationTTL:    getEnvAsDuration("NOTIFICATION_TTL", 30*24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
