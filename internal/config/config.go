package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	Port            string
	DatabasePath    string
	AllowedOrigins  string
	SessionDuration time.Duration
	LogLevel        string

	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSenderEmail string
	MailgunSenderName  string
	ResetLinkBase      string

	AWSRegion    string
	AWSEndpoint  string
	AWSAccessKey string
	AWSSecretKey string
	DynamoTable  string
	ImageBucket  string

	RecommendInterpreter string
	RecommendScript      string
}

func Load() *Config {
	// Best effort: a missing .env file is fine in production.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "production"),
		Port:            getEnv("PORT", "9001"),
		DatabasePath:    getEnv("DATABASE_PATH", "wardrobe.db"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:9001"),
		SessionDuration: getDurationEnv("SESSION_DURATION_HOURS", 24),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),

		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "noreply@wardrobeapp.io"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Wardrobe App"),
		ResetLinkBase:      getEnv("RESET_LINK_BASE", "http://localhost:9001/reset-password"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:  getEnv("AWS_ENDPOINT", ""),
		AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTable:  getEnv("DYNAMO_TABLE", "User_Clothing"),
		ImageBucket:  getEnv("IMAGE_BUCKET", "pocket-closet-clothing-images"),

		RecommendInterpreter: getEnv("RECOMMEND_INTERPRETER", "python3"),
		RecommendScript:      getEnv("RECOMMEND_SCRIPT", "scripts/recommendation.py"),
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultHours int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if hours, err := strconv.Atoi(value); err == nil && hours > 0 {
			return time.Duration(hours) * time.Hour
		}
	}
	return time.Duration(defaultHours) * time.Hour
}
