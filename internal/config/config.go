package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port           string
	MongoURI       string
	JWTSecret      string
	JWTExpiry      string
	AllowedOrigins []string

	// FineBaseURL is the public base for owner-facing settlement links; the
	// access token is appended to it.
	FineBaseURL string

	SMS   SMSConfig
	Redis RedisConfig
}

type SMSConfig struct {
	GatewayURL string
	APIKey     string
	SenderID   string
	Timeout    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

func Load() *Config {
	// A missing .env is fine in deployed environments where variables are
	// set directly.
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		logrus.Fatal("MONGO_URI environment variable is not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173"
	}

	fineBaseURL := os.Getenv("FINE_BASE_URL")
	if fineBaseURL == "" {
		fineBaseURL = "http://localhost:5173/fines"
	}

	return &Config{
		Port:           port,
		MongoURI:       mongoURI,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiry:      os.Getenv("JWT_EXPIRY"),
		AllowedOrigins: splitAndTrim(allowedOrigins),
		FineBaseURL:    fineBaseURL,
		SMS: SMSConfig{
			GatewayURL: os.Getenv("SMS_GATEWAY_URL"),
			APIKey:     os.Getenv("SMS_API_KEY"),
			SenderID:   os.Getenv("SMS_SENDER_ID"),
			Timeout:    10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
			Enabled:  os.Getenv("REDIS_ADDR") != "",
		},
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
