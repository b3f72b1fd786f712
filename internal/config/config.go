package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL         string
	RedisAddr           string
	RabbitURL           string
	MongoURI            string
	StripeSecretKey     string
	StripeWebhookSecret string
	ResendAPIKey        string
	EmailFrom           string
	AppURL              string
	ListenAddr          string
	OTLPEndpoint        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RabbitURL:           os.Getenv("RABBIT_URL"),
		MongoURI:            os.Getenv("MONGO_URI"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		EmailFrom:           getenv("EMAIL_FROM", "Eat Wild <events@benimadali.com>"),
		AppURL:              getenv("APP_URL", "http://localhost:8080"),
		ListenAddr:          getenv("LISTEN_ADDR", ":8080"),
		OTLPEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
