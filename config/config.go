package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	APP_URL string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	// Price ids for the static tier catalog. One per paid tier/interval.
	STRIPE_PRICE_STARTER_MONTHLY string
	STRIPE_PRICE_STARTER_YEARLY  string
	STRIPE_PRICE_PRO_MONTHLY     string
	STRIPE_PRICE_PRO_YEARLY      string

	GENERATOR_BASE_URL string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	APP_URL = getEnv("APP_URL", "http://localhost:5173")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = mustEnv("STRIPE_WEBHOOK_SECRET")

	STRIPE_PRICE_STARTER_MONTHLY = mustEnv("STRIPE_PRICE_STARTER_MONTHLY")
	STRIPE_PRICE_STARTER_YEARLY = mustEnv("STRIPE_PRICE_STARTER_YEARLY")
	STRIPE_PRICE_PRO_MONTHLY = mustEnv("STRIPE_PRICE_PRO_MONTHLY")
	STRIPE_PRICE_PRO_YEARLY = mustEnv("STRIPE_PRICE_PRO_YEARLY")

	GENERATOR_BASE_URL = mustEnv("GENERATOR_BASE_URL")

	GOOGLE_CLIENT_ID = mustEnv("GOOGLE_CLIENT_ID")
	GOOGLE_CLIENT_SECRET = mustEnv("GOOGLE_CLIENT_SECRET")
	GOOGLE_REDIRECT_URL = mustEnv("GOOGLE_REDIRECT_URL")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
