package service

import (
	"fmt"
	"os"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	StatePath   string

	API struct {
		BaseURL string
	}

	Stripe struct {
		PublishableKey string
		SecretKey      string
	}

	Auth struct {
		// InvalidTokenStatus pins the status code that means "token
		// expired" for this deployment's API surface: 401, 422, or 0
		// to accept both.
		InvalidTokenStatus int
	}
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		StatePath:   getEnv("STATE_PATH", "./db/storefront.db"),
	}

	// Backend API
	config.API.BaseURL = getEnv("API_BASE_URL", "https://api.pensee-boheme.fr/api")

	// Stripe
	config.Stripe.PublishableKey = getEnv("STRIPE_PUBLISHABLE_KEY", "")
	config.Stripe.SecretKey = getEnv("STRIPE_SECRET_KEY", "")

	// Auth
	switch status := getEnv("AUTH_INVALID_TOKEN_STATUS", ""); status {
	case "", "0":
		config.Auth.InvalidTokenStatus = 0
	case "401":
		config.Auth.InvalidTokenStatus = 401
	case "422":
		config.Auth.InvalidTokenStatus = 422
	default:
		return nil, fmt.Errorf("invalid AUTH_INVALID_TOKEN_STATUS %q", status)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
