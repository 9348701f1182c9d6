package config

import (
	"os"
	"strings"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// GetEnv returns the value of an environment variable or a default value if not set.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvironment returns the current environment, defaulting to development.
func GetEnvironment() string {
	return strings.ToLower(GetEnv("TRACKSHELF_SERVER_ENVIRONMENT", EnvDevelopment))
}

// IsDevelopment returns true if running in development environment.
func IsDevelopment() bool {
	return GetEnvironment() == EnvDevelopment
}

// IsProductionLike returns true for staging and production.
func IsProductionLike() bool {
	return isProductionLike(GetEnvironment())
}

func isProductionLike(env string) bool {
	env = strings.ToLower(env)
	return env == EnvStaging || env == EnvProduction
}
