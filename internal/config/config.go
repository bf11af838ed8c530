package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port         string
	Environment  string
	DatabaseURL  string
	ClerkIssuer  string
	ClerkJWKSURL string // Defaults to ClerkIssuer + /.well-known/jwks.json
	CORSOrigins  string
	TablePrefix  string
	// Text-completion configuration
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	BookModel       string // model used for generation/verification/regeneration
	AnalysisModel   string // model used for answer analysis
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	issuer := getEnv("CLERK_ISSUER", "")

	// Clerk serves its JWKS under the issuer's well-known path
	jwksURL := getEnv("CLERK_JWKS_URL", "")
	if jwksURL == "" && issuer != "" {
		jwksURL = issuer + "/.well-known/jwks.json"
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  env,
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		ClerkIssuer:  issuer,
		ClerkJWKSURL: jwksURL,
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:  tablePrefix,
		// Text-completion configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		BookModel:       getEnv("BOOK_MODEL", "gpt-4o-mini"),
		AnalysisModel:   getEnv("ANALYSIS_MODEL", "gpt-4o-mini"),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate checks that everything the server cannot run without is set.
// Auth and database configuration are validated at startup, not at request
// time, so a misconfigured deployment fails fast.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.ClerkIssuer == "" {
		return fmt.Errorf("CLERK_ISSUER is required")
	}
	if c.ClerkJWKSURL == "" {
		return fmt.Errorf("CLERK_JWKS_URL is required (or derive it by setting CLERK_ISSUER)")
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
