package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Table and index names are
// injected per environment; nothing in the persistence layer hardcodes them.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion string

	// Tables
	ProjectsTable               string
	ProjectsCreationDateIndex   string
	QuotationsTable             string
	QuotationsPendingReviewIdx  string
	QuotationsClientIndex       string
	PartsTable                  string
	PartsHierarchyIndex         string
	OrdersTable                 string
	OrdersCreationDateIndex     string
	OrdersStatusIndex           string
	OrdersOpenOrdersIndex       string
	OrdersHierarchyIndex        string

	// Object storage
	PartsBucket     string
	PresignedURLTTL time.Duration

	// Payments
	MercadoPagoAccessToken string
	CheckoutSuccessURL     string
	CheckoutCancelURL      string

	// Events
	EventBusName string

	// Rate limiting. When set, limits are counted in DynamoDB and shared
	// across instances; when empty each instance counts in memory.
	RateLimitTable string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// WebSocket configuration
	WebSocketEndpoint string
	ConnectionsTable  string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// CORS
	AllowedOrigins []string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),

		ProjectsTable:              getEnv("PROJECTS_TABLE", "torvek-projects"),
		ProjectsCreationDateIndex:  getEnv("PROJECTS_CREATION_DATE_INDEX", "CreationDateIndex"),
		QuotationsTable:            getEnv("QUOTATIONS_TABLE", "torvek-quotations"),
		QuotationsPendingReviewIdx: getEnv("QUOTATIONS_PENDING_REVIEW_INDEX", "PendingReviewIndex"),
		QuotationsClientIndex:      getEnv("QUOTATIONS_CLIENT_INDEX", "ClientIndex"),
		PartsTable:                 getEnv("PARTS_TABLE", "torvek-parts"),
		PartsHierarchyIndex:        getEnv("PARTS_HIERARCHY_INDEX", "HierarchyIndex"),
		OrdersTable:                getEnv("ORDERS_TABLE", "torvek-orders"),
		OrdersCreationDateIndex:    getEnv("ORDERS_CREATION_DATE_INDEX", "CreationDateIndex"),
		OrdersStatusIndex:          getEnv("ORDERS_STATUS_INDEX", "StatusIndex"),
		OrdersOpenOrdersIndex:      getEnv("ORDERS_OPEN_ORDERS_INDEX", "OpenOrdersIndex"),
		OrdersHierarchyIndex:       getEnv("ORDERS_HIERARCHY_INDEX", "HierarchyIndex"),

		PartsBucket:     getEnv("PARTS_BUCKET", "torvek-part-files"),
		PresignedURLTTL: time.Duration(getEnvInt("PRESIGNED_URL_TTL_MINUTES", 15)) * time.Minute,

		MercadoPagoAccessToken: getEnv("MERCADO_PAGO_ACCESS_TOKEN", ""),
		CheckoutSuccessURL:     getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
		CheckoutCancelURL:      getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),

		EventBusName: getEnv("EVENT_BUS_NAME", "torvek-events"),

		RateLimitTable: getEnv("RATE_LIMIT_TABLE", ""),

		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),
		ConnectionsTable:  getEnv("CONNECTIONS_TABLE", "torvek-connections"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "torvek-backend"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.MercadoPagoAccessToken == "" {
			return fmt.Errorf("MERCADO_PAGO_ACCESS_TOKEN is required in production")
		}
		if c.PartsBucket == "" {
			return fmt.Errorf("PARTS_BUCKET is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
