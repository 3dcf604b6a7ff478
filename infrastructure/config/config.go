package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const devFrontendOrigin = "http://localhost:8000"

// Store backends
const (
	StoreNeo4j  = "neo4j"
	StoreMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`
	AllowedOrigin string `yaml:"allowed_origin"`

	// Graph store
	StoreBackend  string `yaml:"store_backend"`
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`
	Neo4jDatabase string `yaml:"neo4j_database"`

	// List limits
	DefaultNodeLimit int `yaml:"default_node_limit"`
	DefaultEdgeLimit int `yaml:"default_edge_limit"`
	MaxListLimit     int `yaml:"max_list_limit"`

	// Client side cache used by the explorer
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	RedisAddr string        `yaml:"redis_addr"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`

	// Lambda
	IsLambda bool `yaml:"-"`

	// ConfigFile is the optional YAML overlay, watched for changes in development
	ConfigFile string `yaml:"-"`
}

// Defaults returns the configuration used before any file or env overlay
func Defaults() *Config {
	return &Config{
		ServerAddress:    ":3000",
		Environment:      "development",
		StoreBackend:     StoreNeo4j,
		Neo4jDatabase:    "neo4j",
		DefaultNodeLimit: 10000,
		DefaultEdgeLimit: 100,
		MaxListLimit:     10000,
		CacheTTL:         5 * time.Minute,
		LogLevel:         "info",
		EnableMetrics:    true,
	}
}

// LoadConfig loads defaults, then the YAML file named by CONFIG_FILE, then
// environment variables, and validates the result.
func LoadConfig() (*Config, error) {
	cfg, err := loadSources(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClientConfig loads the same sources as LoadConfig for the terminal
// explorer. Server settings are not validated there.
func LoadClientConfig() (*Config, error) {
	cfg, err := loadSources(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive")
	}
	return cfg, nil
}

// loadSources layers defaults, the optional file and the environment, in
// that order. The environment always wins.
func loadSources(file string) (*Config, error) {
	cfg := Defaults()
	cfg.ConfigFile = file
	if file != "" {
		if err := LoadFile(file, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SERVER_ADDRESS") == "" {
		cfg.ServerAddress = ":" + port
	}
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AllowedOrigin = getEnv("FRONTEND_URL", cfg.AllowedOrigin)

	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)
	cfg.Neo4jURI = getEnv("NEO4J_URI", cfg.Neo4jURI)
	cfg.Neo4jUser = getEnv("NEO4J_USER", cfg.Neo4jUser)
	cfg.Neo4jPassword = getEnv("NEO4J_PASSWORD", cfg.Neo4jPassword)
	cfg.Neo4jDatabase = getEnv("NEO4J_DATABASE", cfg.Neo4jDatabase)

	cfg.DefaultNodeLimit = getEnvInt("DEFAULT_NODE_LIMIT", cfg.DefaultNodeLimit)
	cfg.DefaultEdgeLimit = getEnvInt("DEFAULT_EDGE_LIMIT", cfg.DefaultEdgeLimit)
	cfg.MaxListLimit = getEnvInt("MAX_LIST_LIMIT", cfg.MaxListLimit)

	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.OTLPEndpoint)

	cfg.IsLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required")
		}
		if c.Neo4jUser == "" || c.Neo4jPassword == "" {
			return fmt.Errorf("NEO4J_USER and NEO4J_PASSWORD are required")
		}
	case StoreMemory:
		if c.IsProduction() {
			return fmt.Errorf("memory store backend is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.IsProduction() && c.AllowedOrigin == "" {
		return fmt.Errorf("FRONTEND_URL is required in production")
	}

	return c.validateLimits()
}

func (c *Config) validateLimits() error {
	if c.MaxListLimit <= 0 {
		return fmt.Errorf("MAX_LIST_LIMIT must be positive")
	}
	if c.DefaultNodeLimit <= 0 || c.DefaultEdgeLimit <= 0 {
		return fmt.Errorf("default list limits must be positive")
	}
	if c.DefaultNodeLimit > c.MaxListLimit || c.DefaultEdgeLimit > c.MaxListLimit {
		return fmt.Errorf("default list limits cannot exceed MAX_LIST_LIMIT (%d)", c.MaxListLimit)
	}
	return nil
}

// CORSOrigin returns the single origin allowed to call the API
func (c *Config) CORSOrigin() string {
	if c.AllowedOrigin != "" {
		return c.AllowedOrigin
	}
	return devFrontendOrigin
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

// getEnvDuration parses values such as "90s" or "5m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
