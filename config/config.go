package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"sidebet/database"
)

// Config holds all runtime settings, loaded once from the environment
type Config struct {
	DatabaseURL  string
	DatabaseName string

	HTTPAddr    string
	MetricsPort string

	NATSServers string // comma-separated server addresses
	RedisAddr   string

	// ResolverUserIDs lists the operators allowed to resolve wagers,
	// resolve challenges, and dispute escrows
	ResolverUserIDs []string

	// SimulationMode enables mock-result generation and quote seeding.
	// Refused at load time when Environment is production.
	SimulationMode bool

	Environment string
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // guards instance for test overrides
)

// Get returns the process-wide configuration, loading it on first use
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		cfg, err := load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				cfg = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
		instance = cfg
	})
	return instance
}

// GetDatabaseURL joins the base URL and database name into a connection URL
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsResolver reports whether the given user ID is an authorized resolver
func (c *Config) IsResolver(userID string) bool {
	for _, id := range c.ResolverUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DatabaseName:    os.Getenv("DATABASE_NAME"),
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		MetricsPort:     envOr("METRICS_PORT", "9090"),
		NATSServers:     envOr("NATS_SERVERS", "nats://nats:4222"),
		RedisAddr:       envOr("REDIS_ADDR", "redis:6379"),
		ResolverUserIDs: splitList(os.Getenv("RESOLVER_USER_IDS")),
		Environment:     envOr("ENVIRONMENT", "development"),
	}

	if raw := os.Getenv("SIMULATION_MODE"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.SimulationMode = parsed
		}
	}

	if cfg.Environment == "test" {
		return cfg, nil
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SimulationMode && cfg.Environment == "production" {
		return nil, fmt.Errorf("SIMULATION_MODE must not be enabled in production")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated env value, dropping empty items
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Test helpers, only for use from test files.

// SetTestConfig overrides the global config instance
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig clears the global instance so the next Get reloads
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig builds a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:     "test",
		ResolverUserIDs: []string{"resolver-1", "resolver-2"},
		SimulationMode:  true,
	}
}
