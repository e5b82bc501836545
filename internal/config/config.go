// internal/config/config.go

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the console and the mock API server.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	SearchPageSize int
	RateLimitRPS   float64
	Receipt        ReceiptConfig
	MockAPI        MockAPIConfig
}

// ReceiptConfig holds receipt rendering configuration.
type ReceiptConfig struct {
	Organization string
	Subtitle     string
	UnicodeFont  string
}

// MockAPIConfig holds the development backend configuration. The
// fault fields inject artificial latency and errors so client-side
// degradation can be exercised locally.
type MockAPIConfig struct {
	Port           string
	JWTSecret      string
	TokenTTL       time.Duration
	FaultLatency   time.Duration
	FaultJitter    time.Duration
	FaultErrorRate float64
}

// Load reads configuration from a .env file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	debounceMs, err := strconv.Atoi(getEnv("SHELFWISE_SEARCH_DEBOUNCE_MS", "300"))
	if err != nil || debounceMs < 0 {
		return nil, fmt.Errorf("invalid SHELFWISE_SEARCH_DEBOUNCE_MS: %q", os.Getenv("SHELFWISE_SEARCH_DEBOUNCE_MS"))
	}

	pageSize, err := strconv.Atoi(getEnv("SHELFWISE_SEARCH_PAGE_SIZE", "5"))
	if err != nil || pageSize < 1 {
		return nil, fmt.Errorf("invalid SHELFWISE_SEARCH_PAGE_SIZE: %q", os.Getenv("SHELFWISE_SEARCH_PAGE_SIZE"))
	}

	timeoutSecs, err := strconv.Atoi(getEnv("SHELFWISE_REQUEST_TIMEOUT_SECONDS", "15"))
	if err != nil || timeoutSecs < 1 {
		return nil, fmt.Errorf("invalid SHELFWISE_REQUEST_TIMEOUT_SECONDS: %q", os.Getenv("SHELFWISE_REQUEST_TIMEOUT_SECONDS"))
	}

	rps, err := strconv.ParseFloat(getEnv("SHELFWISE_RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid SHELFWISE_RATE_LIMIT_RPS: %q", os.Getenv("SHELFWISE_RATE_LIMIT_RPS"))
	}

	baseURL := strings.TrimRight(getEnv("SHELFWISE_API_URL", "http://localhost:8080/api/v1"), "/")

	config := &Config{
		APIBaseURL:     baseURL,
		RequestTimeout: time.Duration(timeoutSecs) * time.Second,
		SearchDebounce: time.Duration(debounceMs) * time.Millisecond,
		SearchPageSize: pageSize,
		RateLimitRPS:   rps,
		Receipt:        loadReceiptConfig(),
		MockAPI:        loadMockAPIConfig(),
	}

	return config, nil
}

// loadReceiptConfig loads receipt rendering config
func loadReceiptConfig() ReceiptConfig {
	return ReceiptConfig{
		Organization: getEnv("SHELFWISE_RECEIPT_ORG", "ShelfWise Library"),
		Subtitle:     getEnv("SHELFWISE_RECEIPT_SUBTITLE", "Book Issue Receipt"),
		UnicodeFont:  getEnv("SHELFWISE_RECEIPT_FONT", ""),
	}
}

// loadMockAPIConfig loads the development backend config
func loadMockAPIConfig() MockAPIConfig {
	ttlMins, err := strconv.Atoi(getEnv("SHELFWISE_MOCK_TOKEN_MINUTES", "60"))
	if err != nil || ttlMins < 1 {
		ttlMins = 60
	}

	latencyMs, _ := strconv.Atoi(getEnv("SHELFWISE_MOCK_FAULT_LATENCY_MS", "0"))
	jitterMs, _ := strconv.Atoi(getEnv("SHELFWISE_MOCK_FAULT_JITTER_MS", "0"))
	errorRate, _ := strconv.ParseFloat(getEnv("SHELFWISE_MOCK_FAULT_ERROR_RATE", "0"), 64)

	return MockAPIConfig{
		Port:           getEnv("SHELFWISE_MOCK_PORT", "8080"),
		JWTSecret:      getEnv("SHELFWISE_MOCK_JWT_SECRET", "dev_only_secret"),
		TokenTTL:       time.Duration(ttlMins) * time.Minute,
		FaultLatency:   time.Duration(latencyMs) * time.Millisecond,
		FaultJitter:    time.Duration(jitterMs) * time.Millisecond,
		FaultErrorRate: errorRate,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
