package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup by Load.
type Config struct {
	Env             string
	APIBaseURL      string
	APITimeout      time.Duration
	DesignTimeout   time.Duration
	BridgeAddr      string
	AllowedOrigins  []string
	RateLimitPerMin int

	CredentialStore string // memory | redis | sqlite
	RedisURL        string
	CredentialTTL   time.Duration
	SQLitePath      string
	DeviceID        string

	RefreshSingleFlight bool
	ItemsPerPage        int
	MaxCartQuantity     int

	// MockAPIAddr starts the in-process storefront API when set.
	MockAPIAddr string
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Env:             getEnv("APP_ENV", "development"),
		APIBaseURL:      strings.TrimSuffix(getEnv("API_BASE_URL", "http://localhost:3000/api"), "/"),
		APITimeout:      getDuration("API_TIMEOUT", 15*time.Second),
		DesignTimeout:   getDuration("DESIGN_TIMEOUT", 60*time.Second),
		BridgeAddr:      getEnv("BRIDGE_ADDR", "127.0.0.1:8090"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitPerMin: getInt("RATE_LIMIT_PER_MINUTE", 300),

		CredentialStore: getEnv("CREDENTIAL_STORE", "sqlite"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CredentialTTL:   getDuration("CREDENTIAL_TTL", 0),
		SQLitePath:      getEnv("SQLITE_PATH", "plantdecor.db"),
		DeviceID:        getEnv("DEVICE_ID", "default"),

		RefreshSingleFlight: getBool("REFRESH_SINGLE_FLIGHT", true),
		ItemsPerPage:        getInt("ITEMS_PER_PAGE", 20),
		MaxCartQuantity:     getInt("MAX_CART_QUANTITY", 99),

		MockAPIAddr: os.Getenv("MOCK_API_ADDR"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, defaultVal)
		return defaultVal
	}
	return n
}

func getBool(key string, defaultVal bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, raw, defaultVal)
		return defaultVal
	}
	return b
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, raw, defaultVal)
		return defaultVal
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(strings.TrimSuffix(part, "/")); p != "" {
			out = append(out, p)
		}
	}
	return out
}
