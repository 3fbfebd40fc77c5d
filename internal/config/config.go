package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port            string
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	OrderServiceURL string
	OrderTimeout    time.Duration
	CartMergePolicy string
	SessionTTL      time.Duration
	CookieSecure    bool
	AdminEmail      string
	AdminPassword   string
	UploadDir       string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	return Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		OrderServiceURL: getEnvOrDefault("ORDER_SERVICE_URL", ""),
		OrderTimeout:    getDurationEnv("ORDER_TIMEOUT_SECONDS", 10, time.Second),
		CartMergePolicy: getEnvOrDefault("CART_MERGE_POLICY", "replace"),
		SessionTTL:      getDurationEnv("SESSION_TTL_MINUTES", 120, time.Minute),
		CookieSecure:    getBoolEnv("COOKIE_SECURE", false),
		AdminEmail:      getEnvOrDefault("ADMIN_EMAIL", ""),
		AdminPassword:   getEnvOrDefault("ADMIN_PASSWORD", ""),
		UploadDir:       getEnvOrDefault("UPLOAD_DIR", "public"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
