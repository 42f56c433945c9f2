package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	// StorageDriver selects the notification, sequence and account stores
	StorageDriver string
	// RetentionDays is how long notifications are kept before the sweeper removes them
	RetentionDays   int
	CleanupSchedule string
	// AllowOrigins is a comma separated list of origins allowed by CORS
	AllowOrigins string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "crm-notifications"),
		SkipAuth:        getEnv("SKIP_AUTH", "false") == "true",
		Environment:     getEnv("ENVIRONMENT", "development"),
		AppId:           getEnv("APP_ID", "crm-notifications"),
		StorageDriver:   getEnv("STORAGE_DRIVER", StorageMongo),
		RetentionDays:   getEnvInt("NOTIFICATION_RETENTION_DAYS", 180),
		CleanupSchedule: getEnv("NOTIFICATION_CLEANUP_SCHEDULE", "0 3 * * *"),
		AllowOrigins:    getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
	}, nil
}

func (c *Config) UsesMemoryStorage() bool {
	return c.StorageDriver == StorageMemory
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value %q for %s, using %d", value, key, fallback)
		return fallback
	}
	return n
}
