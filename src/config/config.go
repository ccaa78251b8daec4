package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	ElasticURL   string
	ElasticIndex string
	SchemaPath   string
	TemplatePath string

	GeocoderURL       string
	GeocoderUserAgent string

	// ScraperURL points at the listings sidecar; empty disables live
	// acquisition (searches then run on the existing catalog only).
	ScraperURL     string
	ScraperTimeout time.Duration

	// SeedFile is an optional TSV ingested once at startup.
	SeedFile string

	// RedisAddr enables the geocode cache; empty disables it.
	RedisAddr string

	// KafkaBroker enables acquisition events; empty disables them.
	KafkaBroker string

	DefaultRadiusKm float64

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. A missing .env is not an error; the environment alone is enough.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("load .env file: %w", err)
			}
		}
	}

	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8888"),
		ElasticURL:        getEnv("ELASTIC_URL", "http://localhost:9200"),
		ElasticIndex:      getEnv("ELASTIC_INDEX", "shops"),
		SchemaPath:        getEnv("ELASTIC_SCHEMA", "./src/templates/schema.json"),
		TemplatePath:      getEnv("HTML_TEMPLATE", "./src/templates/template.html"),
		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "NearbyShopFinder/1.0"),
		ScraperURL:        getEnv("SCRAPER_URL", ""),
		ScraperTimeout:    getEnvAsDuration("SCRAPER_TIMEOUT", 90*time.Second),
		SeedFile:          getEnv("SEED_FILE", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		KafkaBroker:       getEnv("KAFKA_BROKER", ""),
		DefaultRadiusKm:   getEnvAsFloat("DEFAULT_RADIUS_KM", 4),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
