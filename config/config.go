package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// MQTT telemetry feed
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTEnabled  bool

	// Auth
	JWTSecret     string
	TokenLifetime time.Duration

	// Fleet defaults
	LowBatteryThreshold float64
	AssumedEfficiency   float64

	// Application
	HTTPPort string
	LogLevel string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTLSec, _ := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "60"))
	tokenLifetimeMin, _ := strconv.Atoi(getEnv("TOKEN_LIFETIME_MINUTES", "720"))
	lowBattery, _ := strconv.ParseFloat(getEnv("LOW_BATTERY_THRESHOLD", "20"), 64)
	assumedEff, _ := strconv.ParseFloat(getEnv("ASSUMED_EFFICIENCY_PCT", "90"), 64)
	mqttEnabled, _ := strconv.ParseBool(getEnv("MQTT_ENABLED", "false"))

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "fleet_charging"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		CacheTTL:      time.Duration(cacheTTLSec) * time.Second,

		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "fleet-charging-server"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),
		MQTTEnabled:  mqttEnabled,

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenLifetime: time.Duration(tokenLifetimeMin) * time.Minute,

		LowBatteryThreshold: lowBattery,
		AssumedEfficiency:   assumedEff,

		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
