package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Environment    string
	MongoURI       string
	MongoDB        string
	RedisURL       string
	KafkaBrokers   string
	KafkaTopic     string
	SNSTopicARN    string
	JWTSecret      string
	IdempotencyTTL time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	return Config{
		Port:           getEnv("PORT", "8086"),
		Environment:    getEnv("APP_ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "shop"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "checkout.completed"),
		SNSTopicARN:    getEnv("SNS_TOPIC_ARN", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		IdempotencyTTL: time.Hour * 24, // recorded checkout outcomes expire after a day
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
