package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Gateway GatewayConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Auction AuctionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// GatewayConfig points at the marketplace API that resolves users,
// sessions and listings.
type GatewayConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicEvents   string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

// AuctionConfig carries the bidding-engine tunables. Defaults match the
// values the marketplace frontend was built against.
type AuctionConfig struct {
	SnipeWindowSeconds    int
	SnipeExtensionSeconds int
	CombinedBidsLimit     int
	BidHistoryLimit       int
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	gatewayTimeout, _ := strconv.Atoi(getEnv("GATEWAY_TIMEOUT_SECONDS", "10"))
	snipeWindow, _ := strconv.Atoi(getEnv("AUCTION_SNIPE_WINDOW_SECONDS", "60"))
	snipeExtension, _ := strconv.Atoi(getEnv("AUCTION_SNIPE_EXTENSION_SECONDS", "20"))
	combinedLimit, _ := strconv.Atoi(getEnv("AUCTION_COMBINED_BIDS_LIMIT", "50"))
	historyLimit, _ := strconv.Atoi(getEnv("AUCTION_BID_HISTORY_LIMIT", "100"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Gateway: GatewayConfig{
			BaseURL:        getEnv("MARKETPLACE_API_URL", "http://localhost:3500/v1"),
			TimeoutSeconds: gatewayTimeout,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicEvents:   getEnv("KAFKA_TOPIC_NEGOTIATION_EVENTS", "negotiation-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "negotiation-service-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Auction: AuctionConfig{
			SnipeWindowSeconds:    snipeWindow,
			SnipeExtensionSeconds: snipeExtension,
			CombinedBidsLimit:     combinedLimit,
			BidHistoryLimit:       historyLimit,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
