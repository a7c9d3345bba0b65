// internal/distribution/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration for the distribution engine.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	GRPC   GRPCConfig   `yaml:"grpc"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Auth   AuthConfig   `yaml:"auth"`
	Engine EngineConfig `yaml:"engine"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// MongoConfig contains document-store configuration.
type MongoConfig struct {
	URI         string        `yaml:"uri"`
	Database    string        `yaml:"database"`
	PoolSize    uint64        `yaml:"poolSize"`
	ConnTimeout time.Duration `yaml:"connTimeout"`
}

// GRPCConfig contains the gRPC health/reflection server configuration.
type GRPCConfig struct {
	Port string `yaml:"port"`
}

// KafkaConfig contains the trigger-transport configuration. Each field names
// the topic a store-change feed of spec.md §6.3 is simulated over.
type KafkaConfig struct {
	Brokers string      `yaml:"brokers"`
	GroupID string      `yaml:"groupId"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics names the topic backing each trigger registration.
type KafkaTopics struct {
	PurchaseWrites      string `yaml:"purchaseWrites"`
	PosItemUpdates      string `yaml:"posItemUpdates"`
	NotificationUpdates string `yaml:"notificationUpdates"`
	OrderCreates        string `yaml:"orderCreates"`
}

// AuthConfig contains credentials for the authenticated RPC surface.
type AuthConfig struct {
	JWTSigningKey string `yaml:"jwtSigningKey"`
	APIKeyHash    string `yaml:"apiKeyHash"`
}

// EngineConfig carries the engine-specific knobs called out by spec.md §9.
type EngineConfig struct {
	// CanonicalItemsCollection resolves the open question about the
	// canonical item path (spec.md §9): defaults to "canonical_items".
	CanonicalItemsCollection string `yaml:"canonicalItemsCollection"`
}

// LoadConfig loads configuration from a YAML file, falling back to defaults
// when the file does not exist, then applying environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address:      "127.0.0.1:8090",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Mongo: MongoConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "pos_distribution",
			PoolSize:    100,
			ConnTimeout: 30 * time.Second,
		},
		GRPC: GRPCConfig{
			Port: "50060",
		},
		Kafka: KafkaConfig{
			Brokers: "localhost:9092",
			GroupID: "distribution-engine",
			Topics: KafkaTopics{
				PurchaseWrites:      "purchase-writes",
				PosItemUpdates:      "pos-item-updates",
				NotificationUpdates: "notification-updates",
				OrderCreates:        "order-creates",
			},
		},
		Engine: EngineConfig{
			CanonicalItemsCollection: "canonical_items",
		},
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return overrideWithEnv(cfg), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return overrideWithEnv(cfg), nil
}

// overrideWithEnv overrides config with environment variables.
func overrideWithEnv(cfg *Config) *Config {
	if v := os.Getenv("DISTRIBUTION_SERVER_ADDR"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("DISTRIBUTION_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("DISTRIBUTION_MONGO_DB"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("DISTRIBUTION_GRPC_PORT"); v != "" {
		cfg.GRPC.Port = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		cfg.Kafka.GroupID = v
	}
	if v := os.Getenv("DISTRIBUTION_CANONICAL_ITEMS_COLLECTION"); v != "" {
		cfg.Engine.CanonicalItemsCollection = v
	}
	return cfg
}
