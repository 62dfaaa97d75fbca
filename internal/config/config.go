package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Mongo        MongoConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Rabbit       RabbitConfig
	Gateway      GatewayConfig
	JWT          JWTConfig
	Engine       EngineConfig
	Logging      LoggingConfig
	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type RabbitConfig struct {
	URL      string
	Exchange string
}

type GatewayConfig struct {
	URL         string
	Token       string
	AdminChatID int64
}

type JWTConfig struct {
	GatewaySecret string
}

// EngineConfig tunes the ranking engine and session behaviour. Zero values
// fall back to built-in defaults downstream.
type EngineConfig struct {
	TopK            int
	MaxAgeGap       int
	MinHobbyOverlap float64
	ResurfaceWindow time.Duration
	ReportThreshold int
	Cooldown        time.Duration
	DraftTTL        time.Duration
	SearchTTL       time.Duration
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	viper.SetDefault("ENGINE_TOP_K", 50)
	viper.SetDefault("ENGINE_MAX_AGE_GAP", 10)
	viper.SetDefault("ENGINE_MIN_HOBBY_OVERLAP", 0.3)
	viper.SetDefault("ENGINE_RESURFACE_WINDOW", "8h")
	viper.SetDefault("ENGINE_REPORT_THRESHOLD", 3)
	viper.SetDefault("ENGINE_COOLDOWN", "1s")
	viper.SetDefault("ENGINE_DRAFT_TTL", "24h")
	viper.SetDefault("ENGINE_SEARCH_TTL", "1h")

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGO_DB"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Rabbit: RabbitConfig{
			URL:      viper.GetString("RABBIT_URL"),
			Exchange: viper.GetString("RABBIT_EXCHANGE"),
		},
		Gateway: GatewayConfig{
			URL:         viper.GetString("GATEWAY_URL"),
			Token:       viper.GetString("GATEWAY_TOKEN"),
			AdminChatID: viper.GetInt64("GATEWAY_ADMIN_CHAT_ID"),
		},
		JWT: JWTConfig{
			GatewaySecret: viper.GetString("JWT_GATEWAY_SECRET"),
		},
		Engine: EngineConfig{
			TopK:            viper.GetInt("ENGINE_TOP_K"),
			MaxAgeGap:       viper.GetInt("ENGINE_MAX_AGE_GAP"),
			MinHobbyOverlap: viper.GetFloat64("ENGINE_MIN_HOBBY_OVERLAP"),
			ResurfaceWindow: viper.GetDuration("ENGINE_RESURFACE_WINDOW"),
			ReportThreshold: viper.GetInt("ENGINE_REPORT_THRESHOLD"),
			Cooldown:        viper.GetDuration("ENGINE_COOLDOWN"),
			DraftTTL:        viper.GetDuration("ENGINE_DRAFT_TTL"),
			SearchTTL:       viper.GetDuration("ENGINE_SEARCH_TTL"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo database name is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Gateway.URL == "" {
		return fmt.Errorf("gateway URL is required")
	}
	if c.JWT.GatewaySecret == "" {
		return fmt.Errorf("JWT gateway secret is required")
	}
	if len(c.JWT.GatewaySecret) < 32 {
		return fmt.Errorf("JWT gateway secret must be at least 32 characters")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetRedisAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
