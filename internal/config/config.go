package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Ai       AIConfig
	Orders   OrdersConfig
	Limits   LimitConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type CatalogConfig struct {
	Source string // "file" or "postgres"
	Path   string // JSON export path for the file source
}

type AIConfig struct {
	LLMProvider       string // "ollama"
	LLMModel          string
	OllamaBaseURL     string
	EmbeddingProvider string // "ollama" or "off"
	EmbeddingModel    string
	SemanticIndex     string // "memory", "pgvector" or "off"
	GenerateTimeout   int    // seconds
}

type OrdersConfig struct {
	BaseURL string
	Key     string
	Secret  string
}

type LimitConfig struct {
	RequestsPerMinute int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Catalog: CatalogConfig{
			Source: getEnv("CATALOG_SOURCE", "file"),
			Path:   getEnv("CATALOG_PATH", "data/products.json"),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "off"),
			EmbeddingModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			SemanticIndex:     getEnv("SEMANTIC_INDEX", "off"),
			GenerateTimeout:   getEnvAsInt("GENERATE_TIMEOUT_SECONDS", 20),
		},
		Orders: OrdersConfig{
			BaseURL: getEnv("ORDERS_API_URL", ""),
			Key:     getEnv("ORDERS_API_KEY", ""),
			Secret:  getEnv("ORDERS_API_SECRET", ""),
		},
		Limits: LimitConfig{
			RequestsPerMinute: getEnvAsInt("CHAT_REQUESTS_PER_MINUTE", 20),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
