package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv" // 引入這個庫來讀取 .env 檔案
)

// Config 結構體用於儲存應用程式的配置
type Config struct {
	MongoDBURI string
	DBName     string
	Port       string
	Env        string

	LogLevel  string
	LogFormat string

	JWTSecret      string
	AllowedOrigins []string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheSize     int

	ArchiveSchedule string
}

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "change-me"

var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a non-default value in production")

// LoadConfig 載入配置，優先從環境變數讀取，其次從 .env 檔案讀取
func LoadConfig() *Config {
	// 嘗試載入 .env 檔案，如果不存在也不會報錯
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	return &Config{
		MongoDBURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "travel_users"),
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		AllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		CacheSize:       getEnvAsInt("CACHE_SIZE", 256),
		ArchiveSchedule: getEnv("ARCHIVE_SCHEDULE", "@hourly"),
	}
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate rejects settings that are unsafe for the current environment.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return ErrInsecureJWTSecret
	}
	return nil
}

// getEnv 輔助函數，用於從環境變數獲取值，如果不存在則使用預設值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
