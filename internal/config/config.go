package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mvigneshwaran/health-assistant/internal/logger"
)

// History backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	ServerPort      string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AIProvider      string // "gemini" or "openai"
	DefaultLanguage string // "en" or "ta"
	History         HistoryConfig
	Alert           AlertConfig
	Extractor       ExtractorConfig
	Logger          LoggerConfig
}

type HistoryConfig struct {
	Backend  string
	FilePath string
	Redis    RedisConfig
	DB       DBConfig
}

type RedisConfig struct {
	Host string
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// AlertConfig configures the clinician alert channel. Alerts are disabled
// when the token is empty.
type AlertConfig struct {
	TelegramToken string
	DoctorChatID  int64
}

type ExtractorConfig struct {
	FFmpegPath  string
	FFprobePath string
	Timeout     time.Duration
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	doctorChatID, err := strconv.ParseInt(getEnvOrDefault("DOCTOR_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DOCTOR_CHAT_ID: %w", err)
	}

	extractorTimeout, err := time.ParseDuration(getEnvOrDefault("FRAME_EXTRACT_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FRAME_EXTRACT_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ServerPort:      getEnvOrDefault("PORT", "8080"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AIProvider:      strings.ToLower(getEnvOrDefault("AI_PROVIDER", "gemini")),
		DefaultLanguage: getEnvOrDefault("DEFAULT_LANGUAGE", "en"),
		History: HistoryConfig{
			Backend:  strings.ToLower(getEnvOrDefault("HISTORY_BACKEND", BackendFile)),
			FilePath: getEnvOrDefault("HISTORY_FILE", "data/health_analyses.json"),
			Redis: RedisConfig{
				Host: getEnvOrDefault("REDIS_HOST", "localhost"),
				Port: getEnvOrDefault("REDIS_PORT", "6379"),
			},
			DB: DBConfig{
				Host:     getEnvOrDefault("DB_HOST", "localhost"),
				Port:     getEnvOrDefault("DB_PORT", "5432"),
				User:     getEnvOrDefault("DB_USER", "postgres"),
				Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
				DBName:   getEnvOrDefault("DB_NAME", "health_assistant"),
			},
		},
		Alert: AlertConfig{
			TelegramToken: os.Getenv("ALERT_TELEGRAM_TOKEN"),
			DoctorChatID:  doctorChatID,
		},
		Extractor: ExtractorConfig{
			FFmpegPath:  getEnvOrDefault("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getEnvOrDefault("FFPROBE_PATH", "ffprobe"),
			Timeout:     extractorTimeout,
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AIProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider)
	}

	switch c.History.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.History.Backend)
	}
	return nil
}
