package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mvigneshwaran/health-assistant/internal/config"
)

func main() {
	fmt.Println("Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Note: .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid.")
	fmt.Printf("  - Port: %s\n", cfg.ServerPort)
	fmt.Printf("  - AI Provider: %s\n", cfg.AIProvider)
	fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.GeminiAPIKey))
	fmt.Printf("  - OpenAI API Key: %s\n", maskToken(cfg.OpenAIAPIKey))
	fmt.Printf("  - Default Language: %s\n", cfg.DefaultLanguage)
	fmt.Printf("  - History Backend: %s\n", cfg.History.Backend)
	if cfg.History.Backend == config.BackendFile {
		fmt.Printf("  - History File: %s\n", cfg.History.FilePath)
	}
	fmt.Printf("  - Alert Token: %s\n", maskToken(cfg.Alert.TelegramToken))
	fmt.Printf("  - Frame Extract Timeout: %s\n", cfg.Extractor.Timeout)
	fmt.Printf("  - Log Level: %v, Output: %s, Format: %s\n",
		cfg.Logger.Level, cfg.Logger.OutputPath, cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
