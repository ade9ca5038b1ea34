package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	// LLM settings
	LLMProvider  string // "gemini" (default) or "openai"
	GeminiKey    string
	OpenAIKey    string
	GeminiModels []string // fallback chain, tried in order

	// Voice platform webhook secret (optional, check skipped when empty)
	VoiceWebhookSecret string
}

// DefaultGeminiModels is the fallback chain tried in priority order.
// gemini-2.0-flash-exp goes first: it is the one with a workable free-tier quota.
var DefaultGeminiModels = []string{
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-1.5-flash-8b",
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Port:               os.Getenv("PORT"),
		Env:                os.Getenv("ENV"),
		LLMProvider:        os.Getenv("LLM_PROVIDER"),
		GeminiKey:          os.Getenv("GEMINI_API_KEY"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		VoiceWebhookSecret: os.Getenv("VOICE_WEBHOOK_SECRET"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "gemini"
	}

	if models := os.Getenv("GEMINI_MODELS"); models != "" {
		for _, m := range strings.Split(models, ",") {
			if m = strings.TrimSpace(m); m != "" {
				cfg.GeminiModels = append(cfg.GeminiModels, m)
			}
		}
	}
	if len(cfg.GeminiModels) == 0 {
		cfg.GeminiModels = DefaultGeminiModels
	}

	return cfg
}
