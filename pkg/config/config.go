// Package config reads the service configuration from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/barekit/concierge/pkg/notify"
	"github.com/joho/godotenv"
)

// StoreConfig selects and parameterizes the conversation store backend.
type StoreConfig struct {
	// Type is one of: sqlite, postgres, mysql, mssql, redis, mongo, neo4j, inmemory.
	Type     string
	DSN      string
	Username string
	Password string
	DBName   string
}

// Config holds the full service configuration.
type Config struct {
	ListenAddr  string
	Locale      string
	Debug       bool
	Store       StoreConfig
	OpenAIKey   string
	OpenAIModel string
	SMTP        notify.SMTPConfig
}

// Load reads the configuration from a .env file (if present) and the
// environment. Missing values fall back to dev-friendly defaults; an absent
// SMTP block simply disables escalation email.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		Locale:      getenv("CHAT_LOCALE", "en"),
		Debug:       getenv("DEBUG", "") != "",
		Store: StoreConfig{
			Type:     getenv("STORE_TYPE", "sqlite"),
			DSN:      getenv("STORE_DSN", "concierge.db"),
			Username: os.Getenv("STORE_USERNAME"),
			Password: os.Getenv("STORE_PASSWORD"),
			DBName:   os.Getenv("STORE_DBNAME"),
		},
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: getenv("OPENAI_MODEL", "gpt-4.1-mini"),
		SMTP: notify.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenvInt("SMTP_PORT", 0),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			To:       os.Getenv("SMTP_TO"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
