package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/inspektor-gadget/website/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads KEY=VALUE pairs from .env and .env.local when present.
// Variables already set in the process environment are never overridden.
func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Failed to load environment file", logfields.File(f), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(f))
	}
}
