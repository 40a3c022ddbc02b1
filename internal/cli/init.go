// Package cli holds the contasctl command tree and the shared
// initialization helpers used by the service binaries.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"contas/internal/config"
	applog "contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/storage/memory"
)

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored; the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration, exiting the process on
// validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the configured store backend. The returned cleanup
// closes the underlying database when there is one.
func OpenStore(logger *applog.Logger, cfg *config.Config) (services.Store, func()) {
	switch cfg.DataBackend {
	case "memory":
		logger.Info("Using in-memory store")
		return memory.New(), func() {}
	default:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("SQLite store ready", "path", cfg.SQLiteDBPath)
		return repo, func() { repo.Close() }
	}
}
