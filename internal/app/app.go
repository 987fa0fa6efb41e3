// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/finaflow-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finaflow/finaflow/internal/clients/gemini"
	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/services/dashboard"
	"github.com/finaflow/finaflow/internal/services/profile"
	"github.com/finaflow/finaflow/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	GeneratorClient  interfaces.GeneratorClient
	DashboardService interfaces.DashboardService
	ProfileService   interfaces.ProfileService
	StartupTime      time.Time

	geminiClient *gemini.Client
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, the generator client, and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: provided path, FINAFLOW_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("FINAFLOW_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "finaflow.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finaflow.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to binary directory
	if config.Storage.Profile.Path != "" && !filepath.IsAbs(config.Storage.Profile.Path) {
		config.Storage.Profile.Path = filepath.Join(binDir, config.Storage.Profile.Path)
	}
	if config.Storage.Ledger.Path != "" && !filepath.IsAbs(config.Storage.Ledger.Path) {
		config.Storage.Ledger.Path = filepath.Join(binDir, config.Storage.Ledger.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	geminiKey, err := common.ResolveAPIKey(ctx, storageManager.ProfileStore(), "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - dashboards will use the deterministic fallback")
	}

	var geminiClient *gemini.Client
	if geminiKey != "" {
		geminiClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			geminiClient = nil
		}
	}

	dashboardOpts := []dashboard.Option{
		dashboard.WithLogger(logger),
		dashboard.WithTemperature(float32(config.Clients.Gemini.Temperature)),
	}
	if geminiClient != nil {
		dashboardOpts = append(dashboardOpts, dashboard.WithGenerator(geminiClient))
	}
	dashboardService := dashboard.NewService(storageManager.LedgerStore(), dashboardOpts...)

	profileService := profile.NewService(storageManager.ProfileStore(), storageManager.LedgerStore(),
		profile.WithLogger(logger))

	app := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		DashboardService: dashboardService,
		ProfileService:   profileService,
		StartupTime:      time.Now(),
		geminiClient:     geminiClient,
	}
	if geminiClient != nil {
		app.GeneratorClient = geminiClient
	}

	logger.Info().
		Str("environment", config.Environment).
		Bool("generator_enabled", geminiClient != nil).
		Msg("Application initialized")

	return app, nil
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error
	if a.geminiClient != nil {
		if err := a.geminiClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
