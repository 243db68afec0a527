// Package app wires configuration, storage, clients, and services into one
// application core shared by the server binary and tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/scry/internal/analyzer"
	"github.com/bobmcallan/scry/internal/clients/finviz"
	"github.com/bobmcallan/scry/internal/clients/openinsider"
	"github.com/bobmcallan/scry/internal/clients/stockanalysis"
	"github.com/bobmcallan/scry/internal/clients/yahoo"
	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/export"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/scan"
	"github.com/bobmcallan/scry/internal/scoring"
	"github.com/bobmcallan/scry/internal/storage/tradestore"
)

// App holds all initialized services and clients
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       interfaces.TradeStore
	Cache       interfaces.PayloadCache
	Feed        interfaces.InsiderFeedClient
	History     interfaces.HistoryClient
	Analyzer    interfaces.AnalyzerService
	Scan        interfaces.ScanService
	Export      interfaces.ExportService
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be
// empty, in which case SCRY_CONFIG and the binary directory are tried.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("SCRY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "scry.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/scry.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := tradestore.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trade store: %w", err)
	}
	cache := tradestore.NewCache(store, config.Storage.GetCacheTTL())

	feedClient := openinsider.NewClient(
		openinsider.WithBaseURL(config.Clients.OpenInsider.BaseURL),
		openinsider.WithRateLimit(config.Clients.OpenInsider.RateLimit),
		openinsider.WithTimeout(config.Clients.OpenInsider.GetTimeout()),
		openinsider.WithLogger(logger),
	)
	yahooClient := yahoo.NewClient(yahoo.WithLogger(logger))
	finvizClient := finviz.NewClient(finviz.WithLogger(logger))
	stockanalysisClient := stockanalysis.NewClient(stockanalysis.WithLogger(logger))

	analyzerService := analyzer.NewService(logger,
		analyzer.WithProviders(yahooClient, finvizClient, stockanalysisClient),
		analyzer.WithHistory(yahooClient),
		analyzer.WithCache(cache),
		analyzer.WithWeights(scoring.Weights{
			Fundamental: config.Scoring.FundamentalWeight,
			Technical:   config.Scoring.TechnicalWeight,
			Insider:     config.Scoring.InsiderWeight,
			Sentiment:   config.Scoring.SentimentWeight,
		}),
	)

	scanService := scan.NewService(feedClient, analyzerService, store, config.Scan, logger,
		scan.WithRetention(config.Storage.GetRetention()))
	exportService := export.NewService(logger)

	app := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Cache:       cache,
		Feed:        feedClient,
		History:     yahooClient,
		Analyzer:    analyzerService,
		Scan:        scanService,
		Export:      exportService,
		StartupTime: time.Now(),
	}

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Str("storage", config.Storage.Path).
		Msg("Scry initialized")

	return app, nil
}

// Close stops background work and releases storage
func (a *App) Close() error {
	if a.Scan != nil {
		a.Scan.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
