package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"crypto-dashboard/internal/alerting"
	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/catalog"
	"crypto-dashboard/internal/config"
	"crypto-dashboard/internal/fetcher"
	"crypto-dashboard/internal/loader"
	"crypto-dashboard/internal/report"
	"crypto-dashboard/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer

	catalog *catalog.Catalog
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	cat, err := cfg.BuildCatalog()
	if err != nil {
		return nil, err
	}
	return &App{
		Config:  cfg,
		Logger:  logger.With().Str("component", "app").Logger(),
		Out:     os.Stdout,
		catalog: cat,
	}, nil
}

// Catalog returns the configured asset catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

func (a *App) newRegistry() *fetcher.Registry {
	reg := fetcher.NewRegistry()

	m := a.Config.Providers.Messari
	reg.Register("messari", fetcher.NewMessari(fetcher.MessariOptions{
		BaseURL:   m.BaseURL,
		APIKey:    m.APIKey,
		Interval:  m.Interval,
		Timeout:   m.RequestTimeout,
		UserAgent: m.UserAgent,
		RateLimit: m.RateLimit,
	}, a.Logger))

	if al := a.Config.Providers.Alpaca; al.Enabled() {
		reg.Register("alpaca", fetcher.NewAlpaca(fetcher.AlpacaOptions{
			BaseURL:   al.BaseURL,
			KeyID:     al.KeyID,
			SecretKey: al.SecretKey,
			Feed:      al.Feed,
			Timeout:   al.RequestTimeout,
			UserAgent: al.UserAgent,
			RateLimit: al.RateLimit,
		}, a.Logger))
	} else {
		a.Logger.Debug().Msg("alpaca credentials not configured; benchmark correlations disabled")
	}

	return reg
}

// newDashboard wires providers, loader and analytics. Each call gets its own
// memoization cache.
func (a *App) newDashboard() *service.Dashboard {
	reg := a.newRegistry()

	var cache *loader.Cache
	if a.Config.Loader.Cache {
		cache = loader.NewCache()
	}
	ld := loader.New(reg, a.catalog, cache, loader.Options{Concurrency: a.Config.Loader.Concurrency})

	an := a.Config.Analysis
	return service.New(ld, a.catalog, service.Options{
		MinMonths:           an.MinMonths,
		MaxMonths:           an.MaxMonths,
		CorrelationMonths:   an.CorrelationMonths,
		AnnualizationPolicy: analytics.AnnualizationPolicy(an.AnnualizationPolicy),
		RiskFreeRate:        an.RiskFreeRate,
		Channel:             an.ChannelOptions(),
		Benchmarks:          reg.Has("alpaca") && len(a.catalog.Benchmarks()) > 0,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return nil
}

func (a *App) reportOptions() report.Options {
	opts := report.DefaultOptions()
	if a.Config.Export.Width > 0 {
		opts.Width = a.Config.Export.Width
	}
	if a.Config.Export.Height > 0 {
		opts.Height = a.Config.Export.Height
	}
	if a.Config.Export.MaxPoints > 0 {
		opts.MaxPoints = a.Config.Export.MaxPoints
	}
	return opts
}

func (a *App) resolveMonths(override int) int {
	if override > 0 {
		return override
	}
	return a.Config.Analysis.DefaultMonths
}

// AnalyzeOptions configure the analyze command.
type AnalyzeOptions struct {
	Asset  string
	Months int
	JSON   bool
}

// ExportOptions configure the export command.
type ExportOptions struct {
	Assets  []string
	All     bool
	Months  int
	Dir     string
	CSV     bool
	PNG     bool
	Workers int
}

// WatchOptions configure the watch command.
type WatchOptions struct {
	Assets []string
	Months int
	Once   bool
}

// DigestOptions configure a one-off digest.
type DigestOptions struct {
	Assets []string
	Months int
}
