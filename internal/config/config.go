package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"crypto-dashboard/internal/analytics"
	"crypto-dashboard/internal/catalog"
	"crypto-dashboard/internal/logging"
	"crypto-dashboard/internal/version"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Loader    LoaderConfig    `mapstructure:"loader"`
	Server    ServerConfig    `mapstructure:"server"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ProvidersConfig groups the market-data upstreams.
type ProvidersConfig struct {
	Messari MessariConfig `mapstructure:"messari"`
	Alpaca  AlpacaConfig  `mapstructure:"alpaca"`
}

// MessariConfig covers the crypto timeseries API.
type MessariConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Interval       string        `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// AlpacaConfig covers the equity bars API used for benchmarks. Benchmarks are
// disabled unless both keys are set.
type AlpacaConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	KeyID          string        `mapstructure:"key_id"`
	SecretKey      string        `mapstructure:"secret_key"`
	Feed           string        `mapstructure:"feed"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// Enabled reports whether credentials are present.
func (c AlpacaConfig) Enabled() bool {
	return c.KeyID != "" && c.SecretKey != ""
}

// CatalogConfig overrides the built-in asset list.
type CatalogConfig struct {
	Assets     []catalog.Asset `mapstructure:"assets"`
	Benchmarks []catalog.Asset `mapstructure:"benchmarks"`
}

// AnalysisConfig tunes the quantitative core.
type AnalysisConfig struct {
	DefaultMonths       int     `mapstructure:"default_months" validate:"gte=1"`
	MinMonths           int     `mapstructure:"min_months" validate:"gte=1"`
	MaxMonths           int     `mapstructure:"max_months" validate:"gtefield=MinMonths"`
	CorrelationMonths   int     `mapstructure:"correlation_months" validate:"gte=1"`
	AnnualizationPolicy string  `mapstructure:"annualization_policy" validate:"oneof=year eighteen-month"`
	RiskFreeRate        float64 `mapstructure:"risk_free_rate" validate:"gte=0,lt=1"`
	SlowSMA             int     `mapstructure:"slow_sma" validate:"gte=1"`
	FastSMA             int     `mapstructure:"fast_sma" validate:"gte=1"`
	SMASource           string  `mapstructure:"sma_source" validate:"oneof=price cumulative"`
}

// ChannelOptions converts the SMA settings for the channel builder.
func (c AnalysisConfig) ChannelOptions() analytics.ChannelOptions {
	return analytics.ChannelOptions{
		SlowWindow: c.SlowSMA,
		FastWindow: c.FastSMA,
		SMASource:  analytics.SMASource(c.SMASource),
	}
}

// LoaderConfig bounds upstream fan-out.
type LoaderConfig struct {
	Concurrency int  `mapstructure:"concurrency" validate:"gte=1"`
	Cache       bool `mapstructure:"cache"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// WatchConfig governs the periodic refresh loop.
type WatchConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
	Assets        []string      `mapstructure:"assets"`
	Months        int           `mapstructure:"months"`
	Export        bool          `mapstructure:"export"`
}

// AlertingConfig defines digest routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram bot parameters.
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig sets export behaviour.
type ExportConfig struct {
	Dir       string `mapstructure:"dir"`
	Width     int    `mapstructure:"width" validate:"gte=200"`
	Height    int    `mapstructure:"height" validate:"gte=200"`
	MaxPoints int    `mapstructure:"max_points" validate:"gte=2"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("CRYPTODASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cryptodash")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("providers.messari.base_url", "https://data.messari.io/api")
	v.SetDefault("providers.messari.api_key", "")
	v.SetDefault("providers.messari.interval", "1d")
	v.SetDefault("providers.messari.request_timeout", "30s")
	v.SetDefault("providers.messari.rate_limit", 0.5)
	v.SetDefault("providers.messari.user_agent", version.UserAgent())

	v.SetDefault("providers.alpaca.base_url", "https://data.alpaca.markets")
	v.SetDefault("providers.alpaca.key_id", "")
	v.SetDefault("providers.alpaca.secret_key", "")
	v.SetDefault("providers.alpaca.feed", "iex")
	v.SetDefault("providers.alpaca.request_timeout", "30s")
	v.SetDefault("providers.alpaca.rate_limit", 3.0)
	v.SetDefault("providers.alpaca.user_agent", version.UserAgent())

	v.SetDefault("analysis.default_months", 12)
	v.SetDefault("analysis.min_months", 1)
	v.SetDefault("analysis.max_months", 60)
	v.SetDefault("analysis.correlation_months", 12)
	v.SetDefault("analysis.annualization_policy", string(analytics.AnnualizeYear))
	v.SetDefault("analysis.risk_free_rate", analytics.DefaultRiskFreeRate)
	v.SetDefault("analysis.slow_sma", analytics.DefaultSlowSMA)
	v.SetDefault("analysis.fast_sma", analytics.DefaultFastSMA)
	v.SetDefault("analysis.sma_source", string(analytics.SMAOverPrice))

	v.SetDefault("loader.concurrency", 4)
	v.SetDefault("loader.cache", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("watch.interval", "1h")
	v.SetDefault("watch.align_to_bucket", true)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.assets", []string{"Bitcoin", "Ethereum"})
	v.SetDefault("watch.months", 12)
	v.SetDefault("watch.export", true)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.bot_token", "")
	v.SetDefault("alerting.telegram.chat_id", "")
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")

	v.SetDefault("export.dir", "out")
	v.SetDefault("export.width", 1280)
	v.SetDefault("export.height", 720)
	v.SetDefault("export.max_points", 5000)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

var validate = validator.New()

// Validate performs sanity checks on the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c.Analysis); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if c.Analysis.DefaultMonths < c.Analysis.MinMonths || c.Analysis.DefaultMonths > c.Analysis.MaxMonths {
		return fmt.Errorf("analysis.default_months must lie between min_months and max_months")
	}
	if err := validate.Struct(c.Loader); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if err := validate.Struct(c.Export); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Watch.Months < c.Analysis.MinMonths || c.Watch.Months > c.Analysis.MaxMonths {
		return fmt.Errorf("watch.months must lie between analysis.min_months and analysis.max_months")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be set")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be set")
		}
	}
	if _, err := c.BuildCatalog(); err != nil {
		return err
	}
	return nil
}

// BuildCatalog returns the configured asset catalog, falling back to the
// built-in lists when a section is empty.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	assets := c.Catalog.Assets
	if len(assets) == 0 {
		assets = catalog.Default()
	}
	benchmarks := c.Catalog.Benchmarks
	if len(benchmarks) == 0 {
		benchmarks = catalog.DefaultBenchmarks()
	}
	return catalog.New(assets, benchmarks)
}
