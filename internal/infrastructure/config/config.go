package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Customer  CustomerConfig
	Event     EventConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// CustomerConfig holds the tier parameters used when creating customers
type CustomerConfig struct {
	WholesaleMinimumOrder decimal.Decimal
	VIPBasePercent        decimal.Decimal
	VIPBonusAccrualRate   decimal.Decimal
	DefaultManager        string
}

// EventConfig holds domain event handling settings
type EventConfig struct {
	AuditEnabled bool
	HistoryLimit int // events kept per customer
}

// TelemetryConfig holds OpenTelemetry and Pyroscope settings.
// Every signal is off unless enabled explicitly.
type TelemetryConfig struct {
	CollectorEndpoint string // OTLP gRPC endpoint, host:port
	Insecure          bool

	TracingEnabled bool
	SamplingRatio  float64

	MetricsEnabled  bool
	ExportInterval  time.Duration
	CollectInterval time.Duration // tier gauge sampling

	LogsEnabled bool

	ProfilingEnabled bool
	ProfilingServer  string
	ProfileTypes     []string
	SpanProfiles     bool
}

// Allowed VIP base discount range, in percent
var (
	minVIPBasePercent = decimal.NewFromInt(20)
	maxVIPBasePercent = decimal.NewFromInt(35)
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Load loads configuration from config.toml in the usual locations
// and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CRM_ prefix (e.g., CRM_CUSTOMER_DEFAULT_MANAGER)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path.
// An empty path searches the working directory for config.toml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("customer.wholesale_minimum_order", "10000")
	v.SetDefault("customer.vip_base_percent", "25")
	v.SetDefault("customer.vip_bonus_accrual_rate", "5")
	v.SetDefault("event.audit_enabled", true)
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.insecure", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Customer: CustomerConfig{
			DefaultManager: v.GetString("customer.default_manager"),
		},
		Event: EventConfig{
			AuditEnabled: v.GetBool("event.audit_enabled"),
			HistoryLimit: v.GetInt("event.history_limit"),
		},
		Telemetry: TelemetryConfig{
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			TracingEnabled:    v.GetBool("telemetry.tracing_enabled"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			CollectInterval:   v.GetDuration("telemetry.collect_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:   v.GetString("telemetry.profiling_server"),
			ProfileTypes:      v.GetStringSlice("telemetry.profile_types"),
			SpanProfiles:      v.GetBool("telemetry.span_profiles"),
		},
	}

	var err error
	if cfg.Customer.WholesaleMinimumOrder, err = decimalSetting(v, "customer.wholesale_minimum_order"); err != nil {
		return nil, err
	}
	if cfg.Customer.VIPBasePercent, err = decimalSetting(v, "customer.vip_base_percent"); err != nil {
		return nil, err
	}
	if cfg.Customer.VIPBonusAccrualRate, err = decimalSetting(v, "customer.vip_bonus_accrual_rate"); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decimalSetting parses a money or percent setting.
// Zero is a valid value; defaults come from viper.
func decimalSetting(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number, got %q", key, raw)
	}
	return d, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "crm"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Customer.DefaultManager == "" {
		cfg.Customer.DefaultManager = "Not assigned"
	}
	if cfg.Event.HistoryLimit == 0 {
		cfg.Event.HistoryLimit = 50
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
	if cfg.Telemetry.CollectInterval == 0 {
		cfg.Telemetry.CollectInterval = time.Minute
	}
	if cfg.Telemetry.ProfilingServer == "" {
		cfg.Telemetry.ProfilingServer = "http://localhost:4040"
	}
}

// AnyTelemetryEnabled reports whether some signal needs the OTLP collector or Pyroscope
func (t TelemetryConfig) AnyTelemetryEnabled() bool {
	return t.TracingEnabled || t.MetricsEnabled || t.LogsEnabled || t.ProfilingEnabled
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Customer.WholesaleMinimumOrder.IsNegative() {
		return fmt.Errorf("customer.wholesale_minimum_order cannot be negative")
	}
	if c.Customer.VIPBasePercent.LessThan(minVIPBasePercent) || c.Customer.VIPBasePercent.GreaterThan(maxVIPBasePercent) {
		return fmt.Errorf("customer.vip_base_percent must be between %s and %s, got %s",
			minVIPBasePercent, maxVIPBasePercent, c.Customer.VIPBasePercent)
	}
	if c.Customer.VIPBonusAccrualRate.IsNegative() || c.Customer.VIPBonusAccrualRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("customer.vip_bonus_accrual_rate must be between 0 and 100, got %s", c.Customer.VIPBonusAccrualRate)
	}
	if c.Event.HistoryLimit < 0 {
		return fmt.Errorf("event.history_limit cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ExportInterval < 0 || c.Telemetry.CollectInterval < 0 {
		return fmt.Errorf("telemetry intervals cannot be negative")
	}
	return nil
}
