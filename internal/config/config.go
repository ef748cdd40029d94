// Package config loads pipeline configuration from a YAML base file with
// environment-variable overrides layered on top, following the same
// reflection-driven env overlay the rest of the pipeline's ancestry used.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config aggregates every service's configuration so a single file can seed
// any of the cmd/ binaries; each binary only reads the sections it needs.
type Config struct {
	Bus        BusConfig        `yaml:"bus"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Matching   MatchingConfig   `yaml:"matching"`
	Risk       RiskConfig       `yaml:"risk"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Compliance ComplianceConfig `yaml:"compliance"`
	MarketData MarketDataConfig `yaml:"marketdata"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// BusConfig configures the event bus transport.
type BusConfig struct {
	Backend     string `yaml:"backend" env:"BUS_BACKEND" default:"memory"` // "memory" or "nats"
	NATSURL     string `yaml:"nats_url" env:"BUS_NATS_URL" default:"nats://localhost:4222"`
	TopicPrefix string `yaml:"topic_prefix" env:"BUS_TOPIC_PREFIX" default:""`
}

// GatewayConfig configures the order gateway's HTTP ingress.
type GatewayConfig struct {
	ListenAddr      string        `yaml:"listen_addr" env:"GATEWAY_LISTEN_ADDR" default:":8080"`
	JWTSigningKey   string        `yaml:"jwt_signing_key" env:"GATEWAY_JWT_SIGNING_KEY" default:"dev-signing-key"`
	RateLimitPeriod time.Duration `yaml:"rate_limit_period" env:"GATEWAY_RATE_LIMIT_PERIOD" default:"1m"`
	RateLimitCount  int64         `yaml:"rate_limit_count" env:"GATEWAY_RATE_LIMIT_COUNT" default:"1000"`
	BreakerThreshold uint32       `yaml:"breaker_threshold" env:"GATEWAY_BREAKER_THRESHOLD" default:"5000"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"GATEWAY_BREAKER_COOLDOWN" default:"30s"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// MatchingConfig configures the matching engine.
type MatchingConfig struct {
	Symbols []string `yaml:"symbols"`
}

// RiskConfig configures the risk gate, including per-symbol position limits.
type RiskConfig struct {
	BreakerThreshold uint32          `yaml:"breaker_threshold" env:"RISK_BREAKER_THRESHOLD" default:"100"`
	BreakerCooldown  time.Duration   `yaml:"breaker_cooldown" env:"RISK_BREAKER_COOLDOWN" default:"30s"`
	PositionLimits   []PositionLimitConfig `yaml:"position_limits"`
}

// PositionLimitConfig is the YAML-friendly shape of types.PositionLimit
// (string decimals instead of decimal.Decimal, which has no YAML tag
// support out of the box).
type PositionLimitConfig struct {
	Symbol      string `yaml:"symbol"`
	MaxLong     string `yaml:"max_long"`
	MaxShort    string `yaml:"max_short"`
	MaxExposure string `yaml:"max_exposure"`
	MaxDailyPnL string `yaml:"max_daily_pnl"`
	MaxDrawdown string `yaml:"max_drawdown"`
}

// DefaultPositionLimits mirrors the illustrative defaults the original
// risk-manager service shipped with.
func DefaultPositionLimits() []PositionLimitConfig {
	return []PositionLimitConfig{
		{Symbol: "BTC/USD", MaxLong: "100", MaxShort: "100", MaxExposure: "1000000", MaxDailyPnL: "50000", MaxDrawdown: "20000"},
		{Symbol: "ETH/USD", MaxLong: "500", MaxShort: "500", MaxExposure: "500000", MaxDailyPnL: "25000", MaxDrawdown: "10000"},
	}
}

// ExecutionConfig configures venue routing and retry behavior.
type ExecutionConfig struct {
	MaxRetries      int           `yaml:"max_retries" env:"EXECUTION_MAX_RETRIES" default:"3"`
	RetryDelay      time.Duration `yaml:"retry_delay" env:"EXECUTION_RETRY_DELAY" default:"100ms"`
	ExecutionTimeout time.Duration `yaml:"execution_timeout" env:"EXECUTION_TIMEOUT" default:"5s"`
	WorkerPoolSize  int           `yaml:"worker_pool_size" env:"EXECUTION_WORKER_POOL_SIZE" default:"64"`
	VenuesPerSecond float64       `yaml:"venue_rate_per_second" env:"EXECUTION_VENUE_RPS" default:"50"`
	BreakerThreshold uint32       `yaml:"breaker_threshold" env:"EXECUTION_BREAKER_THRESHOLD" default:"10"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"EXECUTION_BREAKER_COOLDOWN" default:"30s"`
	Venues []ExecutionVenue `yaml:"venues"`
	Routes []ExecutionRoute `yaml:"routes"`
}

// ExecutionVenue is one connector to instantiate at startup.
type ExecutionVenue struct {
	VenueID string `yaml:"venue_id"`
}

// ExecutionRoute maps a symbol to the venue that executes it, mirroring the
// original execution engine's static find_exchange_for_symbol table.
type ExecutionRoute struct {
	Symbol  string `yaml:"symbol"`
	VenueID string `yaml:"venue_id"`
}

// DefaultExecutionVenues and DefaultExecutionRoutes mirror the original
// execution engine's illustrative Binance/Coinbase subscriptions.
func DefaultExecutionVenues() []ExecutionVenue {
	return []ExecutionVenue{{VenueID: "binance"}, {VenueID: "coinbase"}}
}

func DefaultExecutionRoutes() []ExecutionRoute {
	return []ExecutionRoute{
		{Symbol: "BTC/USD", VenueID: "binance"},
		{Symbol: "ETH/USD", VenueID: "coinbase"},
	}
}

// ComplianceConfig configures the AML/compliance evaluator.
type ComplianceConfig struct {
	ListenAddr          string        `yaml:"listen_addr" env:"COMPLIANCE_LISTEN_ADDR" default:":8082"`
	DatabaseDSN         string        `yaml:"database_dsn" env:"COMPLIANCE_DATABASE_DSN" default:"host=localhost user=postgres dbname=tradepipe sslmode=disable"`
	KYCCacheTTL         time.Duration `yaml:"kyc_cache_ttl" env:"COMPLIANCE_KYC_CACHE_TTL" default:"5m"`
	HistoryWindowCap    int           `yaml:"history_window_cap" env:"COMPLIANCE_HISTORY_WINDOW_CAP" default:"1000"`
	SanctionedAddresses []string      `yaml:"sanctioned_addresses"`
	AMLRules            []AMLRuleConfig     `yaml:"aml_rules"`
	RiskThresholds      RiskThresholdsConfig `yaml:"risk_thresholds"`
}

// AMLRuleConfig is the YAML-friendly shape of an AML rule: RuleType
// selects the built-in evaluator ("amount" or "velocity"); Parameters
// carries its thresholds directly as floats (unlike position limits,
// these never need exact decimal arithmetic).
type AMLRuleConfig struct {
	RuleID      string             `yaml:"rule_id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	RuleType    string             `yaml:"rule_type"`
	Parameters  map[string]float64 `yaml:"parameters"`
	Enabled     bool               `yaml:"enabled"`
}

// RiskThresholdsConfig is the YAML-friendly shape of types.RiskThresholds.
type RiskThresholdsConfig struct {
	TransactionAmountHigh     string  `yaml:"transaction_amount_high"`
	TransactionAmountCritical string  `yaml:"transaction_amount_critical"`
	DailyVolumeLimit          string  `yaml:"daily_volume_limit"`
	RiskScoreThreshold        float64 `yaml:"risk_score_threshold"`
	VelocityThreshold         int     `yaml:"velocity_threshold"`
}

// MarketDataConfig configures venue feed ingestion and normalization.
type MarketDataConfig struct {
	Venues                []VenueSubscription `yaml:"venues"`
	CompressSnapshotBytes int                 `yaml:"compress_snapshot_bytes" env:"MARKETDATA_COMPRESS_BYTES" default:"4096"`
}

// VenueSubscription is one venue/symbol feed to subscribe to.
type VenueSubscription struct {
	VenueID     string   `yaml:"venue_id"`
	WebSocketURL string  `yaml:"websocket_url"`
	Symbols     []string `yaml:"symbols"`
}

// MetricsConfig configures the Prometheus exporter and heartbeat cadence.
type MetricsConfig struct {
	ListenAddr        string        `yaml:"listen_addr" env:"METRICS_LISTEN_ADDR" default:":9090"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" env:"METRICS_HEARTBEAT_INTERVAL" default:"10s"`
}

// Load reads a YAML file at path (if it exists) and layers environment
// variable overrides on top of every field tagged with "env".
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg.Bus); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg.Gateway); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg.Risk); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg.Execution); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg.Compliance); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg.MarketData); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg.Metrics); err != nil {
		return nil, err
	}

	if len(cfg.Risk.PositionLimits) == 0 {
		cfg.Risk.PositionLimits = DefaultPositionLimits()
	}
	if len(cfg.Execution.Venues) == 0 {
		cfg.Execution.Venues = DefaultExecutionVenues()
	}
	if len(cfg.Execution.Routes) == 0 {
		cfg.Execution.Routes = DefaultExecutionRoutes()
	}
	if len(cfg.Compliance.AMLRules) == 0 {
		cfg.Compliance.AMLRules = DefaultAMLRuleConfigs()
	}
	if cfg.Compliance.RiskThresholds == (RiskThresholdsConfig{}) {
		cfg.Compliance.RiskThresholds = DefaultRiskThresholdsConfig()
	}

	return cfg, nil
}

// DefaultAMLRuleConfigs mirrors types.DefaultAMLRules in the YAML-friendly
// config shape.
func DefaultAMLRuleConfigs() []AMLRuleConfig {
	return []AMLRuleConfig{
		{
			RuleID:      "LARGE_TRANSACTION",
			Name:        "Large Transaction",
			Description: "Flags any single transaction above the configured amount threshold",
			RuleType:    "amount",
			Parameters:  map[string]float64{"threshold": 10000},
			Enabled:     true,
		},
		{
			RuleID:      "VELOCITY_CHECK",
			Name:        "Velocity Check",
			Description: "Flags users exceeding the configured transaction count per hour",
			RuleType:    "velocity",
			Parameters:  map[string]float64{"max_per_hour": 10},
			Enabled:     true,
		},
	}
}

// DefaultRiskThresholdsConfig mirrors types.DefaultRiskThresholds in the
// YAML-friendly config shape.
func DefaultRiskThresholdsConfig() RiskThresholdsConfig {
	return RiskThresholdsConfig{
		TransactionAmountHigh:     "10000",
		TransactionAmountCritical: "50000",
		DailyVolumeLimit:          "100000",
		RiskScoreThreshold:        75,
		VelocityThreshold:         10,
	}
}

// applyEnvOverrides walks a config section and overwrites any field with a
// non-empty "env" tag from the environment, prefixed with PIPE_. Fields
// without a set environment variable and without a value already loaded
// from YAML fall back to their "default" tag.
func applyEnvOverrides(section interface{}) error {
	v := reflect.ValueOf(section)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config section must be a pointer to a struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		envName := fieldType.Tag.Get("env")
		if envName == "" {
			continue
		}
		envName = "PIPE_" + envName

		envValue, isSet := os.LookupEnv(envName)
		if !isSet {
			if !isZero(field) {
				continue
			}
			envValue = fieldType.Tag.Get("default")
			if envValue == "" {
				continue
			}
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("config field %s (%s): %w", fieldType.Name, envName, err)
		}
	}
	return nil
}

func isZero(v reflect.Value) bool {
	return v.IsZero()
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		} else {
			return fmt.Errorf("unsupported slice element kind %s", field.Type().Elem().Kind())
		}
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
