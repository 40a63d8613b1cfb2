// Package config holds the process configuration for the augmentation
// pipeline. Config is read once at process start from a YAML file with
// ${ENV_VAR} expansion; a missing web-search credential is deliberately not
// a startup error, it only surfaces when the web-search adapter is invoked.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAdapterTimeout bounds a single source fetch when no
	// per-adapter timeout is configured.
	DefaultAdapterTimeout = 5 * time.Second

	// DefaultFetchBudget bounds one whole fetch dispatch.
	DefaultFetchBudget = 8 * time.Second

	// DefaultMaxChars caps the total character length of a context bundle.
	DefaultMaxChars = 4000
)

// Config is the root configuration.
type Config struct {
	Database      DatabaseConfig      `yaml:"database,omitempty"`
	Vector        VectorConfig        `yaml:"vector,omitempty"`
	WebSearch     WebSearchConfig     `yaml:"websearch,omitempty"`
	Classifier    ClassifierConfig    `yaml:"classifier,omitempty"`
	Fetch         FetchConfig         `yaml:"fetch,omitempty"`
	Bundle        BundleConfig        `yaml:"bundle,omitempty"`
	Server        ServerConfig        `yaml:"server,omitempty"`
	Logger        LoggerConfig        `yaml:"logger,omitempty"`
	Observability ObservabilityConfig `yaml:"observability,omitempty"`
}

// NamedQuery is one parameterized aggregate statement the database adapter
// may execute. The statement must produce a single row with a single column.
type NamedQuery struct {
	// Statement is the parameterized SQL text.
	Statement string `yaml:"statement"`

	// Summary is a fmt template applied to the scanned value to produce
	// the payload text (e.g. "%v active records"). Defaults to "%v".
	Summary string `yaml:"summary,omitempty"`
}

// DatabaseConfig configures the relational store adapter.
// Supports PostgreSQL, MySQL, and SQLite via database/sql.
type DatabaseConfig struct {
	// Enabled controls whether the database adapter is constructed.
	Enabled bool `yaml:"enabled,omitempty"`

	// Driver is "postgres", "mysql", or "sqlite".
	Driver string `yaml:"driver,omitempty"`

	// DSN is the driver connection string.
	DSN string `yaml:"dsn,omitempty"`

	// MaxConns is the maximum number of open connections.
	MaxConns int `yaml:"max_conns,omitempty"`

	// MaxIdle is the maximum number of idle connections.
	MaxIdle int `yaml:"max_idle,omitempty"`

	// Timeout bounds one query (e.g. "5s").
	Timeout string `yaml:"timeout,omitempty"`

	// Queries are the named statements available to the adapter.
	Queries map[string]NamedQuery `yaml:"queries,omitempty"`

	// DefaultQuery names the statement used when a query carries no name.
	DefaultQuery string `yaml:"default_query,omitempty"`
}

func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "postgres"
	}
	if c.MaxConns == 0 {
		c.MaxConns = 25
	}
	if c.MaxIdle == 0 {
		c.MaxIdle = 5
	}
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
	if c.DefaultQuery == "" && len(c.Queries) == 1 {
		for name := range c.Queries {
			c.DefaultQuery = name
		}
	}
}

func (c *DatabaseConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Driver {
	case "postgres", "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: postgres, mysql, sqlite)", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("database dsn is required when the database adapter is enabled")
	}
	if len(c.Queries) == 0 {
		return fmt.Errorf("at least one named database query is required when the database adapter is enabled")
	}
	for name, q := range c.Queries {
		if q.Statement == "" {
			return fmt.Errorf("database query %q has an empty statement", name)
		}
	}
	if c.DefaultQuery != "" {
		if _, ok := c.Queries[c.DefaultQuery]; !ok {
			return fmt.Errorf("default_query %q is not a configured query", c.DefaultQuery)
		}
	}
	if _, err := parseTimeout(c.Timeout); err != nil {
		return fmt.Errorf("invalid database timeout: %w", err)
	}
	return nil
}

// DriverName maps the configured driver to the database/sql driver name.
func (c *DatabaseConfig) DriverName() string {
	if c.Driver == "sqlite" {
		return "sqlite3"
	}
	return c.Driver
}

// TimeoutDuration returns the parsed per-query timeout.
func (c *DatabaseConfig) TimeoutDuration() time.Duration {
	return timeoutOrDefault(c.Timeout, DefaultAdapterTimeout)
}

// VectorConfig configures the vector-search adapter.
type VectorConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`

	// Provider is "http" (remote vector-search service) or "chromem"
	// (embedded store).
	Provider string `yaml:"provider,omitempty"`

	// BaseURL of the remote vector-search service (http provider).
	BaseURL string `yaml:"base_url,omitempty"`

	// SearchPath is appended to BaseURL for search requests.
	SearchPath string `yaml:"search_path,omitempty"`

	// APIKey authenticates against the remote service, if required.
	APIKey string `yaml:"api_key,omitempty"`

	// Collection is the embedded store collection name (chromem provider).
	Collection string `yaml:"collection,omitempty"`

	// PersistPath enables file persistence for the embedded store.
	PersistPath string `yaml:"persist_path,omitempty"`

	// Compress enables gzip compression for embedded persistence.
	Compress bool `yaml:"compress,omitempty"`

	// TopK is the default number of ranked matches per query.
	TopK int `yaml:"top_k,omitempty"`

	// SearchType is the service query mode sent with each request.
	SearchType string `yaml:"search_type,omitempty"`

	// Timeout bounds one search (e.g. "5s").
	Timeout string `yaml:"timeout,omitempty"`
}

func (c *VectorConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "http"
	}
	if c.SearchPath == "" {
		c.SearchPath = "/search"
	}
	if c.Collection == "" {
		c.Collection = "documents"
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.SearchType == "" {
		c.SearchType = "semantic"
	}
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
}

func (c *VectorConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Provider {
	case "http":
		if c.BaseURL == "" {
			return fmt.Errorf("vector base_url is required for the http provider")
		}
	case "chromem":
	default:
		return fmt.Errorf("unsupported vector provider: %s (supported: http, chromem)", c.Provider)
	}
	if c.TopK < 0 {
		return fmt.Errorf("vector top_k cannot be negative")
	}
	if _, err := parseTimeout(c.Timeout); err != nil {
		return fmt.Errorf("invalid vector timeout: %w", err)
	}
	return nil
}

func (c *VectorConfig) TimeoutDuration() time.Duration {
	return timeoutOrDefault(c.Timeout, DefaultAdapterTimeout)
}

// WebSearchConfig configures the web-search adapter.
type WebSearchConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`

	// APIKey is the provider bearer credential. Its absence is only an
	// error at the moment the adapter is invoked, never at startup.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL of the web-search provider.
	BaseURL string `yaml:"base_url,omitempty"`

	// Model is the provider search model.
	Model string `yaml:"model,omitempty"`

	// Timeout bounds one search request (e.g. "6s").
	Timeout string `yaml:"timeout,omitempty"`

	// MaxRetries bounds transient-error retries inside the timeout.
	MaxRetries int `yaml:"max_retries,omitempty"`
}

func (c *WebSearchConfig) SetDefaults() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("WEBSEARCH_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.perplexity.ai"
	}
	if c.Model == "" {
		c.Model = "sonar"
	}
	if c.Timeout == "" {
		c.Timeout = "6s"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 1
	}
}

func (c *WebSearchConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.BaseURL == "" {
		return fmt.Errorf("websearch base_url is required when the websearch adapter is enabled")
	}
	if _, err := parseTimeout(c.Timeout); err != nil {
		return fmt.Errorf("invalid websearch timeout: %w", err)
	}
	return nil
}

func (c *WebSearchConfig) TimeoutDuration() time.Duration {
	return timeoutOrDefault(c.Timeout, DefaultAdapterTimeout)
}

// RuleConfig maps message keywords to one source kind.
type RuleConfig struct {
	// Kind is "database", "vector", or "websearch".
	Kind string `yaml:"kind"`

	// Keywords are matched as lower-cased substrings of the message.
	Keywords []string `yaml:"keywords"`

	// Query names the database statement bound by this rule (database only).
	Query string `yaml:"query,omitempty"`
}

// ClassifierConfig configures the topic classifier.
type ClassifierConfig struct {
	// Rules replace the built-in keyword rules when non-empty.
	Rules []RuleConfig `yaml:"rules,omitempty"`

	// DefaultKinds are queried when no rule matches. An explicit empty
	// list disables the fallback entirely.
	DefaultKinds []string `yaml:"default_kinds,omitempty"`

	// NoDefault disables the fallback set when no keyword matches.
	NoDefault bool `yaml:"no_default,omitempty"`
}

func (c *ClassifierConfig) Validate() error {
	for i, rule := range c.Rules {
		if !validKind(rule.Kind) {
			return fmt.Errorf("classifier rule %d has unknown kind: %s", i, rule.Kind)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("classifier rule %d has no keywords", i)
		}
	}
	for _, k := range c.DefaultKinds {
		if !validKind(k) {
			return fmt.Errorf("classifier default kind is unknown: %s", k)
		}
	}
	return nil
}

func validKind(k string) bool {
	switch k {
	case "database", "vector", "websearch":
		return true
	}
	return false
}

// FetchConfig configures the fetch orchestrator.
type FetchConfig struct {
	// Budget bounds one whole fetch dispatch (e.g. "8s"). The effective
	// bound is the maximum of per-adapter timeouts, capped by Budget.
	Budget string `yaml:"budget,omitempty"`
}

func (c *FetchConfig) SetDefaults() {
	if c.Budget == "" {
		c.Budget = "8s"
	}
}

func (c *FetchConfig) Validate() error {
	if _, err := parseTimeout(c.Budget); err != nil {
		return fmt.Errorf("invalid fetch budget: %w", err)
	}
	return nil
}

func (c *FetchConfig) BudgetDuration() time.Duration {
	return timeoutOrDefault(c.Budget, DefaultFetchBudget)
}

// BundleConfig configures the result aggregator.
type BundleConfig struct {
	// MaxChars caps the total character length of a bundle.
	MaxChars int `yaml:"max_chars,omitempty"`
}

func (c *BundleConfig) SetDefaults() {
	if c.MaxChars == 0 {
		c.MaxChars = DefaultMaxChars
	}
}

func (c *BundleConfig) Validate() error {
	if c.MaxChars < 0 {
		return fmt.Errorf("bundle max_chars cannot be negative")
	}
	return nil
}

// ServerConfig configures the HTTP serving surface.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
}

func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Port)
	}
	return nil
}

// Address returns the listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggerConfig configures logging behavior.
//
// Priority order (highest to lowest): CLI flags, environment variables
// (LOG_LEVEL, LOG_FILE, LOG_FORMAT), config file, defaults.
type LoggerConfig struct {
	// Level is debug, info, warn, or error. Default: info.
	Level string `yaml:"level,omitempty"`

	// File is the log file path; empty logs to stderr.
	File string `yaml:"file,omitempty"`

	// Format is "simple" (level + message) or "verbose" (adds time).
	Format string `yaml:"format,omitempty"`
}

func (c *LoggerConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}

func (c *LoggerConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	return nil
}

// TracingConfig configures the OpenTelemetry tracer.
type TracingConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`

	// ExporterType is "otlp" or "stdout".
	ExporterType string `yaml:"exporter_type,omitempty"`

	// EndpointURL is the OTLP collector endpoint.
	EndpointURL string `yaml:"endpoint_url,omitempty"`

	// SamplingRate in [0, 1].
	SamplingRate float64 `yaml:"sampling_rate,omitempty"`

	ServiceName string `yaml:"service_name,omitempty"`
}

func (c *TracingConfig) SetDefaults() {
	if c.ExporterType == "" {
		c.ExporterType = "otlp"
	}
	if c.SamplingRate == 0 {
		c.SamplingRate = 1.0
	}
	if c.ServiceName == "" {
		c.ServiceName = "groundwire"
	}
	if c.EndpointURL == "" {
		c.EndpointURL = "localhost:4317"
	}
}

func (c *TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.ExporterType {
	case "otlp", "stdout":
	default:
		return fmt.Errorf("unsupported tracing exporter: %s (supported: otlp, stdout)", c.ExporterType)
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("tracing sampling_rate must be within [0, 1]")
	}
	return nil
}

// MetricsConfig configures Prometheus-exported metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// ObservabilityConfig groups tracing and metrics settings.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Database.SetDefaults()
	c.Vector.SetDefaults()
	c.WebSearch.SetDefaults()
	c.Fetch.SetDefaults()
	c.Bundle.SetDefaults()
	c.Server.SetDefaults()
	c.Logger.SetDefaults()
	c.Observability.Tracing.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Vector.Validate(); err != nil {
		return err
	}
	if err := c.WebSearch.Validate(); err != nil {
		return err
	}
	if err := c.Classifier.Validate(); err != nil {
		return err
	}
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	if err := c.Bundle.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Tracing.Validate(); err != nil {
		return err
	}
	return nil
}

// Default returns a zero-config Config with every default applied and only
// the embedded vector provider enabled.
func Default() *Config {
	cfg := &Config{
		Vector: VectorConfig{
			Enabled:  true,
			Provider: "chromem",
		},
	}
	cfg.SetDefaults()
	return cfg
}

// Load reads the YAML file at path, expands ${ENV_VAR} references, applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from raw YAML bytes.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %s", s)
	}
	return d, nil
}

func timeoutOrDefault(s string, fallback time.Duration) time.Duration {
	d, err := parseTimeout(s)
	if err != nil || d == 0 {
		return fallback
	}
	return d
}
