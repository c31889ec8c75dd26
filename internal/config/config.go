package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Environment string `json:"environment" yaml:"environment"`
	APIPrefix   string `json:"api_prefix" yaml:"api_prefix"`
	LogLevel    string `json:"log_level" yaml:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header" yaml:"api_key_header"`
	APIKeys      []string `json:"api_keys" yaml:"api_keys"`
	EnableAuth   bool     `json:"enable_auth" yaml:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	// Database
	DatabaseURL     string        `json:"database_url" yaml:"database_url"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `json:"query_timeout" yaml:"query_timeout"`

	// Query safety
	ReadOnlyQueries bool `json:"read_only_queries" yaml:"read_only_queries"`
	SQLAllowlist    bool `json:"sql_allowlist" yaml:"sql_allowlist"`
	MaxActionLength int  `json:"max_action_length" yaml:"max_action_length"`

	// Audit / metrics
	EnableAuditLogging bool `json:"enable_audit_logging" yaml:"enable_audit_logging"`
	EnableMetrics      bool `json:"enable_metrics" yaml:"enable_metrics"`

	// AI / LLM
	LLMProvider      string            `json:"llm_provider" yaml:"llm_provider"` // anthropic | gemini | openai
	AnthropicAPIKey  string            `json:"anthropic_api_key" yaml:"anthropic_api_key"`
	AnthropicBaseURL string            `json:"anthropic_base_url" yaml:"anthropic_base_url"`
	GeminiAPIKey     string            `json:"gemini_api_key" yaml:"gemini_api_key"`
	OpenAIAPIKey     string            `json:"openai_api_key" yaml:"openai_api_key"`
	OpenAIBaseURL    string            `json:"openai_base_url" yaml:"openai_base_url"`
	LLMTimeout       time.Duration     `json:"llm_timeout" yaml:"llm_timeout"`
	LLMMaxTokens     int               `json:"llm_max_tokens" yaml:"llm_max_tokens"`
	ModelList        map[string]string `json:"model_list" yaml:"model_list"` // provider -> model ID

	// Weather
	WeatherAPIKey   string        `json:"weather_api_key" yaml:"weather_api_key"`
	WeatherAPIURL   string        `json:"weather_api_url" yaml:"weather_api_url"`
	WeatherTimeout  time.Duration `json:"weather_timeout" yaml:"weather_timeout"`
	WeatherCacheTTL time.Duration `json:"weather_cache_ttl" yaml:"weather_cache_ttl"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        DefaultCORSOrigins,
		APIKeyHeader:       "X-API-Key",
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		DatabaseURL:        DefaultDatabaseURL,
		MaxOpenConns:       DefaultMaxOpenConns,
		MaxIdleConns:       DefaultMaxIdleConns,
		ConnMaxLifetime:    DefaultConnMaxLifetime,
		QueryTimeout:       DefaultQueryTimeout,
		ReadOnlyQueries:    true,
		MaxActionLength:    DefaultMaxActionLength,
		EnableAuditLogging: true,
		EnableMetrics:      true,
		LLMProvider:        DefaultLLMProvider,
		OpenAIBaseURL:      DefaultOpenAIBaseURL,
		LLMTimeout:         DefaultLLMTimeout,
		LLMMaxTokens:       DefaultLLMMaxTokens,
		ModelList:          make(map[string]string),
		WeatherAPIURL:      DefaultWeatherAPIURL,
		WeatherTimeout:     DefaultWeatherTimeout,
		WeatherCacheTTL:    DefaultWeatherCacheTTL,
	}

	// Load from config file if specified
	if path := getEnv("ASSISTANT_CONFIG", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Model returns the configured model ID for the active provider.
func (c *Config) Model() string {
	if m := c.ModelList[c.LLMProvider]; m != "" {
		return m
	}
	return DefaultModels[c.LLMProvider]
}

// LLMCredentials returns the API key and base URL for the active provider.
func (c *Config) LLMCredentials() (apiKey, baseURL string) {
	switch c.LLMProvider {
	case "gemini":
		return c.GeminiAPIKey, ""
	case "openai":
		return c.OpenAIAPIKey, c.OpenAIBaseURL
	default:
		return c.AnthropicAPIKey, c.AnthropicBaseURL
	}
}

// IsDevelopment reports whether human-readable console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return loadJSON(data, cfg)
	}
}

// duration accepts "15s" style strings or integer nanoseconds.
type duration time.Duration

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		parsed, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", t, err)
		}
		*d = duration(parsed)
	case float64:
		*d = duration(time.Duration(t))
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// loadJSON decodes into cfg, shadowing the duration fields so they parse
// with time.ParseDuration. YAML handles durations natively.
func loadJSON(data []byte, cfg *Config) error {
	type plain Config
	aux := struct {
		*plain
		ConnMaxLifetime *duration `json:"conn_max_lifetime"`
		QueryTimeout    *duration `json:"query_timeout"`
		LLMTimeout      *duration `json:"llm_timeout"`
		WeatherTimeout  *duration `json:"weather_timeout"`
		WeatherCacheTTL *duration `json:"weather_cache_ttl"`
	}{plain: (*plain)(cfg)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	for _, f := range []struct {
		src *duration
		dst *time.Duration
	}{
		{aux.ConnMaxLifetime, &cfg.ConnMaxLifetime},
		{aux.QueryTimeout, &cfg.QueryTimeout},
		{aux.LLMTimeout, &cfg.LLMTimeout},
		{aux.WeatherTimeout, &cfg.WeatherTimeout},
		{aux.WeatherCacheTTL, &cfg.WeatherCacheTTL},
	} {
		if f.src != nil {
			*f.dst = time.Duration(*f.src)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("ASSISTANT_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("ASSISTANT_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("ASSISTANT_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("ASSISTANT_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("ASSISTANT_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
	}
	if v := getEnv("ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = v == "true" || v == "1"
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getEnv("QUERY_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.QueryTimeout = d
		}
	}
	setDuration("CONN_MAX_LIFETIME", &cfg.ConnMaxLifetime)
	if v := getEnv("READ_ONLY_QUERIES", ""); v != "" {
		cfg.ReadOnlyQueries = v == "true" || v == "1"
	}
	if v := getEnv("SQL_ALLOWLIST", ""); v != "" {
		cfg.SQLAllowlist = v == "true" || v == "1"
	}
	if v := getEnv("LLM_PROVIDER", ""); v != "" {
		cfg.LLMProvider = strings.ToLower(v)
	}
	if v := getEnv("LLM_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLMTimeout = d
		}
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("GEMINI_API_KEY", ""); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := getEnv("OPENAI_API_KEY", ""); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := getEnv("OPENAI_BASE_URL", ""); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := getEnv("WEATHER_API_KEY", ""); v != "" {
		cfg.WeatherAPIKey = v
	}
	if v := getEnv("WEATHER_API_URL", ""); v != "" {
		cfg.WeatherAPIURL = v
	}
	setDuration("WEATHER_TIMEOUT", &cfg.WeatherTimeout)
	setDuration("WEATHER_CACHE_TTL", &cfg.WeatherCacheTTL)
}

func setDuration(key string, dst *time.Duration) {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
