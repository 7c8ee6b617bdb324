package model

import "time"

// Config holds the full runtime configuration. Populated from defaults,
// then config file, env vars and CLI flags (highest priority last).
type Config struct {
	Discover DiscoverConfig `yaml:"discover" mapstructure:"discover"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// DiscoverConfig configures the source discovery collaborator.
type DiscoverConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Limit   int           `yaml:"limit" mapstructure:"limit"` // Capped at 20 by the client
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Rate    float64       `yaml:"rate" mapstructure:"rate"` // Requests per second per host
}

// ExtractConfig configures the document extraction collaborator.
type ExtractConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	BatchSize    int           `yaml:"batch_size" mapstructure:"batch_size"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	JobTimeout   time.Duration `yaml:"job_timeout" mapstructure:"job_timeout"`
	Workers      int           `yaml:"workers" mapstructure:"workers"` // Concurrent batches
}

// LLMConfig configures the text-generation collaborator.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" = disabled
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"-"` // Env only, never persisted
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // Seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`

	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// StoreConfig configures the per-statement record stores.
type StoreConfig struct {
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
}

// HTTPConfig configures direct page fetching (local extraction fallback).
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults. The extraction collaborator's
// observed cadence is a 5-second poll under a 5-minute deadline, batches of
// 5 URLs.
func DefaultConfig() *Config {
	return &Config{
		Discover: DiscoverConfig{
			BaseURL: "https://api.firecrawl.dev/v2/search",
			Limit:   5,
			Timeout: 60 * time.Second,
			Rate:    2,
		},
		Extract: ExtractConfig{
			BaseURL:      "https://api.firecrawl.dev/v2/extract",
			BatchSize:    5,
			PollInterval: 5 * time.Second,
			JobTimeout:   5 * time.Minute,
			Workers:      3,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 2000,
		},
		Store: StoreConfig{
			Dir:       "", // Resolved to ~/.contrario/store by the CLI
			MemoryTTL: 15 * time.Minute,
			Enabled:   true,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Contrario/0.2 (+https://github.com/pkrasavin/contrario)",
			MaxBodyBytes: 2_000_000,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
