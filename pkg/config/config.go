package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Chain is one tracked chain: display symbol plus the upstream coin id.
type Chain struct {
	Symbol string `yaml:"symbol" validate:"required"`
	ID     string `yaml:"id" validate:"required"`
}

type Config struct {
	Environment string `yaml:"environment" validate:"required"`

	// Chains are checked in declaration order; the order is part of the
	// trigger contract, not cosmetic.
	Chains []Chain `yaml:"chains" validate:"min=2"`

	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`

	CoinGecko struct {
		BaseURL            string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
		VsCurrency         string        `yaml:"vs_currency" default:"usd"`
		Timeout            time.Duration `yaml:"timeout" default:"30s"`
		CacheDuration      time.Duration `yaml:"cache_duration" default:"60s"`
		MinRequestInterval time.Duration `yaml:"min_request_interval" default:"6s"`
		MaxRetries         int           `yaml:"max_retries" default:"3"`
		BaseWait           time.Duration `yaml:"base_wait" default:"5s"`
		RateLimitWait      time.Duration `yaml:"rate_limit_wait" default:"60s"`
	} `yaml:"coingecko"`

	Triggers struct {
		PriceChangeThreshold float64       `yaml:"price_change_threshold" default:"5.0"`
		VolumeChangeThreshold float64      `yaml:"volume_change_threshold" default:"10.0"`
		VolumeTrendThreshold float64       `yaml:"volume_trend_threshold" default:"10.0"`
		VolumeWindowMinutes  int           `yaml:"volume_window_minutes" default:"60"`
		BaseInterval         time.Duration `yaml:"base_interval" default:"30m"`
	} `yaml:"triggers"`

	Predictions struct {
		Retention time.Duration `yaml:"retention" default:"24h"`
	} `yaml:"predictions"`

	Narrative struct {
		APIKey     string        `yaml:"api_key"`
		Model      string        `yaml:"model" default:"gpt-4o-mini"`
		MaxTokens  int           `yaml:"max_tokens" default:"1000"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
		RetryStep  time.Duration `yaml:"retry_step" default:"10s"`
	} `yaml:"narrative"`

	Publisher struct {
		Enabled       bool          `yaml:"enabled"`
		BaseURL       string        `yaml:"base_url" default:"https://api.twitter.com"`
		BearerToken   string        `yaml:"bearer_token"`
		UserID        string        `yaml:"user_id"`
		Timeout       time.Duration `yaml:"timeout" default:"30s"`
		RecentLimit   int           `yaml:"recent_limit" default:"10"`
		MaxPostLength int           `yaml:"max_post_length" default:"280"`
		Hashtags      string        `yaml:"hashtags" default:"#SOL #DOT #Layer1 #L1Analysis"`
	} `yaml:"publisher"`

	ClickHouse struct {
		Host             string        `yaml:"host" validate:"required"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"chainpulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"chainpulse"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"chainpulse.posts"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.CoinGecko.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Narrative.APIKey = v
	}
	if v := os.Getenv("PUBLISHER_BEARER_TOKEN"); v != "" {
		c.Publisher.BearerToken = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CHAINS"); v != "" {
		// "SOL=solana,DOT=polkadot"
		chains, err := parseChains(v)
		if err != nil {
			return nil, err
		}
		c.Chains = chains
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Chains))
	for _, ch := range c.Chains {
		if seen[ch.Symbol] {
			return fmt.Errorf("duplicate chain symbol %q", ch.Symbol)
		}
		seen[ch.Symbol] = true
	}
	if c.Publisher.Enabled && c.Publisher.BearerToken == "" {
		return fmt.Errorf("publisher.bearer_token is required when publisher is enabled")
	}
	return nil
}

// ChainSymbols returns the tracked symbols in configured order.
func (c *Config) ChainSymbols() []string {
	out := make([]string, len(c.Chains))
	for i, ch := range c.Chains {
		out[i] = ch.Symbol
	}
	return out
}

// ChainIDs returns the upstream coin ids in configured order.
func (c *Config) ChainIDs() []string {
	out := make([]string, len(c.Chains))
	for i, ch := range c.Chains {
		out[i] = ch.ID
	}
	return out
}

func parseChains(s string) ([]Chain, error) {
	parts := strings.Split(s, ",")
	chains := make([]Chain, 0, len(parts))
	for _, p := range parts {
		kv := strings.SplitN(strings.TrimSpace(p), "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			return nil, fmt.Errorf("invalid CHAINS entry %q, want SYMBOL=coin-id", p)
		}
		chains = append(chains, Chain{Symbol: kv[0], ID: kv[1]})
	}
	if len(chains) < 2 {
		return nil, fmt.Errorf("need at least two chains, got %d", len(chains))
	}
	return chains, nil
}
