package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/tradeenv/market"
	"gopkg.in/yaml.v3"
)

// DateLayout is the format of Data.Start and Data.End.
const DateLayout = "2006-01-02"

// Config represents the complete run configuration
type Config struct {
	Account  AccountConfig `json:"account" yaml:"account"`
	Data     DataConfig    `json:"data" yaml:"data"`
	Agent    AgentConfig   `json:"agent" yaml:"agent"`
	Journal  JournalConfig `json:"journal" yaml:"journal"`
	Log      LogConfig     `json:"log" yaml:"log"`
	Episodes int           `json:"episodes" yaml:"episodes"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	TransactionFee float64 `json:"transaction_fee" yaml:"transaction_fee"`
}

// DataConfig selects the bar sequence. File, when set, is read directly;
// otherwise bars come from the cache in Dir, downloading on a miss.
type DataConfig struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Interval string `json:"interval" yaml:"interval"`
	Start    string `json:"start" yaml:"start"`
	End      string `json:"end,omitempty" yaml:"end,omitempty"`
	Dir      string `json:"dir" yaml:"dir"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Save     bool   `json:"save" yaml:"save"`
}

// AgentConfig picks the decision maker.
type AgentConfig struct {
	Name      string  `json:"name" yaml:"name"` // hold, random, script, momentum, ema-cross, sma-cross
	Seed      int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	MaxVolume int     `json:"max_volume,omitempty" yaml:"max_volume,omitempty"`
	Volume    float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	Script    string  `json:"script,omitempty" yaml:"script,omitempty"`
	Fast      int     `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow      int     `json:"slow,omitempty" yaml:"slow,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig controls the logger. An empty File logs to stderr only.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.InitialBalance <= 0 {
		return fmt.Errorf("account.initial_balance must be positive")
	}
	if c.Account.TransactionFee < 0 {
		return fmt.Errorf("account.transaction_fee must not be negative")
	}
	if c.Episodes < 1 {
		return fmt.Errorf("episodes must be at least 1")
	}

	if c.Data.File == "" {
		if c.Data.Symbol == "" {
			return fmt.Errorf("data.symbol is required")
		}
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required when data.file is not set")
		}
		if _, err := c.StartTime(); err != nil {
			return fmt.Errorf("data.start: %w", err)
		}
		if _, err := c.EndTime(); err != nil {
			return fmt.Errorf("data.end: %w", err)
		}
	}
	if _, err := market.ParseInterval(c.Data.Interval); err != nil {
		return fmt.Errorf("data.interval: %w", err)
	}

	switch c.Agent.Name {
	case "hold", "momentum":
	case "random":
		if c.Agent.MaxVolume < 1 {
			return fmt.Errorf("agent.max_volume must be at least 1 for the random agent")
		}
	case "ema-cross", "sma-cross":
		if c.Agent.Fast <= 0 || c.Agent.Slow <= c.Agent.Fast {
			return fmt.Errorf("agent.fast and agent.slow must satisfy 0 < fast < slow for the %s agent", c.Agent.Name)
		}
	case "script":
		if c.Agent.Script == "" {
			return fmt.Errorf("agent.script is required for the script agent")
		}
	default:
		return fmt.Errorf("unknown agent %q (supported: hold, random, script, momentum, ema-cross, sma-cross)", c.Agent.Name)
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// StartTime parses Data.Start.
func (c *Config) StartTime() (time.Time, error) {
	return time.Parse(DateLayout, c.Data.Start)
}

// EndTime parses Data.End; an empty End means today (UTC).
func (c *Config) EndTime() (time.Time, error) {
	if c.Data.End == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return time.Parse(DateLayout, c.Data.End)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialBalance: 1000,
			TransactionFee: 1,
		},
		Data: DataConfig{
			Symbol:   "BTCUSDT",
			Interval: string(market.Interval1d),
			Start:    "2021-01-01",
			End:      "2021-12-31",
			Dir:      "data",
			Save:     true,
		},
		Agent: AgentConfig{
			Name:      "random",
			Seed:      1,
			MaxVolume: 5,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./tradeenv.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
		Episodes: 1,
	}
}
