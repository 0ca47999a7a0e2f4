package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 1000.0, cfg.Account.InitialBalance)
	assert.Equal(t, 1.0, cfg.Account.TransactionFee)
	assert.Equal(t, "BTCUSDT", cfg.Data.Symbol)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"zero balance", func(c *Config) { c.Account.InitialBalance = 0 }, "account.initial_balance must be positive"},
		{"negative fee", func(c *Config) { c.Account.TransactionFee = -1 }, "account.transaction_fee must not be negative"},
		{"no episodes", func(c *Config) { c.Episodes = 0 }, "episodes must be at least 1"},
		{"missing symbol", func(c *Config) { c.Data.Symbol = "" }, "data.symbol is required"},
		{"missing dir", func(c *Config) { c.Data.Dir = "" }, "data.dir is required"},
		{"bad start", func(c *Config) { c.Data.Start = "01/01/2021" }, "data.start"},
		{"bad end", func(c *Config) { c.Data.End = "tomorrow" }, "data.end"},
		{"empty end is today", func(c *Config) { c.Data.End = "" }, ""},
		{"file skips download fields", func(c *Config) {
			c.Data = DataConfig{File: "bars.csv", Interval: "1h"}
		}, ""},
		{"bad interval", func(c *Config) { c.Data.Interval = "2d" }, "data.interval"},
		{"unknown agent", func(c *Config) { c.Agent.Name = "oracle" }, `unknown agent "oracle"`},
		{"random needs volume", func(c *Config) { c.Agent.MaxVolume = 0 }, "agent.max_volume"},
		{"script needs file", func(c *Config) { c.Agent.Name = "script" }, "agent.script is required"},
		{"hold agent", func(c *Config) { c.Agent.Name = "hold" }, ""},
		{"ema-cross needs periods", func(c *Config) { c.Agent.Name = "ema-cross" }, "agent.fast and agent.slow"},
		{"ema-cross fast below slow", func(c *Config) {
			c.Agent = AgentConfig{Name: "ema-cross", Fast: 20, Slow: 10}
		}, "0 < fast < slow"},
		{"sma-cross needs periods", func(c *Config) { c.Agent.Name = "sma-cross" }, "for the sma-cross agent"},
		{"ema-cross agent", func(c *Config) {
			c.Agent = AgentConfig{Name: "ema-cross", Fast: 10, Slow: 30}
		}, ""},
		{"bad journal", func(c *Config) { c.Journal.Type = "postgres" }, "journal.type must be"},
		{"csv needs dir", func(c *Config) { c.Journal.Type = "csv" }, "journal dir required"},
		{"sqlite needs path", func(c *Config) { c.Journal.DBPath = "" }, "journal db_path required"},
		{"journal none", func(c *Config) { c.Journal.Type = "none" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Agent.Seed = 99
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  initial_balance: 500\n  transaction_fee: 0.5\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.Account.InitialBalance)
	assert.Equal(t, 0.5, cfg.Account.TransactionFee)
	assert.Equal(t, "BTCUSDT", cfg.Data.Symbol)
	assert.Equal(t, 1, cfg.Episodes)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account: [1, 2\n"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestTimes(t *testing.T) {
	cfg := Default()
	start, err := cfg.StartTime()
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01", start.Format(DateLayout))

	end, err := cfg.EndTime()
	require.NoError(t, err)
	assert.Equal(t, "2021-12-31", end.Format(DateLayout))
}
