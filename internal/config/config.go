// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Data describes the market data provider and the sample to load.
type Data struct {
	Provider  string `yaml:"provider"` // "yahoo" or "stub"
	BaseURL   string `yaml:"base_url"`
	Interval  string `yaml:"interval"` // "1d" or "1wk"
	Start     string `yaml:"start"`    // 2006-01-02
	End       string `yaml:"end"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Instrument names one market plus the optional hedge benchmark.
type Instrument struct {
	Symbol    string `yaml:"symbol"`
	Benchmark string `yaml:"benchmark"`
}

// Verification points at the published reference dataset.
type Verification struct {
	ReferencePath string `yaml:"reference_path"`
	MinOverlap    int    `yaml:"min_overlap"`
}

// Backtest groups the strategy entry rule parameters.
type Backtest struct {
	EntryThreshold   float64   `yaml:"entry_threshold"`
	Thresholds       []float64 `yaml:"thresholds"` // sensitivity sweep
	RateDifferential float64   `yaml:"rate_differential"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App          App          `yaml:"app"`
	Data         Data         `yaml:"data"`
	Instruments  []Instrument `yaml:"instruments"`
	Verification Verification `yaml:"verification"`
	Backtest     Backtest     `yaml:"backtest"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Range parses the configured sample window.
func (d Data) Range() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", d.Start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02", d.End, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end date: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s not before end %s", d.Start, d.End)
	}
	return start, end, nil
}
