package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "alpha-asymmetry-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Data.Provider != "stub" {
		t.Fatalf("unexpected Data.Provider: %s", cfg.Data.Provider)
	}
	if cfg.Data.Interval != "1wk" {
		t.Fatalf("unexpected Data.Interval: %s", cfg.Data.Interval)
	}
	if len(cfg.Instruments) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(cfg.Instruments))
	}
	if cfg.Instruments[0].Symbol != "EURJPY=X" || cfg.Instruments[0].Benchmark != "DX-Y.NYB" {
		t.Fatalf("unexpected first instrument: %+v", cfg.Instruments[0])
	}
	if cfg.Instruments[1].Benchmark != "" {
		t.Fatalf("expected empty benchmark, got %s", cfg.Instruments[1].Benchmark)
	}
	if cfg.Verification.MinOverlap != 10 {
		t.Fatalf("unexpected MinOverlap: %d", cfg.Verification.MinOverlap)
	}
	if cfg.Backtest.EntryThreshold != 0.75 {
		t.Fatalf("unexpected EntryThreshold: %.2f", cfg.Backtest.EntryThreshold)
	}
	if len(cfg.Backtest.Thresholds) != 4 || cfg.Backtest.Thresholds[2] != 1.0 {
		t.Fatalf("unexpected Thresholds: %+v", cfg.Backtest.Thresholds)
	}
	if cfg.Backtest.RateDifferential != -0.02 {
		t.Fatalf("unexpected RateDifferential: %.2f", cfg.Backtest.RateDifferential)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDataRange(t *testing.T) {
	d := Data{Start: "2015-11-01", End: "2025-08-31"}
	start, end, err := d.Range()
	if err != nil {
		t.Fatalf("Range returned error: %v", err)
	}
	if !start.Before(end) {
		t.Fatalf("start should precede end")
	}
	if start.Year() != 2015 || end.Year() != 2025 {
		t.Fatalf("unexpected range: %s - %s", start, end)
	}

	if _, _, err := (Data{Start: "2025-01-01", End: "2024-01-01"}).Range(); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, _, err := (Data{Start: "bogus", End: "2024-01-01"}).Range(); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
