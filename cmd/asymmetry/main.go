package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/studiofarzulla/alpha-asymmetry/internal/config"
	"github.com/studiofarzulla/alpha-asymmetry/internal/marketdata"
	"github.com/studiofarzulla/alpha-asymmetry/internal/report"
	"github.com/studiofarzulla/alpha-asymmetry/internal/util"
)

var (
	configPath   string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "asymmetry",
	Short: "FX alpha verification and backtesting pipeline",
	Long: `Recomputes the alpha signals behind the alpha-asymmetry working
paper, verifies them against the published reference dataset, and runs
the long/flat/short strategy backtests across markets.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use 'asymmetry verify', 'asymmetry backtest' or 'asymmetry markets'")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to YAML configuration")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "output format: table or markdown")
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(marketsCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runEnv bundles everything a subcommand needs from configuration.
type runEnv struct {
	cfg      *config.Config
	log      zerolog.Logger
	provider marketdata.Provider
	interval marketdata.Interval
	start    time.Time
	end      time.Time
}

func setup() (*runEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := util.NewLogger(cfg.App.LogLevel)

	start, end, err := cfg.Data.Range()
	if err != nil {
		return nil, err
	}

	interval := marketdata.Interval(cfg.Data.Interval)
	if interval != marketdata.IntervalDaily && interval != marketdata.IntervalWeekly {
		interval = marketdata.IntervalWeekly
	}

	var provider marketdata.Provider
	switch cfg.Data.Provider {
	case "stub":
		provider = marketdata.NewStubProvider()
	default:
		opts := []marketdata.YahooOption{}
		if cfg.Data.BaseURL != "" {
			opts = append(opts, marketdata.WithBaseURL(cfg.Data.BaseURL))
		}
		if cfg.Data.TimeoutMs > 0 {
			opts = append(opts, marketdata.WithHTTPClient(newHTTPClient(cfg.Data.TimeoutMs)))
		}
		provider = marketdata.NewYahooProvider(log, opts...)
	}

	return &runEnv{
		cfg:      cfg,
		log:      log,
		provider: provider,
		interval: interval,
		start:    start,
		end:      end,
	}, nil
}

func (e *runEnv) instrument(symbol string) config.Instrument {
	for _, inst := range e.cfg.Instruments {
		if inst.Symbol == symbol {
			return inst
		}
	}
	if symbol != "" {
		return config.Instrument{Symbol: symbol}
	}
	if len(e.cfg.Instruments) > 0 {
		return e.cfg.Instruments[0]
	}
	return config.Instrument{Symbol: "EURJPY=X"}
}

func newHTTPClient(timeoutMs int) *http.Client {
	return &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond}
}

func emit(t *report.Table) error {
	if outputFormat == "markdown" {
		_, err := fmt.Print(t.Markdown())
		return err
	}
	return t.Render(os.Stdout)
}
