package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/datadash/internal/config"
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/logging"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "datadash",
	Short: "datadash: explore a CSV dataset in the browser",
	Long: `datadash loads a CSV file (an upload or a default file on disk) and renders summary
statistics, distribution plots, categorical breakdowns and correlation heatmaps in a browser
dashboard. The analyze command prints the same summary in the terminal.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datadash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	if f := rootCmd.PersistentFlags(); f.Changed("log-level") && logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

// currentConfig returns the loaded configuration, or the defaults when
// loading failed.
func currentConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c := cfgpkg.Defaults()
	return &c
}

func newLogger(c *cfgpkg.Global) (*zap.Logger, error) {
	return logging.New(c.LogLevel, debug)
}

// parseOptions maps the configured separators onto loader options.
func parseOptions(delimiter, decimal, thousands string) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	var err error
	if opt.Delimiter, err = cfgpkg.ParseRune(delimiter); err != nil {
		return opt, fmt.Errorf("unsupported delimiter: %w", err)
	}
	if opt.DecimalSeparator, err = cfgpkg.ParseRune(decimal); err != nil {
		return opt, fmt.Errorf("unsupported decimal separator: %w", err)
	}
	if opt.ThousandsSeparator, err = cfgpkg.ParseRune(thousands); err != nil {
		return opt, fmt.Errorf("unsupported thousands separator: %w", err)
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return opt, fmt.Errorf("decimal and thousands separators must differ")
	}
	return opt, nil
}
