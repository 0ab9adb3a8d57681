package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datadash/internal/config"
	"github.com/KaramelBytes/datadash/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set datadash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "addr: %s\n", cfg.Addr)
		fmt.Fprintf(w, "default_data_path: %s\n", cfg.DefaultDataPath)
		fmt.Fprintf(w, "max_upload_mb: %d\n", cfg.MaxUploadMB)
		fmt.Fprintf(w, "cache_entries: %d\n", cfg.CacheEntries)
		fmt.Fprintf(w, "preview_rows: %d\n", cfg.PreviewRows)
		fmt.Fprintf(w, "default_selected_columns: %d\n", cfg.DefaultSelectedColumns)
		fmt.Fprintf(w, "histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Fprintf(w, "delimiter: %q\n", cfg.Delimiter)
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(w, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(w, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(w, "session_secret: %s\n", mask(cfg.SessionSecret))
		fmt.Fprintf(w, "watch_default: %t\n", cfg.WatchDefault)
		fmt.Fprintf(w, "shutdown_timeout_sec: %d\n", cfg.ShutdownTimeoutSec)
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		positive := func() (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			return i, nil
		}
		separator := func() (string, error) {
			if _, err := cfgpkg.ParseRune(val); err != nil {
				return "", fmt.Errorf("invalid %s: %w", key, err)
			}
			return val, nil
		}
		var err error
		switch key {
		case "addr":
			cfg.Addr = val
		case "default_data_path":
			cfg.DefaultDataPath = val
		case "max_upload_mb":
			cfg.MaxUploadMB, err = positive()
		case "cache_entries":
			cfg.CacheEntries, err = positive()
		case "preview_rows":
			cfg.PreviewRows, err = positive()
		case "default_selected_columns":
			cfg.DefaultSelectedColumns, err = positive()
		case "histogram_bins":
			cfg.HistogramBins, err = positive()
		case "shutdown_timeout_sec":
			cfg.ShutdownTimeoutSec, err = positive()
		case "delimiter":
			cfg.Delimiter, err = separator()
		case "decimal_separator":
			cfg.DecimalSeparator, err = separator()
		case "thousands_separator":
			cfg.ThousandsSeparator, err = separator()
		case "session_secret":
			cfg.SessionSecret = val
		case "watch_default":
			b, perr := strconv.ParseBool(val)
			if perr != nil {
				return fmt.Errorf("invalid bool for watch_default: %v", val)
			}
			cfg.WatchDefault = b
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			cfg.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
