package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/KaramelBytes/datadash/internal/view"
	"github.com/KaramelBytes/datadash/internal/web"
)

var (
	srvAddr  string
	srvData  string
	srvWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if cmd.Flags().Changed("addr") {
			c.Addr = srvAddr
		}
		if cmd.Flags().Changed("data") {
			c.DefaultDataPath = srvData
		}
		if cmd.Flags().Changed("watch") {
			c.WatchDefault = srvWatch
		}

		logger, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		opt, err := parseOptions(c.Delimiter, c.DecimalSeparator, c.ThousandsSeparator)
		if err != nil {
			return err
		}
		loader := dataset.NewLoader(dataset.NewCache(c.CacheEntries), opt, logger.Named("dataset"))

		srv, err := web.NewServer(web.Config{
			Addr:          c.Addr,
			Loader:        loader,
			DefaultPath:   c.DefaultDataPath,
			Watch:         c.WatchDefault,
			SessionSecret: c.SessionSecret,
			MaxUploadMB:   c.MaxUploadMB,
			View: view.Options{
				PreviewRows:            c.PreviewRows,
				DefaultSelectedColumns: c.DefaultSelectedColumns,
				HistogramBins:          c.HistogramBins,
				DefaultPath:            c.DefaultDataPath,
			},
			Logger:          logger.Named("web"),
			ShutdownTimeout: time.Duration(c.ShutdownTimeoutSec) * time.Second,
		})
		if err != nil {
			return err
		}

		if !utils.FileExists(c.DefaultDataPath) {
			fmt.Fprintf(os.Stderr, "⚠ Warning: default dataset %s is not readable; the dashboard will ask for an upload\n", c.DefaultDataPath)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("✓ Dashboard listening on %s\n", c.Addr)
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", ":8501", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&srvData, "data", "diabetes.csv", "default dataset path (overrides config)")
	serveCmd.Flags().BoolVar(&srvWatch, "watch", true, "reload the default dataset when it changes on disk (overrides config)")
}
