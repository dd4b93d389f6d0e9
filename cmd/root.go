package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadplan/app"
	"github.com/kilianp07/loadplan/config"
	coremon "github.com/kilianp07/loadplan/core/monitoring"
	"github.com/kilianp07/loadplan/infra/logger"
	"github.com/kilianp07/loadplan/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "loadplan",
	Short:         "Multi-period production loading planner",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withService loads the configuration, starts monitoring and hands a ready
// service to fn. Metrics are written and Sentry is flushed on the way out.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("main")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		log.Errorf("sentry init: %v", err)
	} else {
		coremon.Init(mon)
		defer coremon.Flush(2 * time.Second)
	}

	svc, err := app.New(cfg, app.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	if err := fn(ctx, svc); err != nil {
		return err
	}
	if err := svc.WriteMetrics(); err != nil {
		log.Errorf("write metrics: %v", err)
	}
	return nil
}

// output returns the writer selected by --out and a function closing it.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
