package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/berthalloc/app"
	"github.com/kilianp07/berthalloc/config"
	"github.com/kilianp07/berthalloc/core/monitoring"
	"github.com/kilianp07/berthalloc/infra/logger"
	inframon "github.com/kilianp07/berthalloc/infra/monitoring"
)

var cfgPath string

const flushTimeout = 2 * time.Second

var rootCmd = &cobra.Command{
	Use:           "berthalloc",
	Short:         "Berth allocation with local search metaheuristics",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults and BERTH_ variables apply without it")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withService loads the configuration, applies the overrides and runs fn
// with a service bound to a context canceled on SIGINT or SIGTERM. Failures
// other than cancellation are reported to the configured monitor.
func withService(name string, override func(*config.Config), fn func(context.Context, *app.Service) error) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	mon, err := inframon.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}
	monitoring.Init(mon)
	defer monitoring.Flush(flushTimeout)
	defer func() {
		if err != nil && !errors.Is(err, context.Canceled) {
			monitoring.CaptureException(err, map[string]string{"command": name})
		}
	}()
	defer monitoring.Recover()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return fn(ctx, svc)
}
