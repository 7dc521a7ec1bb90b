package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/app/jobsapp"
	"github.com/praneeth552/Jobfinder/internal/config"
	"github.com/praneeth552/Jobfinder/internal/infra/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "billingctl",
	Short: "Billing reconciliation and operator commands",
	Long: `Run the scheduled billing jobs (renewal reminders and expiry sweep),
the notification worker, and operator lookups against the billing journal
and Razorpay.`,
	SilenceUsage: true,
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	defaultPath := os.Getenv("APP_CONFIG")
	if defaultPath == "" {
		defaultPath = "configs/config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to the YAML config file")

	rootCmd.AddCommand(reconcileCmd, remindersCmd, sweepCmd, notifierCmd, followupsCmd, inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp builds the jobs app for one command invocation and tears it
// down afterwards.
func withApp(cmd *cobra.Command, service string, fn func(ctx context.Context, app *jobsapp.App, log *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, service)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := jobsapp.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("close jobs app", zap.Error(err))
		}
	}()

	return fn(ctx, app, log)
}
