package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/nsg-intelligence-backend/internal/app"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: app.NewViper()}

	root := &cobra.Command{
		Use:           "nsg",
		Short:         "NSG Intelligence onboarding backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional config file (yaml, json, toml)")
	root.PersistentFlags().String("log-mode", "development", "logger mode: development|production")
	_ = opts.v.BindPFlag("log_mode", root.PersistentFlags().Lookup("log-mode"))

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newGateCmd(opts))
	root.AddCommand(newTokenCmd(opts))
	root.AddCommand(newOnboardingCmd(opts))
	return root
}

// load resolves config and a logger for a subcommand.
func (o *rootOptions) load() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig(nil, o.v, o.configPath)
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
