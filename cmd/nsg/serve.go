package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/nsg-intelligence-backend/internal/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.Run(ctx)
			if err != nil && ctx.Err() == nil {
				return err
			}
			log.Info("shutdown complete")
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	_ = opts.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}
