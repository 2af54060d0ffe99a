package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/nsg-intelligence-backend/internal/app"
	"github.com/yungbote/nsg-intelligence-backend/internal/data/db"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed the default library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, err := openDB(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := db.AutoMigrateAll(svc.DB()); err != nil {
				return err
			}
			inserted := 0
			if seed {
				if inserted, err = db.SeedLibrary(cmd.Context(), svc.DB()); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrated (%s); library rows inserted: %d\n", svc.Driver(), inserted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", true, "seed default library items")
	return cmd
}

func openDB(cfg app.Config, log *logger.Logger) (*db.Service, error) {
	return db.NewService(db.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, log)
}
