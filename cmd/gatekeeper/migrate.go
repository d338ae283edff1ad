package main

import (
	"github.com/spf13/cobra"

	"github.com/paylinkr/gatekeeper/adapters/store"
	"github.com/paylinkr/gatekeeper/config"
	"github.com/paylinkr/gatekeeper/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, !cfg.Server.Production())

			db, err := openDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.CreateSchema(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("schema up to date", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
