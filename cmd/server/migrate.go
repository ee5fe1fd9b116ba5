package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/store-rating/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users, stores and ratings tables if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.WithField("statements", len(database.Statements())).Info("schema applied")
		return nil
	},
}
