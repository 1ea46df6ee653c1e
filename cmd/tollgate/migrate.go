// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tollgate/tollgate/internal/config"
	"github.com/tollgate/tollgate/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against the PostgreSQL database.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	databaseURL := os.Getenv(config.EnvDatabaseURL)
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("%s environment variable is required", config.EnvDatabaseURL)
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		return oops.Code("MIGRATION_DIRTY").
			With("version", version).
			Errorf("migration state is dirty; manual intervention required")
	}

	cmd.Printf("Migrations completed successfully (version %d)\n", version)
	return nil
}
