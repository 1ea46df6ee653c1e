// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Tollgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tollgate",
		Short: "Tollgate - username/password authentication service",
		Long: `Tollgate is an authentication service issuing short-lived access
tokens and longer-lived refresh tokens, backed by a PostgreSQL user store.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewCertsCmd())

	return cmd
}
