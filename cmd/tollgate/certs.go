// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	tollgatetls "github.com/tollgate/tollgate/internal/tls"
	"github.com/tollgate/tollgate/internal/xdg"
)

// certsConfig holds configuration for the certs command.
type certsConfig struct {
	dir   string
	hosts []string
}

// NewCertsCmd creates the certs subcommand.
func NewCertsCmd() *cobra.Command {
	cfg := &certsConfig{}

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a self-signed TLS certificate for the API",
		Long: `Generate a development CA and an API server certificate signed by it.

The API delivers authentication cookies with the Secure attribute, so local
deployments need TLS. An existing CA in the target directory is reused; the
server certificate is regenerated each run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCerts(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.dir, "dir", "", "output directory (default: XDG config certs dir)")
	cmd.Flags().StringSliceVar(&cfg.hosts, "host", nil, "additional DNS names for the server certificate")

	return cmd
}

func runCerts(cmd *cobra.Command, cfg *certsConfig) error {
	dir := cfg.dir
	if dir == "" {
		dir = xdg.CertsDir()
	}

	ca, err := tollgatetls.LoadCA(dir)
	switch {
	case err == nil:
		cmd.Println("Reusing existing CA in", dir)
	case errors.Is(err, os.ErrNotExist):
		cmd.Println("Generating new CA in", dir)
		ca, err = tollgatetls.GenerateCA()
		if err != nil {
			return err
		}
	default:
		return err
	}

	serverCert, err := tollgatetls.GenerateServerCert(ca, "api", cfg.hosts)
	if err != nil {
		return err
	}

	if err := tollgatetls.SaveCertificates(dir, ca, serverCert); err != nil {
		return err
	}

	cmd.Println("Wrote", filepath.Join(dir, "api.crt"), "and", filepath.Join(dir, "api.key"))
	return nil
}
