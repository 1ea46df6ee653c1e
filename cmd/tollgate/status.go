// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tollgate/tollgate/internal/config"
)

// statusConfig holds configuration for the status command.
type statusConfig struct {
	metricsAddr string
	jsonOutput  bool
}

// probeResult holds the outcome of one health probe.
type probeResult struct {
	Probe  string `json:"probe"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show health of a running Tollgate instance",
		Long:  `Query the liveness and readiness probes of a running Tollgate instance.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address of the running instance")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	client := &http.Client{Timeout: 2 * time.Second}

	results := []probeResult{
		probe(client, cfg.metricsAddr, "liveness"),
		probe(client, cfg.metricsAddr, "readiness"),
	}

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, r := range results {
		if r.Error != "" {
			cmd.Printf("%s: %s (%s)\n", r.Probe, r.Status, r.Error)
		} else {
			cmd.Printf("%s: %s\n", r.Probe, r.Status)
		}
	}
	return nil
}

// probe queries one healthz endpoint of the observability server.
func probe(client *http.Client, addr, name string) probeResult {
	result := probeResult{Probe: name}

	resp, err := client.Get(fmt.Sprintf("http://%s/healthz/%s", addr, name))
	if err != nil {
		result.Status = "unreachable"
		result.Error = err.Error()
		return result
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode == http.StatusOK {
		result.Status = "ok"
	} else {
		result.Status = fmt.Sprintf("failing (HTTP %d)", resp.StatusCode)
	}
	return result
}
