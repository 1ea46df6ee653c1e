// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/tollgate/tollgate/internal/observability"
)

func TestStatus_Properties(t *testing.T) {
	cmd := NewStatusCmd()

	if cmd.Use != "status" {
		t.Errorf("Use = %q, want %q", cmd.Use, "status")
	}

	if !strings.Contains(cmd.Short, "health") {
		t.Error("Short description should mention health")
	}
}

func TestStatus_Flags(t *testing.T) {
	cmd := NewStatusCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	for _, flag := range []string{"--json", "--metrics-addr"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help missing %q flag", flag)
		}
	}
}

func TestStatus_NoInstanceRunning(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	// Port 1 is never listening
	cmd.SetArgs([]string{"status", "--metrics-addr", "127.0.0.1:1"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "liveness: unreachable") {
		t.Errorf("expected liveness unreachable, got: %s", output)
	}
	if !strings.Contains(output, "readiness: unreachable") {
		t.Errorf("expected readiness unreachable, got: %s", output)
	}
}

func TestStatus_RunningInstance(t *testing.T) {
	obs := observability.NewServer("127.0.0.1:0", func() bool { return true })
	if _, err := obs.Start(); err != nil {
		t.Fatalf("failed to start observability server: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Stop(ctx)
	}()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--metrics-addr", obs.Addr()})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "liveness: ok") {
		t.Errorf("expected liveness ok, got: %s", output)
	}
	if !strings.Contains(output, "readiness: ok") {
		t.Errorf("expected readiness ok, got: %s", output)
	}
}

func TestStatus_JSONOutput(t *testing.T) {
	obs := observability.NewServer("127.0.0.1:0", func() bool { return false })
	if _, err := obs.Start(); err != nil {
		t.Fatalf("failed to start observability server: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Stop(ctx)
	}()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--metrics-addr", obs.Addr(), "--json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var results []struct {
		Probe  string `json:"probe"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 probe results, got %d", len(results))
	}
	if results[0].Probe != "liveness" || results[0].Status != "ok" {
		t.Errorf("unexpected liveness result: %+v", results[0])
	}
	if results[1].Probe != "readiness" || !strings.Contains(results[1].Status, "failing") {
		t.Errorf("expected readiness failing, got: %+v", results[1])
	}
}
