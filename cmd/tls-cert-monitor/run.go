// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-monitor/src/cli"
	"github.com/H0llyW00dzZ/tls-cert-monitor/src/logger"
	verpkg "github.com/H0llyW00dzZ/tls-cert-monitor/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	// Plain output for the summary; leveled logs are set up by the CLI.
	log := logger.NewCLILogger()
	// Completion and failure lines stay off stdout so a JSON summary remains parseable.
	status := logger.NewCLILogger()
	status.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	select {
	case err := <-done:
		os.Exit(exitCode(status, err))
	case <-ctx.Done():
		status.Println("Operation cancelled by signal. Exiting...")
		// Let the CLI flush and close the log file.
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
		os.Exit(130) // Standard exit code for SIGINT
	}
}

// exitCode reports how the run ended and returns the process exit code.
func exitCode(status logger.Logger, err error) int {
	if err != nil {
		status.Printf("Certificate monitor failed: %v", err)
		return 1
	}

	if cli.OperationPerformed {
		status.Println("Certificate check completed successfully.")
	}
	// Log stop only if an operation was performed successfully
	if cli.OperationPerformedSuccessfully {
		status.Println("TLS certificate monitor stopped.")
	}
	return 0
}
