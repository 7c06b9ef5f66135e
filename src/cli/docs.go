// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the TLS certificate monitor.
// It implements a Cobra-based CLI whose root command checks the endpoints given as
// arguments or listed in the configuration file, and an inspect subcommand that
// reports certificates read from local PEM, DER or PKCS#7 files.
//
// Every run loads the configuration, opens the leveled console and daily file log,
// reports each certificate field by field and finishes with an optional JSON or
// markdown table summary written through the [logger.Logger] passed to [Execute].
package cli
