// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// tls-cert-monitor connects to HTTPS endpoints and reports the certificate
// each one presents, whether or not it is trusted, expired or issued for
// another host.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/tls-cert-monitor/cmd/tls-cert-monitor@latest
//
// # Usage
//
//	tls-cert-monitor [FLAGS] [URL...]
//	tls-cert-monitor inspect [FLAGS] FILE...
//
// Without URL arguments the urlsToCheck list of the configuration file is
// used. The file is taken from --config, then $TLS_CERT_MONITOR_CONFIG, then
// appsettings.json in the working directory.
//
// # Flags
//
//	-c, --config        Configuration file (JSON or YAML)
//	-t, --timeout       Per-endpoint connection timeout (default 10s)
//	-w, --workers       Endpoints checked at once (default 1)
//	    --warn-days     Warn when a certificate expires within N days (default 30)
//	-o, --output        Summary after the run: none, json or table
//	    --include-pem   Embed certificates as PEM in JSON output
//	    --log-level     debug, info, warn, error or fatal
//	    --log-dir       Directory for the daily log file (default logs)
//	    --no-log-file   Log to the console only
//	    --no-color      Disable colored console output
//
// # Examples
//
// Check two endpoints and print a table:
//
//	tls-cert-monitor -o table https://example.com https://expired.badssl.com
//
// Check the configured endpoints four at a time:
//
//	tls-cert-monitor -c monitor.yaml -w 4
//
// Report a certificate bundle from disk as JSON:
//
//	tls-cert-monitor inspect -o json chain.pem > report.json
//
// Completion and failure messages are written to stderr.
//
// # Exit Codes
//
//	0    all endpoints were processed (individual failures are logged)
//	1    configuration, logging or summary failure
//	130  interrupted
package main
