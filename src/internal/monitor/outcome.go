// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package monitor

import (
	x509inspect "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/inspect"
)

// Status classifies the result of checking one endpoint.
type Status int

const (
	// StatusCertificate means a certificate was obtained and reported.
	StatusCertificate Status = iota
	// StatusNoCertificate means the endpoint could not be reached or presented nothing.
	StatusNoCertificate
	// StatusFailed means the entry was invalid or extraction panicked.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCertificate:
		return "certificate"
	case StatusNoCertificate:
		return "no-certificate"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome is the result of checking a single endpoint.
type Outcome struct {
	Index    int                           // Position in the input list
	Endpoint string                        // Endpoint exactly as given
	Status   Status                        // What happened
	Details  *x509inspect.Details          // Set when Status is StatusCertificate
	Warnings []*x509inspect.ExtensionError // Extensions that failed to decode
	Err      error                         // Cause when Status is not StatusCertificate
	Record   *x509inspect.Record           // Captured certificate, if any
}

// Expired reports whether the captured certificate had expired at check time.
func (o Outcome) Expired() bool {
	return o.Details != nil && o.Details.DaysUntilExpiry < 0
}
