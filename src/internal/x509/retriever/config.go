// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509retriever

import (
	"crypto/x509"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single retrieval (dial, handshake and request).
const DefaultTimeout = 10 * time.Second

// Config holds HTTP client configuration for certificate retrieval.
type Config struct {
	Timeout   time.Duration  // Per-endpoint timeout
	Version   string         // Application version for User-Agent
	UserAgent string         // Custom User-Agent string, if empty will be constructed from Version
	Roots     *x509.CertPool // Roots for the informational chain check; nil uses the system pool
}

// NewConfig creates a configuration with the default timeout.
func NewConfig(version string) *Config {
	return &Config{
		Timeout: DefaultTimeout,
		Version: version,
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *Config) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("TLS-Cert-Monitor/%s (+https://github.com/H0llyW00dzZ/tls-cert-monitor)", c.Version)
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
