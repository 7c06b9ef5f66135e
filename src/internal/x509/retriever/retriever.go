// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509retriever

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	x509inspect "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/inspect"
)

var (
	// ErrEmptyEndpoint is returned for blank endpoint strings.
	ErrEmptyEndpoint = errors.New("x509retriever: empty endpoint")

	// ErrNoCertificate is returned when the handshake completed without the
	// peer presenting a certificate, or when no TLS handshake took place.
	ErrNoCertificate = errors.New("x509retriever: no certificate presented by peer")
)

// RetrievalError wraps a connection or handshake failure for one endpoint.
type RetrievalError struct {
	Endpoint string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("x509retriever: failed to retrieve certificate for %s: %v", e.Endpoint, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Peer is the certificate chain presented during a handshake.
type Peer struct {
	ServerName    string // Host name taken from the endpoint URL
	Leaf          *x509.Certificate
	Intermediates []*x509.Certificate
}

// PeerCertificateFunc observes the presented chain while the handshake is in
// progress. It runs on the connection goroutine and must not block.
type PeerCertificateFunc func(peer Peer)

// Retriever fetches leaf certificates from HTTPS endpoints. It holds no
// per-endpoint state and is safe for concurrent use.
type Retriever struct {
	config *Config
	log    zerolog.Logger
}

// New creates a Retriever. A nil config uses [NewConfig] with an empty version.
func New(config *Config, log zerolog.Logger) *Retriever {
	if config == nil {
		config = NewConfig("")
	}
	return &Retriever{config: config, log: log}
}

// NormalizeEndpoint parses endpoint as a URL, assuming https when no scheme is given.
func NormalizeEndpoint(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("x509retriever: endpoint %q has no host", endpoint)
	}
	return u, nil
}

// Handshake performs one GET against endpoint with certificate validation
// disabled, invoking onPeer with the presented chain. The hook always accepts.
//
// Redirects are not followed, so the certificate observed belongs to the
// endpoint itself. The connection is closed before Handshake returns.
func (r *Retriever) Handshake(ctx context.Context, endpoint string, onPeer PeerCertificateFunc) error {
	target, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return err
	}

	timeout := r.config.timeout()
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout: timeout,
		DisableKeepAlives:   true,
		TLSClientConfig: &tls.Config{
			// We just want the certificate, not to verify it.
			InsecureSkipVerify: true,
			VerifyConnection: func(cs tls.ConnectionState) error {
				if len(cs.PeerCertificates) > 0 && onPeer != nil {
					onPeer(Peer{
						ServerName:    target.Hostname(),
						Leaf:          cs.PeerCertificates[0],
						Intermediates: cs.PeerCertificates[1:],
					})
				}
				return nil
			},
		},
	}
	defer transport.CloseIdleConnections()

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", r.config.GetUserAgent())

	r.log.Debug().Str("endpoint", endpoint).Msg("Sending request")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	// The body is irrelevant.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	return resp.Body.Close()
}

// Retrieve returns the leaf certificate served by endpoint.
//
// It returns [ErrEmptyEndpoint] for blank input, [ErrNoCertificate] when the
// hook never fired (e.g. a plain http:// endpoint), and a [*RetrievalError]
// for network or handshake failures.
func (r *Retriever) Retrieve(ctx context.Context, endpoint string) (*x509inspect.Record, error) {
	var (
		captured Peer
		seen     bool
	)
	err := r.Handshake(ctx, endpoint, func(peer Peer) {
		captured = peer
		seen = true
	})
	switch {
	case errors.Is(err, ErrEmptyEndpoint):
		return nil, err
	case err != nil:
		return nil, &RetrievalError{Endpoint: endpoint, Err: err}
	case !seen:
		return nil, ErrNoCertificate
	}

	return x509inspect.NewRecord(captured.Leaf, r.verify(captured))
}

// verify evaluates the presented chain against the configured roots. The
// result is informational and never causes the certificate to be rejected.
func (r *Retriever) verify(peer Peer) x509inspect.ChainStatus {
	return x509inspect.Verify(peer.Leaf, peer.Intermediates, r.config.Roots, peer.ServerName)
}
