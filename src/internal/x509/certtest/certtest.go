// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certtest generates throwaway certificates and TLS servers for tests.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Options describes the leaf certificate to generate.
type Options struct {
	CommonName  string
	DNSNames    []string
	IPAddresses []net.IP
	NotBefore   time.Time
	NotAfter    time.Time
	KeyUsage    x509.KeyUsage
	ExtKeyUsage []x509.ExtKeyUsage
	Policies    []asn1.ObjectIdentifier
}

// Issued is a generated certificate together with its TLS key pair.
type Issued struct {
	Cert    *x509.Certificate
	KeyPair tls.Certificate
}

// Generate creates a self-signed ECDSA P-256 certificate.
func Generate(t testing.TB, opts Options) *Issued {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "failed to generate key")

	if opts.CommonName == "" {
		opts.CommonName = "monitor.test"
	}
	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now().Add(-time.Hour)
	}
	if opts.NotAfter.IsZero() {
		opts.NotAfter = time.Now().Add(90 * 24 * time.Hour)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	require.NoError(t, err, "failed to generate serial")

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: opts.CommonName, Organization: []string{"Monitor Test"}},
		DNSNames:              opts.DNSNames,
		IPAddresses:           opts.IPAddresses,
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotAfter,
		KeyUsage:              opts.KeyUsage,
		ExtKeyUsage:           opts.ExtKeyUsage,
		PolicyIdentifiers:     opts.Policies,
		BasicConstraintsValid: true,
	}

	for _, id := range opts.Policies {
		ints := make([]uint64, len(id))
		for i, v := range id {
			ints[i] = uint64(v)
		}
		oid, err := x509.OIDFromInts(ints)
		require.NoError(t, err, "invalid policy identifier")
		tmpl.Policies = append(tmpl.Policies, oid)
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err, "failed to create certificate")

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err, "failed to parse generated certificate")

	return &Issued{
		Cert:    cert,
		KeyPair: tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: cert},
	}
}

// NewTLSServer starts an HTTPS server presenting issued. The handler records
// nothing and answers 204; pass a non-nil handler to inspect requests.
func NewTLSServer(t testing.TB, issued *Issued, handler http.Handler) *httptest.Server {
	t.Helper()

	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	srv := httptest.NewUnstartedServer(handler)
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{issued.KeyPair}}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

// ClosedAddr returns a loopback address nothing is listening on.
func ClosedAddr(t testing.TB) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to listen")
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}
