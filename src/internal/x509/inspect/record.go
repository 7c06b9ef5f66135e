// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509inspect

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/text/unicode/norm"
)

// Well-known extension identifiers surfaced by the monitor.
const (
	OIDSubjectAltName      = "2.5.29.17"
	OIDExtendedKeyUsage    = "2.5.29.37"
	OIDKeyUsage            = "2.5.29.15"
	OIDCertificatePolicies = "2.5.29.32"
)

var (
	// ErrNilCertificate is returned when a Record is requested for a nil certificate.
	ErrNilCertificate = errors.New("x509inspect: nil certificate")

	// ErrMalformedPublicKey indicates the SubjectPublicKeyInfo could not be decoded.
	ErrMalformedPublicKey = errors.New("x509inspect: malformed subject public key info")
)

// ChainStatus is informational only. The monitor captures certificates
// whether or not they chain to a trusted root.
type ChainStatus struct {
	Verified bool
	Error    string
}

// Verify checks whether leaf chains to roots through intermediates and, when
// dnsName is not empty, whether it is valid for that host. A nil roots pool
// means the system pool.
func Verify(leaf *x509.Certificate, intermediates []*x509.Certificate, roots *x509.CertPool, dnsName string) ChainStatus {
	if leaf == nil {
		return ChainStatus{Error: ErrNilCertificate.Error()}
	}

	pool := x509.NewCertPool()
	for _, cert := range intermediates {
		pool.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		DNSName:       dnsName,
		Roots:         roots,
		Intermediates: pool,
	}
	if _, err := leaf.Verify(opts); err != nil {
		return ChainStatus{Error: err.Error()}
	}
	return ChainStatus{Verified: true}
}

// Record is an immutable snapshot of a leaf certificate. All byte accessors
// return copies.
type Record struct {
	issuer             string
	subject            string
	notBefore          time.Time
	notAfter           time.Time
	serialNumber       []byte
	thumbprint         [sha1.Size]byte
	fingerprint256     [sha256.Size]byte
	signatureAlgorithm string
	publicKeyAlgorithm string
	publicKey          []byte
	displayName        string
	extensions         map[string][]byte
	raw                []byte
	chain              ChainStatus
}

// NewRecord snapshots cert. Extension values are copied; when an OID appears
// more than once the first occurrence wins.
func NewRecord(cert *x509.Certificate, chain ChainStatus) (*Record, error) {
	if cert == nil {
		return nil, ErrNilCertificate
	}

	publicKey, err := subjectPublicKey(cert.RawSubjectPublicKeyInfo)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		issuer:             cert.Issuer.String(),
		subject:            cert.Subject.String(),
		notBefore:          cert.NotBefore.UTC(),
		notAfter:           cert.NotAfter.UTC(),
		thumbprint:         sha1.Sum(cert.Raw),
		fingerprint256:     sha256.Sum256(cert.Raw),
		signatureAlgorithm: cert.SignatureAlgorithm.String(),
		publicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
		publicKey:          publicKey,
		displayName:        displayName(cert),
		extensions:         make(map[string][]byte, len(cert.Extensions)),
		raw:                bytes.Clone(cert.Raw),
		chain:              chain,
	}
	if cert.SerialNumber != nil {
		rec.serialNumber = cert.SerialNumber.Bytes()
	}

	for _, ext := range cert.Extensions {
		oid := ext.Id.String()
		if _, seen := rec.extensions[oid]; seen {
			continue
		}
		rec.extensions[oid] = bytes.Clone(ext.Value)
	}

	return rec, nil
}

// subjectPublicKey returns the contents of the subjectPublicKey BIT STRING,
// i.e. the key material without the algorithm identifier.
func subjectPublicKey(spki []byte) ([]byte, error) {
	input := cryptobyte.String(spki)
	var (
		seq       cryptobyte.String
		bitString asn1.BitString
	)
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) ||
		!seq.SkipASN1(cryptobyte_asn1.SEQUENCE) ||
		!seq.ReadASN1BitString(&bitString) {
		return nil, ErrMalformedPublicKey
	}
	return bytes.Clone(bitString.Bytes), nil
}

func displayName(cert *x509.Certificate) string {
	name := cert.Subject.CommonName
	if name == "" && len(cert.DNSNames) > 0 {
		name = cert.DNSNames[0]
	}
	return norm.NFC.String(name)
}

// Issuer returns the issuer distinguished name.
func (r *Record) Issuer() string { return r.issuer }

// Subject returns the subject distinguished name.
func (r *Record) Subject() string { return r.subject }

// NotBefore returns the start of the validity window in UTC.
func (r *Record) NotBefore() time.Time { return r.notBefore }

// NotAfter returns the end of the validity window in UTC.
func (r *Record) NotAfter() time.Time { return r.notAfter }

// SerialNumber returns the big-endian serial number bytes.
func (r *Record) SerialNumber() []byte { return bytes.Clone(r.serialNumber) }

// Thumbprint returns the SHA-1 hash of the DER encoding.
func (r *Record) Thumbprint() []byte { return bytes.Clone(r.thumbprint[:]) }

// FingerprintSHA256 returns the SHA-256 hash of the DER encoding.
func (r *Record) FingerprintSHA256() []byte { return bytes.Clone(r.fingerprint256[:]) }

// SignatureAlgorithm returns the signature algorithm name, e.g. "SHA256-RSA".
func (r *Record) SignatureAlgorithm() string { return r.signatureAlgorithm }

// PublicKeyAlgorithm returns the public key algorithm name, e.g. "ECDSA".
func (r *Record) PublicKeyAlgorithm() string { return r.publicKeyAlgorithm }

// PublicKey returns the raw subject public key bytes.
func (r *Record) PublicKey() []byte { return bytes.Clone(r.publicKey) }

// DisplayName returns the subject common name, or the first DNS name when the
// subject has none. It may be empty.
func (r *Record) DisplayName() string { return r.displayName }

// Raw returns the DER encoding of the certificate.
func (r *Record) Raw() []byte { return bytes.Clone(r.raw) }

// Chain returns the informational chain verification status.
func (r *Record) Chain() ChainStatus { return r.chain }

// Extension returns the raw value of the extension identified by oid.
func (r *Record) Extension(oid string) ([]byte, bool) {
	v, ok := r.extensions[oid]
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

// DaysUntilExpiry returns floor((NotAfter - now) / 24h). The result is
// negative once the certificate has expired.
func (r *Record) DaysUntilExpiry(now time.Time) int {
	return DaysUntil(r.notAfter, now)
}

// DaysUntil returns the whole days from now until t, rounded toward negative infinity.
// Computed on Unix seconds; a time.Duration saturates near 292 years.
func DaysUntil(t, now time.Time) int {
	const secondsPerDay = 24 * 60 * 60

	delta := t.Unix() - now.Unix()
	if t.Nanosecond() < now.Nanosecond() {
		delta--
	}
	days := delta / secondsPerDay
	if delta%secondsPerDay < 0 {
		days--
	}
	return int(days)
}
