// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509inspect

import (
	"time"
)

// Details holds the reported fields of a certificate in reporting order.
// Extension fields are nil when the certificate does not carry the extension
// or when it failed to decode.
type Details struct {
	Issuer              string    `json:"issuer"`
	Subject             string    `json:"subject"`
	NotBefore           time.Time `json:"notBefore"`
	NotAfter            time.Time `json:"notAfter"`
	SerialNumber        string    `json:"serialNumber"`
	Thumbprint          string    `json:"thumbprint"`
	SignatureAlgorithm  string    `json:"signatureAlgorithm"`
	PublicKeyAlgorithm  string    `json:"publicKeyAlgorithm"`
	PublicKey           string    `json:"publicKey"`
	DisplayName         string    `json:"displayName"`
	DaysUntilExpiry     int       `json:"daysUntilExpiry"`
	SubjectAltNames     []string  `json:"subjectAltNames,omitempty"`
	EnhancedKeyUsages   []string  `json:"enhancedKeyUsages,omitempty"`
	KeyUsages           []string  `json:"keyUsages,omitempty"`
	CertificatePolicies []string  `json:"certificatePolicies,omitempty"`
	FingerprintSHA256   string    `json:"fingerprintSha256"`
	ChainVerified       bool      `json:"chainVerified"`
	ChainError          string    `json:"chainError,omitempty"`
}

// PublicKeySeparator delimits bytes of the rendered public key.
const PublicKeySeparator = "-"

type extensionDecoder struct {
	oid    string
	name   string
	decode func([]byte) ([]string, error)
	assign func(*Details, []string)
}

// knownExtensions is in reporting order.
var knownExtensions = []extensionDecoder{
	{
		oid:    OIDSubjectAltName,
		name:   "Subject Alternative Names",
		decode: DecodeSubjectAltNames,
		assign: func(d *Details, v []string) { d.SubjectAltNames = v },
	},
	{
		oid:    OIDExtendedKeyUsage,
		name:   "Enhanced Key Usages",
		decode: DecodeExtendedKeyUsages,
		assign: func(d *Details, v []string) { d.EnhancedKeyUsages = v },
	},
	{
		oid:    OIDKeyUsage,
		name:   "Key Usage",
		decode: DecodeKeyUsage,
		assign: func(d *Details, v []string) { d.KeyUsages = v },
	},
	{
		oid:    OIDCertificatePolicies,
		name:   "Certificate Policies",
		decode: DecodeCertificatePolicies,
		assign: func(d *Details, v []string) { d.CertificatePolicies = v },
	},
}

// Describe extracts the reported fields as of now. Every known extension is
// decoded on its own; failures are returned alongside the details instead of
// aborting the extraction.
func (r *Record) Describe(now time.Time) (Details, []*ExtensionError) {
	d := Details{
		Issuer:             r.issuer,
		Subject:            r.subject,
		NotBefore:          r.notBefore,
		NotAfter:           r.notAfter,
		SerialNumber:       FormatHex(r.serialNumber, ""),
		Thumbprint:         FormatHex(r.thumbprint[:], ""),
		SignatureAlgorithm: r.signatureAlgorithm,
		PublicKeyAlgorithm: r.publicKeyAlgorithm,
		PublicKey:          FormatHex(r.publicKey, PublicKeySeparator),
		DisplayName:        r.displayName,
		DaysUntilExpiry:    r.DaysUntilExpiry(now),
		FingerprintSHA256:  FormatHex(r.fingerprint256[:], ""),
		ChainVerified:      r.chain.Verified,
		ChainError:         r.chain.Error,
	}

	var failures []*ExtensionError
	for _, ext := range knownExtensions {
		raw, ok := r.extensions[ext.oid]
		if !ok {
			continue
		}

		values, err := ext.decode(raw)
		if err != nil {
			failures = append(failures, &ExtensionError{OID: ext.oid, Name: ext.name, Err: err})
			continue
		}
		ext.assign(&d, values)
	}

	return d, failures
}
