// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrEmptyInput indicates that no certificate bytes were supplied.
	ErrEmptyInput = errors.New("x509certs: empty input")

	// ErrInvalidBlockType indicates that a PEM block is not a certificate.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")
)

const certBlockType = "CERTIFICATE"

// Certificate decodes [X.509] certificates read from local files and encodes
// captured certificates for the JSON summary.
//
// [X.509]: https://grokipedia.com/page/X.509
type Certificate struct {
	blockType string
}

// New creates a new Certificate codec.
func New() *Certificate { return &Certificate{blockType: certBlockType} }

// IsPEM reports whether data starts with a decodable PEM block.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// DecodeAll decodes every certificate contained in data. PEM bundles, raw DER
// (one or more concatenated certificates) and PKCS#7 (.p7b/.p7c) are accepted.
func (c *Certificate) DecodeAll(data []byte) ([]*x509.Certificate, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	if c.IsPEM(data) {
		return c.decodePEM(data)
	}

	if certs, err := x509.ParseCertificates(data); err == nil && len(certs) > 0 {
		return certs, nil
	}

	return c.decodePKCS7(data)
}

func (c *Certificate) decodePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		switch block.Type {
		case c.blockType:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}
			certs = append(certs, cert)
		case "PKCS7":
			p7certs, err := c.decodePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, p7certs...)
		default:
			return nil, ErrInvalidBlockType
		}
	}

	if len(certs) == 0 {
		return nil, ErrParseCertificate
	}
	return certs, nil
}

// decodePKCS7 uses Cloudflare's parser since the standard library has none.
func (c *Certificate) decodePKCS7(data []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParseCertificate
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: c.blockType, Bytes: cert.Raw})
}
