// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509inspect turns a captured leaf certificate into an immutable
// [Record] and extracts the descriptive fields reported by the monitor.
//
// Extensions are kept as raw blobs keyed by dotted [OID]. Typed decoders exist
// for the four extensions the monitor surfaces:
//   - 2.5.29.17 Subject Alternative Name
//   - 2.5.29.37 Extended (Enhanced) Key Usage
//   - 2.5.29.15 Key Usage
//   - 2.5.29.32 Certificate Policies
//
// Each decoder fails independently with an [ExtensionError], so a corrupt
// extension never hides the other fields of the certificate. Decoding is done
// with [cryptobyte] directly on the extension bytes rather than relying on the
// already-parsed fields of [x509.Certificate], which lets the monitor report
// what the server actually sent.
//
// [OID]: https://grokipedia.com/page/Object_identifier
// [cryptobyte]: https://pkg.go.dev/golang.org/x/crypto/cryptobyte
package x509inspect
