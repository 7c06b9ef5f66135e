// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509retriever captures the leaf certificate served by an HTTPS
// endpoint.
//
// The TLS client skips trust enforcement and installs a connection
// verification hook that hands the presented chain to the caller before the
// handshake completes, then always accepts. This is what makes self-signed,
// expired and hostname-mismatched certificates retrievable. A minimal GET
// request drives the handshake; its response is discarded.
//
// Trust is still evaluated, but only as information: the resulting
// [x509inspect.ChainStatus] is attached to the captured record.
package x509retriever
