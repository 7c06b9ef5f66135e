// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package monitor checks a list of endpoints and reports the certificate each
// one serves.
//
// A [Reporter] walks the endpoints in order, asks its [Retriever] for the leaf
// certificate and writes the descriptive fields as leveled log lines. Every
// endpoint produces exactly one [Outcome]; a failing endpoint, a corrupt
// extension or even a panic during extraction only affects its own entry.
//
// Example:
//
//	r := monitor.New(x509retriever.New(cfg, log), log, monitor.WithConcurrency(4))
//	outcomes, err := r.CheckAll(ctx, []string{"https://example.com"})
//	if err != nil {
//		return err
//	}
//	table, _ := monitor.RenderTable(outcomes)
//	fmt.Print(table)
package monitor
