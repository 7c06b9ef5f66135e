// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package monitor

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509certs "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/certs"
	x509inspect "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/inspect"
)

// RenderTable renders outcomes as a markdown table, one row per endpoint.
func RenderTable(outcomes []Outcome) (string, error) {
	if len(outcomes) == 0 {
		return "No endpoints checked", nil
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"#", "Endpoint", "Status", "Display Name", "Valid Until", "Days Left", "Chain", "Notes"})

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		row := []string{strconv.Itoa(o.Index + 1), o.Endpoint, o.Status.String(), "-", "-", "-", "-", notes(o)}
		if d := o.Details; d != nil {
			row[3] = d.DisplayName
			row[4] = d.NotAfter.Format("2006-01-02")
			row[5] = strconv.Itoa(d.DaysUntilExpiry)
			row[6] = "untrusted"
			if d.ChainVerified {
				row[6] = "trusted"
			}
		}
		rows = append(rows, row)
	}

	if err := table.Bulk(rows); err != nil {
		return "", fmt.Errorf("monitor: failed to build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("monitor: failed to render table: %w", err)
	}
	return buf.String(), nil
}

func notes(o Outcome) string {
	var parts []string
	if o.Err != nil {
		parts = append(parts, o.Err.Error())
	}
	for _, w := range o.Warnings {
		parts = append(parts, "invalid "+w.Name)
	}
	if o.Expired() {
		parts = append(parts, "expired")
	}
	return strings.Join(parts, "; ")
}

type jsonOutcome struct {
	Index       int                  `json:"index"`
	Endpoint    string               `json:"endpoint"`
	Status      Status               `json:"status"`
	Certificate *x509inspect.Details `json:"certificate,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	Error       string               `json:"error,omitempty"`
	PEM         string               `json:"pem,omitempty"`
}

// RenderJSON renders outcomes as an indented JSON array. When includePEM is
// set, each captured certificate is embedded in PEM form.
func RenderJSON(outcomes []Outcome, includePEM bool) ([]byte, error) {
	codec := x509certs.New()

	out := make([]jsonOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		j := jsonOutcome{
			Index:       o.Index,
			Endpoint:    o.Endpoint,
			Status:      o.Status,
			Certificate: o.Details,
		}
		for _, w := range o.Warnings {
			j.Warnings = append(j.Warnings, w.Error())
		}
		if o.Err != nil {
			j.Error = o.Err.Error()
		}
		if includePEM && o.Record != nil {
			cert, err := x509.ParseCertificate(o.Record.Raw())
			if err != nil {
				return nil, fmt.Errorf("monitor: failed to encode certificate for %s: %w", o.Endpoint, err)
			}
			j.PEM = string(codec.EncodePEM(cert))
		}
		out = append(out, j)
	}

	return json.MarshalIndent(out, "", "  ")
}
