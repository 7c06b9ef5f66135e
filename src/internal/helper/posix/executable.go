// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// DefaultExecutableName is used when the program name cannot be derived from os.Args.
const DefaultExecutableName = "tls-cert-monitor"

// GetExecutableName returns the name the monitor was invoked as, without
// directory or ".exe" suffix, for use in cobra usage strings.
//
//   - Linux/macOS: "/usr/local/bin/tls-cert-monitor" → "tls-cert-monitor"
//   - Windows: "C:\tools\tls-cert-monitor.exe" → "tls-cert-monitor"
//   - Fallback: [DefaultExecutableName]
func GetExecutableName() string {
	if len(os.Args) == 0 {
		return DefaultExecutableName
	}
	return ExecutableName(os.Args[0])
}

// ExecutableName strips directories and the Windows executable suffix from
// arg0. Both separators are honored regardless of the host OS, so a Windows
// path reported on a Unix host still yields a clean name.
func ExecutableName(arg0 string) string {
	parts := strings.FieldsFunc(arg0, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		return DefaultExecutableName
	}

	name := strings.TrimSuffix(parts[len(parts)-1], ".exe")
	if name == "" || name == "." {
		return DefaultExecutableName
	}
	return name
}
