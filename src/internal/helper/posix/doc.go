// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-style helpers for cross-platform command-line behavior.
//
// Key functions:
//   - GetExecutableName: Returns the executable name without extension for CLI usage
//
// Example:
//
//	rootCmd := &cobra.Command{
//	    Use:   posix.GetExecutableName() + " [URL...]",
//	    Short: "TLS certificate expiry monitor",
//	}
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
