// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides the logging used by the monitor.
//
// [Structured] is a leveled [zerolog] logger that writes human-readable lines
// to the console and, unless disabled, to a [DailyFile] that starts a new file
// every calendar day and prunes old ones with [lumberjack]. [CLILogger] is a
// thin wrapper around the standard library logger for plain command-line
// output. Both satisfy the [Logger] interface.
//
// [zerolog]: https://github.com/rs/zerolog
// [lumberjack]: https://github.com/natefinch/lumberjack
package logger
