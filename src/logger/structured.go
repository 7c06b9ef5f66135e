// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidLevel is returned for an unknown log level name.
var ErrInvalidLevel = errors.New("logger: invalid log level")

// Defaults for [Options].
const (
	DefaultDirectory  = "logs"
	DefaultFileName   = "certificateMonitor.log"
	DefaultMaxBackups = 7
	DefaultMaxAgeDays = 31
)

// Options configures [New].
type Options struct {
	Level       string    // debug, info, warn, error or fatal; empty means info
	Directory   string    // Log file directory
	FileName    string    // Active log file name inside Directory
	MaxBackups  int       // Old files to keep; 0 means DefaultMaxBackups
	MaxAgeDays  int       // Days to keep old files; 0 means DefaultMaxAgeDays
	DisableFile bool      // Log to the console only
	Console     io.Writer // Console destination, os.Stdout when nil
	NoColor     bool      // Disable ANSI colors on the console
}

// Structured is a leveled logger writing to the console and a daily file.
//
// The embedded [zerolog.Logger] is used directly for leveled output, e.g.
//
//	log.Info().Str("endpoint", u).Msg("Checking certificate")
//
// Structured also implements [Logger], mapping Printf and Println to the
// info level.
type Structured struct {
	zerolog.Logger

	level   zerolog.Level
	noColor bool
	file    *DailyFile
}

// ParseLevel converts a level name into a [zerolog.Level]. The empty string
// yields [zerolog.InfoLevel]; "warning" is accepted as an alias of "warn".
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		name = "warn"
	}

	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
	return lvl, nil
}

// New creates a Structured logger. Zero-valued options fall back to the
// package defaults. Call [Structured.Close] before exit to release the file.
func New(opts Options) (*Structured, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	s := &Structured{level: level, noColor: opts.NoColor}

	if !opts.DisableFile {
		dir := opts.Directory
		if dir == "" {
			dir = DefaultDirectory
		}
		name := opts.FileName
		if name == "" {
			name = DefaultFileName
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logger: failed to create log directory: %w", err)
		}

		maxBackups := opts.MaxBackups
		if maxBackups == 0 {
			maxBackups = DefaultMaxBackups
		}
		maxAge := opts.MaxAgeDays
		if maxAge == 0 {
			maxAge = DefaultMaxAgeDays
		}

		s.file = &DailyFile{
			Filename:   filepath.Join(dir, name),
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
		}
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	s.SetOutput(console)
	return s, nil
}

// SetOutput replaces the console destination. The log file, if any, is kept.
// It must not be called while other goroutines are logging.
func (s *Structured) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: s.noColor}
	if s.file != nil {
		out = zerolog.MultiLevelWriter(
			zerolog.ConsoleWriter{Out: s.file, TimeFormat: time.RFC3339Nano, NoColor: true},
			out,
		)
	}

	s.Logger = zerolog.New(out).Level(s.level).With().Timestamp().Logger()
}

// Printf logs a formatted message at info level.
func (s *Structured) Printf(format string, v ...any) { s.Info().Msgf(format, v...) }

// Println logs the operands at info level, spaced as by fmt.Sprintln.
func (s *Structured) Println(v ...any) {
	s.Info().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// FilePath returns the active log file, or "" when file output is disabled.
func (s *Structured) FilePath() string {
	if s.file == nil {
		return ""
	}
	return s.file.Filename
}

// Close flushes and closes the log file.
func (s *Structured) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
