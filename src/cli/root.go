// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-monitor/src/config"
	"github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/monitor"
	x509certs "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/certs"
	x509inspect "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/inspect"
	x509retriever "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/retriever"
	"github.com/H0llyW00dzZ/tls-cert-monitor/src/logger"
)

// Output formats accepted by --output.
const (
	OutputNone  = "none"
	OutputJSON  = "json"
	OutputTable = "table"
)

var (
	// ErrInvalidOutput is returned for an unknown --output value.
	ErrInvalidOutput = errors.New("cli: output must be one of none, json or table")

	// ErrInspectFailed is returned when at least one file could not be inspected.
	ErrInspectFailed = errors.New("cli: failed to inspect certificate file")
)

var (
	configPath  string
	timeout     time.Duration
	workers     int
	warnDays    int
	output      string
	includePEM  bool
	logLevel    string
	logDir      string
	noLogFile   bool
	noLogColors bool
)

var (
	// OperationPerformed reports whether certificates were checked or inspected.
	OperationPerformed bool
	// OperationPerformedSuccessfully reports whether the last operation finished
	// and its summary was written.
	OperationPerformedSuccessfully bool
)

// Execute builds the command tree and runs it with the process arguments.
// Summaries are written through log; leveled diagnostics go to the console
// and the log file configured for the run.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	name := posix.GetExecutableName()
	rootCmd := &cobra.Command{
		Use:   name + " [URL...]",
		Short: "TLS certificate monitor",
		Long: `Connects to each HTTPS endpoint, captures the certificate it presents
without enforcing trust, and logs its details and remaining validity.

Endpoints come from the arguments or, when none are given, from the
urlsToCheck list of the configuration file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, version, log)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (JSON or YAML, default: $"+config.EnvConfigFile+" or "+config.DefaultFile+")")
	flags.IntVar(&warnDays, "warn-days", config.DefaultWarnDays, "warn when a certificate expires within this many days (-1 disables)")
	flags.StringVarP(&output, "output", "o", OutputNone, "summary printed after the run: none, json or table")
	flags.BoolVar(&includePEM, "include-pem", false, "embed certificates as PEM in JSON output")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error or fatal")
	flags.StringVar(&logDir, "log-dir", "", "directory for the daily log file")
	flags.BoolVar(&noLogFile, "no-log-file", false, "log to the console only")
	flags.BoolVar(&noLogColors, "no-color", false, "disable colored console output")

	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", x509retriever.DefaultTimeout, "per-endpoint connection timeout")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", config.DefaultConcurrency, "endpoints checked at once")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "inspect FILE...",
		Short: "Report certificates read from local files",
		Long: `Decodes certificates from PEM, DER or PKCS#7 files and logs the same
details as a network check. Every certificate in a bundle is reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, log)
		},
	})

	return rootCmd.ExecuteContext(ctx)
}

// session is the configuration and structured logger for one run.
type session struct {
	cfg     *config.Config
	log     *logger.Structured
	timeout time.Duration
}

// setup loads the configuration, applies flag overrides and opens the log.
// Failures are logged at fatal level on the console before returning.
func setup(cmd *cobra.Command) (*session, error) {
	fail := func(err error) (*session, error) {
		console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339, NoColor: noLogColors}).
			With().Timestamp().Logger()
		console.WithLevel(zerolog.FatalLevel).Err(err).Msg("An unhandled exception occurred in the application.")
		return nil, err
	}

	if !validOutput(output) {
		return fail(fmt.Errorf("%w: %q", ErrInvalidOutput, output))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fail(err)
	}

	changed := cmd.Flags().Changed
	connTimeout := cfg.Timeout()
	if changed("timeout") && timeout > 0 {
		connTimeout = timeout
	}
	if changed("workers") {
		cfg.Defaults.Concurrency = workers
	}
	if changed("warn-days") {
		cfg.Defaults.WarnDays = warnDays
	}
	if changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if changed("log-dir") {
		cfg.Logging.Directory = logDir
	}
	if noLogFile {
		cfg.Logging.DisableFile = true
	}

	// Keep stdout for the summary when one was requested.
	var console io.Writer = os.Stdout
	if output != OutputNone {
		console = os.Stderr
	}

	slog, err := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Directory:   cfg.Logging.Directory,
		FileName:    cfg.Logging.FileName,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		DisableFile: cfg.Logging.DisableFile,
		Console:     console,
		NoColor:     noLogColors,
	})
	if err != nil {
		return fail(err)
	}

	if cfg.Path != "" {
		slog.Debug().Str("path", cfg.Path).Msg("Configuration loaded")
	}
	return &session{cfg: cfg, log: slog, timeout: connTimeout}, nil
}

func validOutput(format string) bool {
	switch format {
	case OutputNone, OutputJSON, OutputTable:
		return true
	default:
		return false
	}
}

// runCheck checks the endpoints given as arguments or configured in the file.
func runCheck(cmd *cobra.Command, args []string, version string, log logger.Logger) error {
	s, err := setup(cmd)
	if err != nil {
		return err
	}
	defer s.log.Close()

	endpoints := args
	if len(endpoints) == 0 {
		endpoints, err = s.cfg.Endpoints()
		if errors.Is(err, config.ErrNoEndpoints) {
			s.log.Error().Msg("No URLs found in configuration to check.")
			return nil
		}
	}

	retrieverConfig := x509retriever.NewConfig(version)
	retrieverConfig.Timeout = s.timeout
	reporter := monitor.New(
		x509retriever.New(retrieverConfig, s.log.Logger),
		s.log.Logger,
		monitor.WithConcurrency(s.cfg.Defaults.Concurrency),
		monitor.WithWarnDays(s.cfg.Defaults.WarnDays),
	)

	OperationPerformed = true
	outcomes, err := reporter.CheckAll(cmd.Context(), endpoints)
	if err != nil {
		return err
	}

	return finish(s, outcomes, log)
}

// runInspect reports every certificate found in the given files.
func runInspect(cmd *cobra.Command, files []string, log logger.Logger) error {
	s, err := setup(cmd)
	if err != nil {
		return err
	}
	defer s.log.Close()

	reporter := monitor.New(nil, s.log.Logger, monitor.WithWarnDays(s.cfg.Defaults.WarnDays))
	codec := x509certs.New()

	OperationPerformed = true

	var (
		outcomes []monitor.Outcome
		failures []error
	)
	for _, file := range files {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		certs, err := readCertificates(codec, file)
		if err != nil {
			s.log.Error().Err(err).Str("endpoint", file).Msg("Failed to read certificates")
			outcomes = append(outcomes, monitor.Outcome{Index: len(outcomes), Endpoint: file, Status: monitor.StatusFailed, Err: err})
			failures = append(failures, err)
			continue
		}

		for i, cert := range certs {
			label := file
			if len(certs) > 1 {
				label = fmt.Sprintf("%s#%d", file, i+1)
			}

			others := make([]*x509.Certificate, 0, len(certs)-1)
			others = append(others, certs[:i]...)
			others = append(others, certs[i+1:]...)

			out := monitor.Outcome{Index: len(outcomes), Endpoint: label, Status: monitor.StatusFailed}
			rec, err := x509inspect.NewRecord(cert, x509inspect.Verify(cert, others, nil, ""))
			if err != nil {
				s.log.Error().Err(err).Str("endpoint", label).Msg("Failed to read certificate")
				out.Err = err
				failures = append(failures, err)
			} else {
				out = reporter.Report(label, rec)
				out.Index = len(outcomes)
			}
			outcomes = append(outcomes, out)
		}
	}

	if err := finish(s, outcomes, log); err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", ErrInspectFailed, errors.Join(failures...))
	}
	return nil
}

func readCertificates(codec *x509certs.Certificate, file string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	certs, err := codec.DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return certs, nil
}

// finish logs the run totals and writes the requested summary.
func finish(s *session, outcomes []monitor.Outcome, log logger.Logger) error {
	var retrieved, missing, failed, expired, warned int
	for _, o := range outcomes {
		switch o.Status {
		case monitor.StatusCertificate:
			retrieved++
		case monitor.StatusNoCertificate:
			missing++
		case monitor.StatusFailed:
			failed++
		}
		if o.Expired() {
			expired++
		}
		if len(o.Warnings) > 0 {
			warned++
		}
	}
	s.log.Info().
		Int("total", len(outcomes)).
		Int("retrieved", retrieved).
		Int("noCertificate", missing).
		Int("failed", failed).
		Int("expired", expired).
		Int("extensionWarnings", warned).
		Msg("Certificate check finished")

	switch output {
	case OutputJSON:
		data, err := monitor.RenderJSON(outcomes, includePEM)
		if err != nil {
			return err
		}
		log.Println(string(data))
	case OutputTable:
		table, err := monitor.RenderTable(outcomes)
		if err != nil {
			return err
		}
		log.Printf("%s", table)
	}

	OperationPerformedSuccessfully = true
	return nil
}
