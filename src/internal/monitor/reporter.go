// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	x509inspect "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/inspect"
	x509retriever "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/retriever"
)

var (
	// ErrNothingToCheck is returned by [Reporter.CheckAll] for an empty list.
	ErrNothingToCheck = errors.New("monitor: no endpoints to check")

	// ErrUnexpected wraps a panic recovered while checking an endpoint.
	ErrUnexpected = errors.New("monitor: unexpected error")
)

// DefaultWarnDays is the remaining validity below which an expiry warning is logged.
const DefaultWarnDays = 30

// Retriever fetches the leaf certificate served by an endpoint.
//
// [*x509retriever.Retriever] is the production implementation.
type Retriever interface {
	Retrieve(ctx context.Context, endpoint string) (*x509inspect.Record, error)
}

// Option configures a [Reporter].
type Option func(*Reporter)

// WithConcurrency sets how many endpoints are checked at once. Values below 1
// are treated as 1, which checks endpoints strictly one after another.
func WithConcurrency(n int) Option {
	return func(r *Reporter) {
		if n < 1 {
			n = 1
		}
		r.concurrency = n
	}
}

// WithWarnDays sets the expiry warning threshold in days. Negative values disable it.
func WithWarnDays(days int) Option {
	return func(r *Reporter) { r.warnDays = days }
}

// WithClock overrides the time source used for days-until-expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// Reporter checks endpoints and logs what each one serves.
type Reporter struct {
	retriever   Retriever
	log         zerolog.Logger
	concurrency int
	warnDays    int
	now         func() time.Time
}

// New creates a Reporter. By default endpoints are checked sequentially and
// certificates within [DefaultWarnDays] of expiry are flagged.
func New(retriever Retriever, log zerolog.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		retriever:   retriever,
		log:         log,
		concurrency: 1,
		warnDays:    DefaultWarnDays,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckAll checks every endpoint and returns one [Outcome] per entry in input
// order. Failures are recorded in the outcomes; the returned error is
// [ErrNothingToCheck] for an empty list or the context error if ctx was
// cancelled while checking.
func (r *Reporter) CheckAll(ctx context.Context, endpoints []string) ([]Outcome, error) {
	if len(endpoints) == 0 {
		r.log.Error().Msg("No URLs provided to check.")
		return nil, ErrNothingToCheck
	}

	outcomes := make([]Outcome, len(endpoints))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			outcomes[i] = r.check(ctx, i, endpoint)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, ctx.Err()
}

// Report logs the fields of a certificate obtained without a network check,
// such as one read from a file. label identifies it in the log lines.
func (r *Reporter) Report(label string, rec *x509inspect.Record) (out Outcome) {
	log := r.log.With().Str("endpoint", label).Logger()
	out = Outcome{Endpoint: label}

	defer r.recoverInto(log, &out)

	log.Info().Msgf("Checking certificate for: %s", label)
	r.describe(log, rec, &out)
	return out
}

func (r *Reporter) check(ctx context.Context, index int, endpoint string) (out Outcome) {
	log := r.log.With().Int("index", index).Str("endpoint", endpoint).Logger()
	out = Outcome{Index: index, Endpoint: endpoint}

	defer r.recoverInto(log, &out)

	if strings.TrimSpace(endpoint) == "" {
		log.Error().Err(x509retriever.ErrEmptyEndpoint).Msg("Skipping invalid endpoint")
		out.Status = StatusFailed
		out.Err = x509retriever.ErrEmptyEndpoint
		return out
	}

	log.Info().Msgf("Checking certificate for: %s", endpoint)

	rec, err := r.retriever.Retrieve(ctx, endpoint)
	if err == nil && rec == nil {
		err = x509retriever.ErrNoCertificate
	}
	if err != nil {
		log.Error().Err(err).Msgf("Error retrieving certificate for %s", endpoint)
		log.Warn().Msgf("No certificate retrieved for %s.", endpoint)
		out.Status = StatusNoCertificate
		out.Err = err
		return out
	}

	r.describe(log, rec, &out)
	return out
}

// recoverInto turns a panic into a failed outcome so the remaining endpoints
// are still checked.
func (r *Reporter) recoverInto(log zerolog.Logger, out *Outcome) {
	p := recover()
	if p == nil {
		return
	}

	err := fmt.Errorf("%w: %v", ErrUnexpected, p)
	log.Error().Err(err).Msgf("An error occurred while checking the certificate for %s.", out.Endpoint)
	out.Status = StatusFailed
	out.Details = nil
	out.Warnings = nil
	out.Record = nil
	out.Err = err
}

func (r *Reporter) describe(log zerolog.Logger, rec *x509inspect.Record, out *Outcome) {
	d, failures := rec.Describe(r.now())

	info := func(format string, v ...any) { log.Info().Msgf(format, v...) }

	info("Issuer: %s", d.Issuer)
	info("Subject: %s", d.Subject)
	info("Valid from: %s", d.NotBefore.Format(time.RFC3339))
	info("Valid until: %s", d.NotAfter.Format(time.RFC3339))
	info("Serial Number: %s", d.SerialNumber)
	info("Thumbprint: %s", d.Thumbprint)
	info("Thumbprint (SHA-256): %s", d.FingerprintSHA256)
	info("Signature Algorithm: %s", d.SignatureAlgorithm)
	info("Public Key Algorithm: %s", d.PublicKeyAlgorithm)
	info("Public Key: %s", d.PublicKey)
	info("Display Name: %s", d.DisplayName)
	info("Days until expiration: %d", d.DaysUntilExpiry)

	// Known extensions, in reporting order. A failed one is logged where it
	// would have appeared.
	failed := make(map[string]*x509inspect.ExtensionError, len(failures))
	for _, f := range failures {
		failed[f.OID] = f
	}
	warn := func(oid string) bool {
		f, ok := failed[oid]
		if ok {
			log.Warn().Err(f.Err).Str("oid", f.OID).Msgf("Failed to parse %s.", f.Name)
		}
		return ok
	}

	if !warn(x509inspect.OIDSubjectAltName) && len(d.SubjectAltNames) > 0 {
		info("Subject Alternative Names (SANs): %s", strings.Join(d.SubjectAltNames, ", "))
	}
	if !warn(x509inspect.OIDExtendedKeyUsage) {
		for _, usage := range d.EnhancedKeyUsages {
			info("Enhanced Key Usage: %s", usage)
		}
	}
	if !warn(x509inspect.OIDKeyUsage) && len(d.KeyUsages) > 0 {
		info("Key Usage: %s", strings.Join(d.KeyUsages, ", "))
	}
	if !warn(x509inspect.OIDCertificatePolicies) && len(d.CertificatePolicies) > 0 {
		info("Certificate Policies: %s", strings.Join(d.CertificatePolicies, "; "))
	}

	if d.ChainVerified {
		info("Chain: trusted")
	} else {
		log.Info().Str("reason", d.ChainError).Msg("Chain: not trusted")
	}

	switch {
	case d.DaysUntilExpiry < 0:
		log.Error().Int("days", -d.DaysUntilExpiry).Msgf("Certificate expired on %s", d.NotAfter.Format(time.RFC3339))
	case r.warnDays >= 0 && d.DaysUntilExpiry <= r.warnDays:
		log.Warn().Int("days", d.DaysUntilExpiry).Msgf("Certificate expires within %d days", r.warnDays)
	}

	out.Status = StatusCertificate
	out.Details = &d
	out.Warnings = failures
	out.Record = rec
}
