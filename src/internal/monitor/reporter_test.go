// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package monitor_test

import (
	"bufio"
	"bytes"
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/monitor"
	"github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/certtest"
	x509inspect "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/inspect"
	x509retriever "github.com/H0llyW00dzZ/tls-cert-monitor/src/internal/x509/retriever"
)

var checkTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return checkTime }

// fakeRetriever serves canned results keyed by endpoint.
type fakeRetriever struct {
	mu      sync.Mutex
	records map[string]*x509inspect.Record
	errs    map[string]error
	panics  map[string]any
	delay   func(endpoint string) time.Duration
	calls   []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeRetriever) Retrieve(ctx context.Context, endpoint string) (*x509inspect.Record, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	f.mu.Unlock()

	if f.delay != nil {
		time.Sleep(f.delay(endpoint))
	}
	if p, ok := f.panics[endpoint]; ok {
		panic(p)
	}
	if err := ctx.Err(); err != nil {
		return nil, &x509retriever.RetrievalError{Endpoint: endpoint, Err: err}
	}
	if err, ok := f.errs[endpoint]; ok {
		return nil, err
	}
	return f.records[endpoint], nil
}

func (f *fakeRetriever) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type logLine struct {
	Level    string `json:"level"`
	Message  string `json:"message"`
	Endpoint string `json:"endpoint"`
	Index    *int   `json:"index"`
	OID      string `json:"oid"`
	Error    string `json:"error"`
}

// captureLog returns a JSON logger and a function that parses what it wrote.
func captureLog(t *testing.T) (zerolog.Logger, func() []logLine) {
	t.Helper()

	var buf bytes.Buffer
	log := zerolog.New(zerolog.SyncWriter(&buf))

	return log, func() []logLine {
		var lines []logLine
		sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
		for sc.Scan() {
			var l logLine
			require.NoError(t, json.Unmarshal(sc.Bytes(), &l), "log line is not JSON: %s", sc.Text())
			lines = append(lines, l)
		}
		return lines
	}
}

func forEndpoint(lines []logLine, endpoint string) []logLine {
	var out []logLine
	for _, l := range lines {
		if l.Endpoint == endpoint {
			out = append(out, l)
		}
	}
	return out
}

func newRecord(t *testing.T, opts certtest.Options) *x509inspect.Record {
	t.Helper()

	issued := certtest.Generate(t, opts)
	rec, err := x509inspect.NewRecord(issued.Cert, x509inspect.ChainStatus{Error: "x509: certificate signed by unknown authority"})
	require.NoError(t, err)
	return rec
}

func validFor(days int) certtest.Options {
	return certtest.Options{
		NotBefore: checkTime.Add(-24 * time.Hour),
		NotAfter:  checkTime.Add(time.Duration(days)*24*time.Hour + time.Hour),
	}
}

func TestCheckAll_FieldOrder(t *testing.T) {
	opts := validFor(90)
	opts.CommonName = "order.test"
	opts.DNSNames = []string{"order.test", "www.order.test"}
	opts.KeyUsage = x509.KeyUsageDigitalSignature
	opts.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth}
	opts.Policies = []asn1.ObjectIdentifier{{2, 23, 140, 1, 2, 1}}

	const endpoint = "https://order.test"
	fake := &fakeRetriever{records: map[string]*x509inspect.Record{endpoint: newRecord(t, opts)}}
	log, lines := captureLog(t)

	outcomes, err := monitor.New(fake, log, monitor.WithClock(clock)).CheckAll(context.Background(), []string{endpoint})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	out := outcomes[0]
	assert.Equal(t, monitor.StatusCertificate, out.Status)
	assert.NoError(t, out.Err)
	assert.Empty(t, out.Warnings)
	require.NotNil(t, out.Details)
	assert.Equal(t, 90, out.Details.DaysUntilExpiry)
	assert.Equal(t, "order.test", out.Details.DisplayName)
	assert.NotNil(t, out.Record)

	expected := []string{
		"Checking certificate for: " + endpoint,
		"Issuer: ",
		"Subject: ",
		"Valid from: ",
		"Valid until: ",
		"Serial Number: ",
		"Thumbprint: ",
		"Thumbprint (SHA-256): " + out.Details.FingerprintSHA256,
		"Signature Algorithm: ECDSA-SHA256",
		"Public Key Algorithm: ECDSA",
		"Public Key: 04-",
		"Display Name: order.test",
		"Days until expiration: 90",
		"Subject Alternative Names (SANs): DNS:order.test, DNS:www.order.test",
		"Enhanced Key Usage: Server Authentication",
		"Enhanced Key Usage: Client Authentication",
		"Key Usage: DigitalSignature",
		"Certificate Policies: [1]Policy Identifier=2.23.140.1.2.1 (Domain Validated)",
		"Chain: not trusted",
	}

	got := forEndpoint(lines(), endpoint)
	require.Len(t, got, len(expected), "unexpected number of log lines")
	for i, prefix := range expected {
		assert.True(t, strings.HasPrefix(got[i].Message, prefix), "line %d: expected prefix %q, got %q", i, prefix, got[i].Message)
		assert.Equal(t, "info", got[i].Level, "line %d", i)
		require.NotNil(t, got[i].Index)
		assert.Equal(t, 0, *got[i].Index)
	}
}

func TestCheckAll_EmptyList(t *testing.T) {
	fake := &fakeRetriever{}
	log, lines := captureLog(t)

	outcomes, err := monitor.New(fake, log).CheckAll(context.Background(), nil)
	assert.ErrorIs(t, err, monitor.ErrNothingToCheck)
	assert.Nil(t, outcomes)
	assert.Empty(t, fake.called(), "no retrieval may happen")

	got := lines()
	require.Len(t, got, 1)
	assert.Equal(t, "error", got[0].Level)
	assert.Equal(t, "No URLs provided to check.", got[0].Message)
}

func TestCheckAll_FailureIsolation(t *testing.T) {
	retrievalErr := &x509retriever.RetrievalError{Endpoint: "https://down.test", Err: errors.New("connection refused")}
	fake := &fakeRetriever{
		records: map[string]*x509inspect.Record{
			"https://one.test":   newRecord(t, validFor(60)),
			"https://three.test": newRecord(t, validFor(60)),
		},
		errs: map[string]error{
			"https://down.test": retrievalErr,
			"http://plain.test": x509retriever.ErrNoCertificate,
		},
		panics: map[string]any{"https://boom.test": "index out of range"},
	}
	log, lines := captureLog(t)

	endpoints := []string{
		"https://one.test",
		"https://down.test",
		"   ",
		"https://boom.test",
		"http://plain.test",
		"https://three.test",
	}
	outcomes, err := monitor.New(fake, log, monitor.WithClock(clock)).CheckAll(context.Background(), endpoints)
	require.NoError(t, err)
	require.Len(t, outcomes, len(endpoints))

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Order and count preserved",
			testFunc: func(t *testing.T) {
				for i, out := range outcomes {
					assert.Equal(t, i, out.Index)
					assert.Equal(t, endpoints[i], out.Endpoint)
				}
			},
		},
		{
			name: "Healthy endpoints unaffected",
			testFunc: func(t *testing.T) {
				assert.Equal(t, monitor.StatusCertificate, outcomes[0].Status)
				assert.Equal(t, monitor.StatusCertificate, outcomes[5].Status)
				assert.Equal(t, 60, outcomes[5].Details.DaysUntilExpiry)
			},
		},
		{
			name: "Unreachable endpoint",
			testFunc: func(t *testing.T) {
				out := outcomes[1]
				assert.Equal(t, monitor.StatusNoCertificate, out.Status)
				assert.Nil(t, out.Details)

				var target *x509retriever.RetrievalError
				assert.ErrorAs(t, out.Err, &target)

				got := forEndpoint(lines(), "https://down.test")
				require.Len(t, got, 3)
				assert.Equal(t, "info", got[0].Level)
				assert.Equal(t, "error", got[1].Level)
				assert.Contains(t, got[1].Error, "connection refused")
				assert.Equal(t, "warn", got[2].Level)
				assert.Equal(t, "No certificate retrieved for https://down.test.", got[2].Message)
			},
		},
		{
			name: "Blank endpoint is skipped",
			testFunc: func(t *testing.T) {
				out := outcomes[2]
				assert.Equal(t, monitor.StatusFailed, out.Status)
				assert.ErrorIs(t, out.Err, x509retriever.ErrEmptyEndpoint)
				assert.NotContains(t, fake.called(), "   ")
			},
		},
		{
			name: "Panic is recovered",
			testFunc: func(t *testing.T) {
				out := outcomes[3]
				assert.Equal(t, monitor.StatusFailed, out.Status)
				assert.ErrorIs(t, out.Err, monitor.ErrUnexpected)
				assert.Contains(t, out.Err.Error(), "index out of range")

				got := forEndpoint(lines(), "https://boom.test")
				require.NotEmpty(t, got)
				last := got[len(got)-1]
				assert.Equal(t, "error", last.Level)
				assert.Contains(t, last.Error, "index out of range")
			},
		},
		{
			name: "Plain HTTP endpoint has no certificate",
			testFunc: func(t *testing.T) {
				out := outcomes[4]
				assert.Equal(t, monitor.StatusNoCertificate, out.Status)
				assert.ErrorIs(t, out.Err, x509retriever.ErrNoCertificate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestCheckAll_NilRecordWithoutError(t *testing.T) {
	fake := &fakeRetriever{records: map[string]*x509inspect.Record{}}
	log, _ := captureLog(t)

	outcomes, err := monitor.New(fake, log).CheckAll(context.Background(), []string{"https://nothing.test"})
	require.NoError(t, err)
	assert.Equal(t, monitor.StatusNoCertificate, outcomes[0].Status)
	assert.ErrorIs(t, outcomes[0].Err, x509retriever.ErrNoCertificate)
}

func TestCheckAll_MalformedExtension(t *testing.T) {
	opts := validFor(120)
	opts.DNSNames = []string{"broken.test"}
	opts.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	issued := certtest.Generate(t, opts)

	// Replace the SAN value with a truncated SEQUENCE.
	clone := *issued.Cert
	clone.Extensions = nil
	for _, ext := range issued.Cert.Extensions {
		if ext.Id.String() == x509inspect.OIDSubjectAltName {
			ext = pkix.Extension{Id: ext.Id, Value: []byte{0x30, 0x05, 0x82}}
		}
		clone.Extensions = append(clone.Extensions, ext)
	}
	rec, err := x509inspect.NewRecord(&clone, x509inspect.ChainStatus{})
	require.NoError(t, err)

	const endpoint = "https://broken.test"
	fake := &fakeRetriever{records: map[string]*x509inspect.Record{endpoint: rec}}
	log, lines := captureLog(t)

	outcomes, err := monitor.New(fake, log, monitor.WithClock(clock)).CheckAll(context.Background(), []string{endpoint})
	require.NoError(t, err)

	out := outcomes[0]
	assert.Equal(t, monitor.StatusCertificate, out.Status, "a corrupt extension must not fail the endpoint")
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, x509inspect.OIDSubjectAltName, out.Warnings[0].OID)
	assert.ErrorIs(t, out.Warnings[0], x509inspect.ErrMalformedExtension)
	assert.Nil(t, out.Details.SubjectAltNames)
	assert.Equal(t, []string{"Server Authentication"}, out.Details.EnhancedKeyUsages)
	assert.NotEmpty(t, out.Details.Issuer)

	var warned bool
	for _, l := range forEndpoint(lines(), endpoint) {
		if l.Level == "warn" && l.Message == "Failed to parse Subject Alternative Names." {
			warned = true
			assert.Equal(t, x509inspect.OIDSubjectAltName, l.OID)
		}
		assert.NotContains(t, l.Message, "Subject Alternative Names (SANs):")
	}
	assert.True(t, warned, "expected a warning for the corrupt SAN extension")
}

func TestCheckAll_Expiry(t *testing.T) {
	tests := []struct {
		name        string
		opts        certtest.Options
		warnDays    int
		expectDays  int
		expectLevel string
		expectMsg   string
	}{
		{
			name: "Expired",
			opts: certtest.Options{
				NotBefore: checkTime.Add(-30 * 24 * time.Hour),
				NotAfter:  checkTime.Add(-5*24*time.Hour - time.Hour),
			},
			warnDays:    monitor.DefaultWarnDays,
			expectDays:  -6,
			expectLevel: "error",
			expectMsg:   "Certificate expired on",
		},
		{
			name:        "Within warning window",
			opts:        validFor(10),
			warnDays:    monitor.DefaultWarnDays,
			expectDays:  10,
			expectLevel: "warn",
			expectMsg:   "Certificate expires within 30 days",
		},
		{
			name:       "Warning disabled",
			opts:       validFor(10),
			warnDays:   -1,
			expectDays: 10,
		},
		{
			name:       "Outside warning window",
			opts:       validFor(45),
			warnDays:   monitor.DefaultWarnDays,
			expectDays: 45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const endpoint = "https://expiry.test"
			fake := &fakeRetriever{records: map[string]*x509inspect.Record{endpoint: newRecord(t, tt.opts)}}
			log, lines := captureLog(t)

			r := monitor.New(fake, log, monitor.WithClock(clock), monitor.WithWarnDays(tt.warnDays))
			outcomes, err := r.CheckAll(context.Background(), []string{endpoint})
			require.NoError(t, err)

			out := outcomes[0]
			assert.Equal(t, monitor.StatusCertificate, out.Status)
			assert.Equal(t, tt.expectDays, out.Details.DaysUntilExpiry)
			assert.Equal(t, tt.expectDays < 0, out.Expired())

			got := forEndpoint(lines(), endpoint)
			last := got[len(got)-1]
			if tt.expectLevel == "" {
				assert.Equal(t, "info", last.Level, "no expiry notice expected, got %q", last.Message)
				return
			}
			assert.Equal(t, tt.expectLevel, last.Level)
			assert.True(t, strings.HasPrefix(last.Message, tt.expectMsg), "got %q", last.Message)
		})
	}
}

func TestCheckAll_Concurrency(t *testing.T) {
	const n = 12
	records := make(map[string]*x509inspect.Record, n)
	endpoints := make([]string, n)
	rec := newRecord(t, validFor(90))
	for i := range endpoints {
		endpoints[i] = "https://host" + strings.Repeat("x", i) + ".test"
		records[endpoints[i]] = rec
	}

	tests := []struct {
		name        string
		concurrency int
		expectMax   int32
	}{
		{name: "Sequential by default", concurrency: 0, expectMax: 1},
		{name: "Bounded pool", concurrency: 4, expectMax: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRetriever{
				records: records,
				// Later endpoints finish first.
				delay: func(endpoint string) time.Duration {
					return time.Duration(n-len(endpoint)+len("https://host.test")) * time.Millisecond
				},
			}
			log, _ := captureLog(t)

			outcomes, err := monitor.New(fake, log, monitor.WithConcurrency(tt.concurrency)).CheckAll(context.Background(), endpoints)
			require.NoError(t, err)
			require.Len(t, outcomes, n)

			for i, out := range outcomes {
				assert.Equal(t, i, out.Index)
				assert.Equal(t, endpoints[i], out.Endpoint)
				assert.Equal(t, monitor.StatusCertificate, out.Status)
			}
			assert.LessOrEqual(t, fake.maxInFlight.Load(), tt.expectMax)
			if tt.expectMax == 1 {
				assert.Equal(t, endpoints, fake.called(), "sequential checks run in input order")
			}
		})
	}
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeRetriever{records: map[string]*x509inspect.Record{"https://a.test": newRecord(t, validFor(90))}}
	log, _ := captureLog(t)

	outcomes, err := monitor.New(fake, log).CheckAll(ctx, []string{"https://a.test"})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 1)
	assert.Equal(t, monitor.StatusNoCertificate, outcomes[0].Status)
}

func TestReport(t *testing.T) {
	log, lines := captureLog(t)
	r := monitor.New(nil, log, monitor.WithClock(clock))

	t.Run("Record from file", func(t *testing.T) {
		out := r.Report("leaf.pem", newRecord(t, validFor(90)))
		assert.Equal(t, monitor.StatusCertificate, out.Status)
		assert.Equal(t, "leaf.pem", out.Endpoint)
		require.NotNil(t, out.Details)
		assert.Equal(t, 90, out.Details.DaysUntilExpiry)

		got := forEndpoint(lines(), "leaf.pem")
		require.NotEmpty(t, got)
		assert.Equal(t, "Checking certificate for: leaf.pem", got[0].Message)
	})

	t.Run("Nil record is recovered", func(t *testing.T) {
		out := r.Report("missing.pem", nil)
		assert.Equal(t, monitor.StatusFailed, out.Status)
		assert.ErrorIs(t, out.Err, monitor.ErrUnexpected)
		assert.Nil(t, out.Details)
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "certificate", monitor.StatusCertificate.String())
	assert.Equal(t, "no-certificate", monitor.StatusNoCertificate.String())
	assert.Equal(t, "failed", monitor.StatusFailed.String())
	assert.Equal(t, "unknown", monitor.Status(42).String())
}
