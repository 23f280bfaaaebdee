package form

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "trine-server/1.0"

// DefaultFormName is the discriminator the form backend files submissions under.
const DefaultFormName = "artist-submission"

// Transport hands a flattened submission record to the external form backend.
// Implementations make exactly one attempt per call.
type Transport interface {
	Send(ctx context.Context, record url.Values) error
}

// TransportConfig configures NewTransport.
type TransportConfig struct {
	Endpoint string
	FormName string
	Timeout  time.Duration
}

// NewTransport returns an HTTP transport when an endpoint is configured and a
// logging transport otherwise.
func NewTransport(cfg TransportConfig, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return &LogTransport{logger: logger}
	}

	formName := strings.TrimSpace(cfg.FormName)
	if formName == "" {
		formName = DefaultFormName
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &HTTPTransport{
		endpoint: endpoint,
		formName: formName,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// HTTPTransport posts the record as application/x-www-form-urlencoded.
type HTTPTransport struct {
	endpoint string
	formName string
	client   *http.Client
	logger   *slog.Logger
}

// Send posts the record once. Any non-2xx status is a failure.
func (t *HTTPTransport) Send(ctx context.Context, record url.Values) error {
	body := url.Values{}
	body.Set("form-name", t.formName)
	for k, vs := range record {
		for _, v := range vs {
			body.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(body.Encode()))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	t.logger.Debug("submission posted",
		"endpoint", t.endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("form backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogTransport accepts every record and only logs it. Used in development
// when no form backend is configured.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a logging transport.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogTransport{logger: logger}
}

// Send logs the record's artist and filled field count.
func (t *LogTransport) Send(ctx context.Context, record url.Values) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filled := 0
	for _, vs := range record {
		if len(vs) > 0 && vs[0] != "" && vs[0] != "false" {
			filled++
		}
	}
	t.logger.Info("submission accepted by log transport",
		"artist", record.Get("artistName"),
		"email", record.Get("contactEmail"),
		"fields", filled,
	)
	return nil
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, record url.Values) error

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, record url.Values) error {
	return f(ctx, record)
}
