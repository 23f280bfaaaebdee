// Package cms is a client for the headless content store that owns the
// label's published artists, releases and homepage features.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/trinestudio/trine-server/internal/errors"
)

const (
	userAgent         = "trine-server/1.0"
	defaultAPIVersion = "2023-07-25"
	defaultTimeout    = 10 * time.Second
	maxReadRetries    = 3
	maxErrorBody      = 4096
)

// Config identifies a content project and dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // date-based API version, e.g. 2023-07-25
	UseCDN     bool   // read through the edge cache; mutations never do
	Token      string // required for mutations and private datasets
	Timeout    time.Duration

	// BaseURL replaces https://{project}.api.sanity.io. Used by tests and
	// self-hosted proxies.
	BaseURL string
	// RequestsPerSecond caps outbound reads. Zero means 25/s with a burst of 10.
	RequestsPerSecond float64
}

// Client talks to the content store's HTTP API.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	newBackOff  func() backoff.BackOff
}

// NewClient creates a content client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" || strings.TrimSpace(cfg.Dataset) == "" {
		return nil, errors.Validation("cms: project ID and dataset are required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limit := rate.Limit(25)
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(limit, 10),
		logger:      logger,
		newBackOff:  defaultBackOff,
	}, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// baseURL returns the API root for reads (cdn=true) or writes.
func (c *Client) baseURL(cdn bool) string {
	if c.cfg.BaseURL != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/") + "/v" + c.cfg.APIVersion
	}
	host := "api"
	if cdn {
		host = "apicdn"
	}
	return fmt.Sprintf("https://%s.%s.sanity.io/v%s", c.cfg.ProjectID, host, c.cfg.APIVersion)
}

// QueryURL builds the GET URL for a GROQ query. Parameters are JSON encoded
// and passed as $name query arguments.
func (c *Client) QueryURL(groq string, params map[string]any) (string, error) {
	values := url.Values{}
	values.Set("query", groq)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode query param %q: %w", name, err)
		}
		values.Set("$"+strings.TrimPrefix(name, "$"), string(encoded))
	}
	return c.baseURL(c.cfg.UseCDN) + "/data/query/" + url.PathEscape(c.cfg.Dataset) + "?" + values.Encode(), nil
}

// Query runs a GROQ query and decodes its result into dest.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any, dest any) error {
	result, err := c.Fetch(ctx, groq, params)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(result.Raw), dest); err != nil {
		return errors.Wrap(err, errors.CodeTransportFailed, "cms: decode query result")
	}
	return nil
}

// Fetch runs a GROQ query and returns the raw result member. A query that
// matches nothing yields a result of type gjson.Null.
func (c *Client) Fetch(ctx context.Context, groq string, params map[string]any) (gjson.Result, error) {
	queryURL, err := c.QueryURL(groq, params)
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, errors.CodeValidation, "cms: invalid query parameters")
	}

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		if err := c.wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit: %w", err))
		}

		var retryable bool
		body, retryable, err = c.do(ctx, http.MethodGet, queryURL, nil)
		if err != nil && !retryable {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), maxReadRetries), ctx)
	notify := func(err error, next time.Duration) {
		c.logger.Warn("cms query failed, retrying", "attempt", attempt, "retry_in", next, "error", err)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return gjson.Result{}, err
		}
		return gjson.Result{}, errors.TransportFailed("cms query failed", err)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.TransportFailed("cms returned invalid JSON", nil)
	}
	result := gjson.GetBytes(body, "result")
	if !result.Exists() {
		return gjson.Result{}, errors.TransportFailed("cms response has no result", nil)
	}

	c.logger.Debug("cms query",
		"ms", gjson.GetBytes(body, "ms").Int(),
		"attempts", attempt,
	)
	return result, nil
}

// Mutation is one entry of a mutate request, e.g. {"create": {...}}.
type Mutation map[string]any

// Create creates a document; it fails if _id already exists.
func Create(doc map[string]any) Mutation { return Mutation{"create": doc} }

// CreateOrReplace writes doc under its _id.
func CreateOrReplace(doc map[string]any) Mutation { return Mutation{"createOrReplace": doc} }

// Patch sets fields on an existing document.
func Patch(docID string, set map[string]any) Mutation {
	return Mutation{"patch": map[string]any{"id": docID, "set": set}}
}

// Delete removes a document.
func Delete(docID string) Mutation { return Mutation{"delete": map[string]any{"id": docID}} }

// MutationResult describes the outcome of one mutation.
type MutationResult struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
}

// MutateResponse is the content store's reply to a mutate request.
type MutateResponse struct {
	TransactionID string           `json:"transactionId"`
	Results       []MutationResult `json:"results"`
}

// Mutate applies mutations in one transaction. Writes need a token, always
// bypass the CDN and are never retried.
func (c *Client) Mutate(ctx context.Context, mutations []Mutation) (*MutateResponse, error) {
	if c.cfg.Token == "" {
		return nil, errors.Validation("cms: mutations require an API token")
	}
	if len(mutations) == 0 {
		return nil, errors.Validation("cms: no mutations given")
	}

	payload, err := json.Marshal(map[string]any{
		"mutations":     mutations,
		"transactionId": uuid.NewString(),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "cms: encode mutations")
	}

	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	mutateURL := c.baseURL(false) + "/data/mutate/" + url.PathEscape(c.cfg.Dataset) + "?returnIds=true"
	body, _, err := c.do(ctx, http.MethodPost, mutateURL, payload)
	if err != nil {
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, errors.TransportFailed("cms mutation failed", err)
	}

	var resp MutateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.TransportFailed("cms: decode mutate response", err)
	}

	c.logger.Info("cms mutation applied", "transaction_id", resp.TransactionID, "results", len(resp.Results))
	return &resp, nil
}

// do performs one HTTP exchange. retryable reports whether a failure is
// worth another attempt (network errors, 429 and 5xx).
func (c *Client) do(ctx context.Context, method, target string, payload []byte) (body []byte, retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%s request: %w", strings.ToLower(method), err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, errors.RateLimited("cms rate limit exceeded")
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("cms returned %d: %s", resp.StatusCode, errorDescription(body))
	case resp.StatusCode == http.StatusBadRequest:
		return nil, false, errors.Validationf("cms rejected request: %s", errorDescription(body))
	default:
		return nil, false, errors.TransportFailed(
			fmt.Sprintf("cms returned %d: %s", resp.StatusCode, errorDescription(body)), nil)
	}
}

// errorDescription extracts the human-readable part of an error response.
func errorDescription(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.description", "message", "error"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String {
				return r.Str
			}
		}
	}
	return strings.TrimSpace(string(body))
}
