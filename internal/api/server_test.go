package api

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/catalog/fixture"
	"github.com/trinestudio/trine-server/internal/config"
	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/form"
	"github.com/trinestudio/trine-server/internal/search"
)

// testServer wraps a Server over the embedded fixture catalog.
type testServer struct {
	api     humatest.TestAPI
	server  *Server
	forms   *form.Manager
	sent    *recordingTransport
	cleanup func()
}

// recordingTransport captures form submissions instead of posting them.
type recordingTransport struct {
	mu      sync.Mutex
	records []url.Values
	err     error
}

func (r *recordingTransport) Send(_ context.Context, record url.Values) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *recordingTransport) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *recordingTransport) sentRecords() []url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]url.Values(nil), r.records...)
}

type testOption func(*config.Config, *Services)

func withSubmitRate(perMinute int) testOption {
	return func(cfg *config.Config, _ *Services) { cfg.Submission.RatePerMinute = perMinute }
}

func withFeatures(src FeatureSource) testOption {
	return func(_ *config.Config, svc *Services) { svc.Features = src }
}

func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	repo, err := fixture.Default()
	require.NoError(t, err)
	catalogSvc := catalog.NewService(repo, nil)

	ctx := context.Background()
	artists, err := repo.ListArtists(ctx)
	require.NoError(t, err)
	releases, err := repo.ListReleases(ctx)
	require.NoError(t, err)

	idx, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	require.NoError(t, idx.Reindex(artists, releases))

	transport := &recordingTransport{}
	forms := form.NewManager(form.ManagerConfig{}, transport, nil, nil)

	cfg := &config.Config{}
	cfg.Submission.RatePerMinute = 1000
	services := &Services{
		Catalog: catalogSvc,
		Forms:   forms,
		Search:  idx,
	}
	for _, opt := range opts {
		opt(cfg, services)
	}

	server := NewServer(cfg, services, nil)

	return &testServer{
		api:    humatest.Wrap(t, server.api),
		server: server,
		forms:  forms,
		sent:   transport,
		cleanup: func() {
			server.Close()
			forms.Close()
			_ = idx.Close()
		},
	}
}

// envelope mirrors APIEnvelope with a typed payload.
type envelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	require.True(t, env.Success, string(body))
	require.Equal(t, EnvelopeVersion, env.Version)
	return env.Data
}

func decodeError(t *testing.T, body []byte) APIErrorEnvelope {
	t.Helper()
	var env APIErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	require.False(t, env.Success)
	return env
}

type staticFeatures []domain.Feature

func (f staticFeatures) ListFeatures(context.Context) ([]domain.Feature, error) {
	return f, nil
}
