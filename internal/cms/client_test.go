package cms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Config{
		ProjectID:         "dawovvht",
		Dataset:           "production",
		Token:             token,
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
	}, nil)
	require.NoError(t, err)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c, server
}

func TestNewClient_RequiresProjectAndDataset(t *testing.T) {
	_, err := NewClient(Config{Dataset: "production"}, nil)
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = NewClient(Config{ProjectID: "p"}, nil)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestQueryURL(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		prefix string
	}{
		{
			name:   "cdn",
			cfg:    Config{ProjectID: "dawovvht", Dataset: "production", UseCDN: true},
			prefix: "https://dawovvht.apicdn.sanity.io/v2023-07-25/data/query/production?",
		},
		{
			name:   "live api",
			cfg:    Config{ProjectID: "dawovvht", Dataset: "production"},
			prefix: "https://dawovvht.api.sanity.io/v2023-07-25/data/query/production?",
		},
		{
			name:   "explicit version with v prefix",
			cfg:    Config{ProjectID: "abc", Dataset: "staging", APIVersion: "v2021-10-21"},
			prefix: "https://abc.api.sanity.io/v2021-10-21/data/query/staging?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg, nil)
			require.NoError(t, err)

			got, err := c.QueryURL(`*[_type == $type]`, map[string]any{"type": "artist"})
			require.NoError(t, err)
			assert.Contains(t, got, tt.prefix)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, `*[_type == $type]`, u.Query().Get("query"))
			assert.Equal(t, `"artist"`, u.Query().Get("$type"))
		})
	}
}

func TestQuery_DecodesResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2023-07-25/data/query/production", r.URL.Path)
		_, _ = io.WriteString(w, `{"ms":3,"query":"*","result":[{"name":"Synapse"},{"name":"Neural Wave"}]}`)
	}, "")

	var got []struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.Query(context.Background(), `*[_type == "artist"]{name}`, nil, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Synapse", got[0].Name)
}

func TestQuery_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, `{"error":{"description":"upstream"}}`, http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"result":42}`)
	}, "")

	var n int
	require.NoError(t, c.Query(context.Background(), `count(*)`, nil, &n))
	assert.Equal(t, 42, n)
	assert.Equal(t, int32(3), hits.Load())
}

func TestQuery_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "")

	err := c.Query(context.Background(), `*`, nil, nil)
	assert.ErrorIs(t, err, errors.ErrTransportFailed)
	assert.Equal(t, int32(maxReadRetries+1), hits.Load())
}

func TestQuery_BadRequestIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"description":"expected ']' following expression"}}`)
	}, "")

	err := c.Query(context.Background(), `*[`, nil, nil)
	require.ErrorIs(t, err, errors.ErrValidation)
	assert.Contains(t, err.Error(), "expected ']'")
	assert.Equal(t, int32(1), hits.Load())
}

func TestQuery_InvalidJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}, "")

	_, err := c.Fetch(context.Background(), `*`, nil)
	assert.ErrorIs(t, err, errors.ErrTransportFailed)
}

func TestQuery_SendsToken(t *testing.T) {
	var auth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"result":null}`)
	}, "sk-secret")

	result, err := c.Fetch(context.Background(), `*[_id == "x"][0]`, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-secret", auth)
	assert.Equal(t, "null", result.Raw)
}

func TestMutate_RequiresToken(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) { hits.Add(1) }, "")

	_, err := c.Mutate(context.Background(), []Mutation{Delete("artist-1")})
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Zero(t, hits.Load())
}

func TestMutate_PostsTransaction(t *testing.T) {
	var body struct {
		Mutations     []map[string]any `json:"mutations"`
		TransactionID string           `json:"transactionId"`
	}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2023-07-25/data/mutate/production", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"transactionId":"tx-1","results":[{"id":"synapse","operation":"update"}]}`)
	}, "sk-secret")

	resp, err := c.Mutate(context.Background(), []Mutation{
		Patch("synapse", map[string]any{"genre": "Neuro-Glitch"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", resp.TransactionID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "update", resp.Results[0].Operation)

	require.Len(t, body.Mutations, 1)
	assert.Contains(t, body.Mutations[0], "patch")
	assert.NotEmpty(t, body.TransactionID)
}

func TestMutate_ServerErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, "sk-secret")

	_, err := c.Mutate(context.Background(), []Mutation{Delete("x")})
	assert.ErrorIs(t, err, errors.ErrTransportFailed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestMutate_UsesLiveAPIEvenWithCDN(t *testing.T) {
	c, err := NewClient(Config{ProjectID: "p", Dataset: "d", UseCDN: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://p.api.sanity.io/v2023-07-25", c.baseURL(false))
	assert.Equal(t, "https://p.apicdn.sanity.io/v2023-07-25", c.baseURL(c.cfg.UseCDN))
}

func TestPublish_ValidatesBeforeSending(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"transactionId":"tx","results":[]}`)
	}, "sk-secret")

	bad := map[string]any{"_id": "a", "_type": "artist", "name": "A", "label": "unknown"}
	_, err := c.Publish(context.Background(), bad)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Zero(t, hits.Load())

	_, err = c.Publish(context.Background(), map[string]any{"_id": "x", "_type": "playlist"})
	assert.ErrorIs(t, err, errors.ErrValidation)

	good := map[string]any{"_id": "a", "_type": "artist", "name": "A"}
	_, err = c.Publish(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestErrorDescription(t *testing.T) {
	assert.Equal(t, "bad query", errorDescription([]byte(`{"error":{"description":"bad query"}}`)))
	assert.Equal(t, "nope", errorDescription([]byte(`{"message":"nope"}`)))
	assert.Equal(t, "plain text", errorDescription([]byte("plain text\n")))
}
