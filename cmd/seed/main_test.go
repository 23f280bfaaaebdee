package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/cms"
	"github.com/trinestudio/trine-server/internal/store/sqlite"
)

func TestRun_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "catalog.db")
	var out bytes.Buffer

	err := run(context.Background(), options{target: targetSQLite, dbPath: dbPath}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Found 4 artists and 3 releases")
	assert.Contains(t, out.String(), "Imported 4 artists, 3 releases")

	db, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer db.Close()

	r, err := db.GetRelease(context.Background(), "digital-dreams")
	require.NoError(t, err)
	assert.Len(t, r.Tracks, 6)

	// Seeding twice replaces rather than duplicates.
	require.NoError(t, run(context.Background(), options{target: targetSQLite, dbPath: dbPath}, io.Discard))
	artists, releases, _, err := db.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, artists)
	assert.Equal(t, 3, releases)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), options{target: targetSQLite, dbPath: dbPath, dryRun: true}, &out))
	assert.Contains(t, out.String(), "Dry run")
	assert.NoFileExists(t, dbPath)
}

func TestRun_CMS(t *testing.T) {
	var mutations []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Mutations []map[string]any `json:"mutations"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mutations = body.Mutations
		_, _ = io.WriteString(w, `{"transactionId":"tx-1","results":[{"id":"a"},{"id":"b"}]}`)
	}))
	defer server.Close()

	var out bytes.Buffer
	err := run(context.Background(), options{
		target: targetCMS,
		cms: cms.Config{
			ProjectID:         "dawovvht",
			Dataset:           "production",
			Token:             "sk-test",
			BaseURL:           server.URL,
			RequestsPerSecond: 1000,
		},
	}, &out)
	require.NoError(t, err)
	assert.Len(t, mutations, 7)
	assert.Contains(t, out.String(), "transaction tx-1")
}

func TestRun_CMSRequiresToken(t *testing.T) {
	err := run(context.Background(), options{
		target: targetCMS,
		cms:    cms.Config{ProjectID: "dawovvht", Dataset: "production", BaseURL: "http://127.0.0.1:1"},
	}, io.Discard)
	require.Error(t, err)
}

func TestRun_UnknownTarget(t *testing.T) {
	err := run(context.Background(), options{target: "s3"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}
