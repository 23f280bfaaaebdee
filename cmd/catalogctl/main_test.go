package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/form"
	"github.com/trinestudio/trine-server/internal/store"
)

func runCLI(t *testing.T, dataPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{
		"--backend", "fixture",
		"--data-path", dataPath,
		"--env-file", filepath.Join(dataPath, "missing.env"),
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestArtistsTable(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "artists")
	require.NoError(t, err)

	for _, name := range []string{"Synapse", "Algo Rhythm", "Neural Nexus", "Quantum Composer"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "╭")
}

func TestArtistsFeaturedJSON(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--json", "artists", "--featured")
	require.NoError(t, err)

	var artists []*domain.Artist
	require.NoError(t, json.Unmarshal([]byte(out), &artists))
	require.Len(t, artists, 3)
	for _, a := range artists {
		assert.True(t, a.Featured, a.ID)
	}
}

func TestReleasesFilterByType(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--json", "releases", "--type", "single")
	require.NoError(t, err)

	var releases []*domain.Release
	require.NoError(t, json.Unmarshal([]byte(out), &releases))
	require.Len(t, releases, 1)
	assert.Equal(t, "quantum-drift", releases[0].ID)
}

func TestReleasesNoResults(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "releases", "--artist", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No results\n", out)
}

func TestGenres(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "genres")
	require.NoError(t, err)
	assert.Contains(t, out, "Ambient AI")
	assert.Contains(t, out, "release")
}

func TestSearch(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "search", "drift", "--type", "release")
	require.NoError(t, err)
	assert.Contains(t, out, "quantum-drift")
	assert.NotContains(t, out, "synapse")
}

func TestSearchRejectsUnknownType(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "search", "drift", "--type", "track")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestSchema(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "schema")
	require.NoError(t, err)
	for _, name := range []string{"artist", "release", "feature"} {
		assert.Contains(t, out, name)
	}

	out, err = runCLI(t, t.TempDir(), "schema", "release")
	require.NoError(t, err)
	assert.Contains(t, out, "reference")

	_, err = runCLI(t, t.TempDir(), "schema", "playlist")
	require.Error(t, err)
}

func TestDrafts(t *testing.T) {
	dataPath := t.TempDir()

	s, err := store.Open(store.Options{Path: filepath.Join(dataPath, "drafts")}, nil)
	require.NoError(t, err)
	snap := form.Snapshot{ID: "draft-1", State: form.StateStep2, Step: 2}
	snap.Submission.Identity.ArtistName = "Neural Nexus"
	require.NoError(t, s.SaveDraft(context.Background(), snap))
	require.NoError(t, s.Close())

	out, err := runCLI(t, dataPath, "drafts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "draft-1")
	assert.Contains(t, out, "Neural Nexus")

	out, err = runCLI(t, dataPath, "drafts", "delete", "draft-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted draft draft-1")

	out, err = runCLI(t, dataPath, "drafts", "list")
	require.NoError(t, err)
	assert.Equal(t, "No results\n", out)
}

func TestDraftsMissingStore(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "drafts", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no draft store")
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"x"}}, []columnAlignment{alignLeft, alignRight})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[3], "x")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestCloseShutsDownCleanly(t *testing.T) {
	ctx := newCommandContext()
	ctx.backend = "fixture"
	ctx.dataPath = t.TempDir()
	ctx.envFile = filepath.Join(ctx.dataPath, "missing.env")

	_, err := ctx.catalog()
	require.NoError(t, err)
	_, err = ctx.searchIndex()
	require.NoError(t, err)

	require.NoError(t, ctx.close())
	assert.Nil(t, ctx.injector)

	// Closing twice is harmless.
	require.NoError(t, ctx.close())
}
