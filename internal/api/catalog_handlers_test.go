package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/domain"
)

func artistIDs(artists []*domain.Artist) []string {
	ids := make([]string, len(artists))
	for i, a := range artists {
		ids[i] = a.ID
	}
	return ids
}

func releaseIDs(releases []*domain.Release) []string {
	ids := make([]string, len(releases))
	for i, r := range releases {
		ids[i] = r.ID
	}
	return ids
}

func TestListArtists(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/artists")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, CacheCatalog, resp.Header().Get("Cache-Control"))

	list := decodeData[ArtistListResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"synapse", "algo-rhythm", "neural-nexus", "quantum-composer"}, artistIDs(list.Artists))
}

func TestListArtists_Filters(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"featured", "?featured=true", []string{"synapse", "algo-rhythm", "neural-nexus"}},
		{"not featured", "?featured=false", []string{"quantum-composer"}},
		{"genre", "?genre=ambient%20ai", []string{"quantum-composer"}},
		{"limit", "?limit=2", []string{"synapse", "algo-rhythm"}},
		{"no match", "?genre=polka", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/artists" + tt.query)
			require.Equal(t, http.StatusOK, resp.Code)
			list := decodeData[ArtistListResponse](t, resp.Body.Bytes())
			assert.Equal(t, tt.want, artistIDs(list.Artists))
		})
	}
}

func TestListArtists_RejectsBadFeatured(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/artists?featured=maybe")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeError(t, resp.Body.Bytes()).Code)
}

func TestGetArtist(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/artists/neural-nexus")
	require.Equal(t, http.StatusOK, resp.Code)
	artist := decodeData[domain.Artist](t, resp.Body.Bytes())
	assert.Equal(t, "Neural Nexus", artist.Name)

	resp = ts.api.Get("/api/v1/artists/nobody")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body.Bytes()).Code)
}

func TestArtistStaticRoutes(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/artists/featured?limit=1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"synapse"}, artistIDs(decodeData[ArtistListResponse](t, resp.Body.Bytes()).Artists))

	resp = ts.api.Get("/api/v1/artists/search?q=NEXUS")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"neural-nexus"}, artistIDs(decodeData[ArtistListResponse](t, resp.Body.Bytes()).Artists))

	resp = ts.api.Get("/api/v1/artists/genres")
	require.Equal(t, http.StatusOK, resp.Code)
	genres := decodeData[ValuesResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"AI-driven Synthwave", "Ambient AI", "Hybrid Dubstep", "Neuro-Glitch"}, genres.Values)
}

func TestListArtistReleases(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/artists/algo-rhythm/releases")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeData[ReleaseListResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"quantum-drift"}, releaseIDs(list.Releases))

	resp = ts.api.Get("/api/v1/artists/nobody/releases")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListReleases_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/releases")
	require.Equal(t, http.StatusOK, resp.Code)

	list := decodeData[ReleaseListResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"1st-wave", "quantum-drift", "digital-dreams"}, releaseIDs(list.Releases))
}

func TestListReleases_Filters(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"type", "?type=single", []string{"quantum-drift"}},
		{"genre substring", "?genre=synthwave", []string{"1st-wave"}},
		{"artist substring", "?artist=neural", []string{"digital-dreams"}},
		{"limit after sort", "?limit=1", []string{"1st-wave"}},
		{"featured", "?featured=true", []string{"1st-wave", "quantum-drift", "digital-dreams"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/releases" + tt.query)
			require.Equal(t, http.StatusOK, resp.Code)
			list := decodeData[ReleaseListResponse](t, resp.Body.Bytes())
			assert.Equal(t, tt.want, releaseIDs(list.Releases))
		})
	}
}

func TestGetRelease(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/releases/digital-dreams")
	require.Equal(t, http.StatusOK, resp.Code)
	release := decodeData[domain.Release](t, resp.Body.Bytes())
	assert.Equal(t, "Neural Nexus", release.ArtistName)
	assert.Len(t, release.Tracks, 6)

	resp = ts.api.Get("/api/v1/releases/missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReleaseStaticRoutes(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/releases/types")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.ElementsMatch(t, []string{"Album", "LP", "Single"}, decodeData[ValuesResponse](t, resp.Body.Bytes()).Values)

	resp = ts.api.Get("/api/v1/releases/featured?limit=2")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData[ReleaseListResponse](t, resp.Body.Bytes()).Releases, 2)

	resp = ts.api.Get("/api/v1/releases/search?q=quantum")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, releaseIDs(decodeData[ReleaseListResponse](t, resp.Body.Bytes()).Releases), "quantum-drift")

	resp = ts.api.Get("/api/v1/releases/genres")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, decodeData[ValuesResponse](t, resp.Body.Bytes()).Values)
}

func TestCatalogMutators_NotImplemented(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	body := map[string]any{"name": "New Artist"}
	responses := map[string]int{
		"POST artists":     ts.api.Post("/api/v1/artists", body).Code,
		"PATCH artist":     ts.api.Patch("/api/v1/artists/synapse", body).Code,
		"DELETE artist":    ts.api.Delete("/api/v1/artists/synapse").Code,
		"POST releases":    ts.api.Post("/api/v1/releases", body).Code,
		"PATCH release":    ts.api.Patch("/api/v1/releases/quantum-drift", body).Code,
		"DELETE release":   ts.api.Delete("/api/v1/releases/quantum-drift").Code,
		"DELETE unknown":   ts.api.Delete("/api/v1/artists/nobody").Code,
		"PATCH no payload": ts.api.Patch("/api/v1/releases/anything").Code,
		"POST no payload":  ts.api.Post("/api/v1/artists").Code,
		"PATCH empty":      ts.api.Patch("/api/v1/artists/synapse").Code,
		"POST empty rel":   ts.api.Post("/api/v1/releases").Code,
	}
	for name, code := range responses {
		assert.Equal(t, http.StatusNotImplemented, code, name)
	}

	// The catalog is untouched.
	resp := ts.api.Get("/api/v1/artists")
	assert.Len(t, decodeData[ArtistListResponse](t, resp.Body.Bytes()).Artists, 4)
}

func TestListFeatures(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		ts := setupTestServer(t)
		defer ts.cleanup()

		resp := ts.api.Get("/api/v1/features")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decodeData[FeatureListResponse](t, resp.Body.Bytes()).Features)
	})

	t.Run("with source", func(t *testing.T) {
		ts := setupTestServer(t, withFeatures(staticFeatures{
			{ID: "f1", Headline: "Meet Synapse", ArtistID: "synapse"},
		}))
		defer ts.cleanup()

		resp := ts.api.Get("/api/v1/features")
		require.Equal(t, http.StatusOK, resp.Code)
		features := decodeData[FeatureListResponse](t, resp.Body.Bytes()).Features
		require.Len(t, features, 1)
		assert.Equal(t, "Meet Synapse", features[0].Headline)
	})
}
