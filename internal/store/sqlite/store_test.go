package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/catalog/fixture"
	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	repo, err := fixture.Default()
	require.NoError(t, err)
	doc := repo.Snapshot()
	require.NoError(t, s.Import(context.Background(), doc.Artists, doc.Releases))
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"artists", "releases", "tracks"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestImport_RoundTrip(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	artists, releases, tracks, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, artists)
	assert.Equal(t, 3, releases)
	assert.Equal(t, 7, tracks)

	repo, err := fixture.Default()
	require.NoError(t, err)

	want, err := repo.GetArtist(ctx, "synapse")
	require.NoError(t, err)
	got, err := s.GetArtist(ctx, "synapse")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.SocialLinks, got.SocialLinks)
	assert.Equal(t, want.AITools, got.AITools)
	assert.Equal(t, want.Releases, got.Releases)
	assert.True(t, want.JoinDate.Equal(got.JoinDate))
	assert.True(t, got.Featured)

	rel, err := s.GetRelease(ctx, "digital-dreams")
	require.NoError(t, err)
	assert.Equal(t, domain.ReleaseTypeAlbum, rel.Type)
	require.Len(t, rel.Tracks, 6)
	assert.Equal(t, "Boot Sequence", rel.Tracks[0].Title)
	assert.Equal(t, "Infinite Loop", rel.Tracks[5].Title)
	assert.Equal(t, "/api/placeholder/audio/preview6.mp3", rel.Tracks[0].Preview)
	assert.Equal(t, []string{"glitch", "neuro", "experimental", "ai"}, rel.Tags)
	assert.Equal(t, "Neural Nexus", rel.Credits["producer"])
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), rel.ReleaseDate.UTC())
}

func TestImport_KeepsSourceOrderAndDanglingReferences(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	artists, err := s.ListArtists(ctx)
	require.NoError(t, err)
	ids := make([]string, len(artists))
	for i, a := range artists {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"synapse", "algo-rhythm", "neural-nexus", "quantum-composer"}, ids)

	wave, err := s.GetRelease(ctx, "1st-wave")
	require.NoError(t, err)
	assert.Equal(t, "1", wave.ArtistID)
	assert.Empty(t, wave.Tracks)
}

func TestImport_Replaces(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.Import(ctx,
		[]*domain.Artist{{ID: "solo", Name: "Solo"}},
		[]*domain.Release{{ID: "one", Title: "One", Type: domain.ReleaseTypeEP, Tracks: []domain.Track{{Title: "A", Duration: "1:00", Explicit: true}}}},
	)
	require.NoError(t, err)

	artists, err := s.ListArtists(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Empty(t, artists[0].SocialLinks)
	assert.True(t, artists[0].JoinDate.IsZero())

	releases, err := s.ListReleases(ctx)
	require.NoError(t, err)
	require.Len(t, releases, 1)
	require.Len(t, releases[0].Tracks, 1)
	assert.True(t, releases[0].Tracks[0].Explicit)

	_, err = s.GetArtist(ctx, "synapse")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestImport_RollsBackOnDuplicate(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.Import(ctx, []*domain.Artist{{ID: "dup", Name: "A"}, {ID: "dup", Name: "B"}}, nil)
	require.Error(t, err)

	artists, _, _, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, artists)
}

func TestNotFound(t *testing.T) {
	s := seededStore(t)

	_, err := s.GetArtist(context.Background(), "nobody")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = s.GetRelease(context.Background(), "nothing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestStore_ServesCatalogService(t *testing.T) {
	svc := catalog.NewService(seededStore(t), nil)
	ctx := context.Background()

	releases, err := svc.ListReleases(ctx, catalog.ReleaseFilter{})
	require.NoError(t, err)
	require.Len(t, releases, 3)
	assert.Equal(t, "1st-wave", releases[0].ID)
	assert.Equal(t, "digital-dreams", releases[2].ID)

	found, err := svc.SearchArtists(ctx, "synth")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "synapse", found[0].ID)

	byArtist, err := svc.ListReleasesByArtist(ctx, "algo-rhythm")
	require.NoError(t, err)
	require.Len(t, byArtist, 1)
	assert.Len(t, byArtist[0].Tracks, 1)
}
