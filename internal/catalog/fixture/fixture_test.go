package fixture

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	repo, err := Default()
	require.NoError(t, err)

	ctx := context.Background()
	artists, err := repo.ListArtists(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 4)
	assert.Equal(t, []string{"synapse", "algo-rhythm", "neural-nexus", "quantum-composer"},
		[]string{artists[0].ID, artists[1].ID, artists[2].ID, artists[3].ID})

	releases, err := repo.ListReleases(ctx)
	require.NoError(t, err)
	require.Len(t, releases, 3)

	synapse, err := repo.GetArtist(ctx, "synapse")
	require.NoError(t, err)
	assert.Equal(t, "AI-driven Synthwave", synapse.Genre)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), synapse.JoinDate.UTC())
	assert.Equal(t, []string{"AIVA", "Amper Music", "Custom Neural Networks"}, synapse.AITools)

	dreams, err := repo.GetRelease(ctx, "digital-dreams")
	require.NoError(t, err)
	assert.Equal(t, domain.ReleaseTypeAlbum, dreams.Type)
	require.Len(t, dreams.Tracks, 6)
	assert.Equal(t, "Consciousness.exe", dreams.Tracks[4].Title)
	assert.Equal(t, "7:45", dreams.Tracks[4].Duration)
}

func TestDefault_KeepsDanglingArtistReference(t *testing.T) {
	repo, err := Default()
	require.NoError(t, err)

	wave, err := repo.GetRelease(context.Background(), "1st-wave")
	require.NoError(t, err)
	assert.Equal(t, "1", wave.ArtistID)

	_, err = repo.GetArtist(context.Background(), wave.ArtistID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRepository_NotFound(t *testing.T) {
	repo, err := Default()
	require.NoError(t, err)

	_, err = repo.GetArtist(context.Background(), "nobody")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = repo.GetRelease(context.Background(), "nothing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo, err := Default()
	require.NoError(t, err)
	ctx := context.Background()

	a, err := repo.GetArtist(ctx, "synapse")
	require.NoError(t, err)
	a.Name = "Mutated"
	a.AITools[0] = "Mutated"

	again, err := repo.GetArtist(ctx, "synapse")
	require.NoError(t, err)
	assert.Equal(t, "Synapse", again.Name)
	assert.Equal(t, "AIVA", again.AITools[0])

	list, err := repo.ListReleases(ctx)
	require.NoError(t, err)
	list[0].Tags = nil

	rel, err := repo.GetRelease(ctx, list[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, rel.Tags)
}

func TestLoad_RejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "duplicate artist",
			doc:  "artists:\n  - id: a\n  - id: a\n",
			want: "duplicate artist",
		},
		{
			name: "missing release id",
			doc:  "releases:\n  - title: Untitled\n    type: EP\n",
			want: "release without id",
		},
		{
			name: "unknown release type",
			doc:  "releases:\n  - id: r\n    type: Cassette\n",
			want: "unknown type",
		},
		{
			name: "unknown field",
			doc:  "artists:\n  - id: a\n    colour: teal\n",
			want: "decode fixture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_EmptyPathUsesEmbedded(t *testing.T) {
	repo, err := LoadFile("")
	require.NoError(t, err)
	assert.Len(t, repo.Snapshot().Artists, 4)

	_, err = LoadFile(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}
