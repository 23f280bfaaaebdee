// Package fixture serves the catalog from a static YAML document, either the
// one embedded in the binary or a file supplied at startup. The data is
// loaded once and never mutated; every read hands out deep copies.
package fixture

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
)

//go:embed catalog.yaml
var embedded []byte

// Document is the on-disk shape of a catalog fixture.
type Document struct {
	Artists  []*domain.Artist  `yaml:"artists"`
	Releases []*domain.Release `yaml:"releases"`
}

// Repository is an immutable in-memory catalog.
type Repository struct {
	artists   []*domain.Artist
	releases  []*domain.Release
	artistIx  map[string]int
	releaseIx map[string]int
}

// Default returns the repository backed by the embedded catalog.
func Default() (*Repository, error) {
	return Load(bytes.NewReader(embedded))
}

// LoadFile reads a fixture from path. An empty path selects the embedded catalog.
func LoadFile(path string) (*Repository, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a fixture document.
func Load(r io.Reader) (*Repository, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return New(doc.Artists, doc.Releases)
}

// New builds a repository from already-decoded entities. Identifiers must be
// unique per collection and release types must be known. Release artist
// references are not checked.
func New(artists []*domain.Artist, releases []*domain.Release) (*Repository, error) {
	repo := &Repository{
		artistIx:  make(map[string]int, len(artists)),
		releaseIx: make(map[string]int, len(releases)),
	}

	for _, a := range artists {
		if a == nil || a.ID == "" {
			return nil, fmt.Errorf("fixture: artist without id")
		}
		if _, dup := repo.artistIx[a.ID]; dup {
			return nil, fmt.Errorf("fixture: duplicate artist id %q", a.ID)
		}
		repo.artistIx[a.ID] = len(repo.artists)
		repo.artists = append(repo.artists, a.Clone())
	}

	for _, r := range releases {
		if r == nil || r.ID == "" {
			return nil, fmt.Errorf("fixture: release without id")
		}
		if _, dup := repo.releaseIx[r.ID]; dup {
			return nil, fmt.Errorf("fixture: duplicate release id %q", r.ID)
		}
		if !r.Type.Valid() {
			return nil, fmt.Errorf("fixture: release %q has unknown type %q", r.ID, r.Type)
		}
		repo.releaseIx[r.ID] = len(repo.releases)
		repo.releases = append(repo.releases, r.Clone())
	}

	return repo, nil
}

// ListArtists returns every artist in document order.
func (r *Repository) ListArtists(_ context.Context) ([]*domain.Artist, error) {
	out := make([]*domain.Artist, len(r.artists))
	for i, a := range r.artists {
		out[i] = a.Clone()
	}
	return out, nil
}

// GetArtist returns the artist with the given id.
func (r *Repository) GetArtist(_ context.Context, id string) (*domain.Artist, error) {
	i, ok := r.artistIx[id]
	if !ok {
		return nil, errors.NotFoundf("artist %q not found", id)
	}
	return r.artists[i].Clone(), nil
}

// ListReleases returns every release in document order.
func (r *Repository) ListReleases(_ context.Context) ([]*domain.Release, error) {
	out := make([]*domain.Release, len(r.releases))
	for i, rel := range r.releases {
		out[i] = rel.Clone()
	}
	return out, nil
}

// GetRelease returns the release with the given id.
func (r *Repository) GetRelease(_ context.Context, id string) (*domain.Release, error) {
	i, ok := r.releaseIx[id]
	if !ok {
		return nil, errors.NotFoundf("release %q not found", id)
	}
	return r.releases[i].Clone(), nil
}

// Snapshot returns a copy of the whole document, used by the seed command.
func (r *Repository) Snapshot() Document {
	artists, _ := r.ListArtists(context.Background())
	releases, _ := r.ListReleases(context.Background())
	return Document{Artists: artists, Releases: releases}
}
