// Package catalog provides the read-only query surface over the label's
// artists and releases. The backing Repository may be the embedded fixture,
// a SQLite database, or the headless CMS; filtering, search and ordering
// live here so every backend behaves the same.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
)

// Repository is the storage contract a catalog backend implements.
// List methods return entities in source order. Get methods return
// errors.ErrNotFound for unknown identifiers.
type Repository interface {
	ListArtists(ctx context.Context) ([]*domain.Artist, error)
	GetArtist(ctx context.Context, id string) (*domain.Artist, error)
	ListReleases(ctx context.Context) ([]*domain.Release, error)
	GetRelease(ctx context.Context, id string) (*domain.Release, error)
}

// ArtistFilter narrows ListArtists. Zero values mean "no constraint".
type ArtistFilter struct {
	Genre    string // case-insensitive substring
	Featured *bool
	Limit    int
}

// ReleaseFilter narrows ListReleases. Zero values mean "no constraint".
type ReleaseFilter struct {
	Type     string // exact, case-insensitive
	Genre    string // case-insensitive substring
	Artist   string // case-insensitive substring of the artist name
	Featured *bool
	Limit    int
}

// Service answers catalog queries against a Repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a catalog service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// ListArtists returns artists matching filter in source order.
func (s *Service) ListArtists(ctx context.Context, filter ArtistFilter) ([]*domain.Artist, error) {
	artists, err := s.repo.ListArtists(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Artist, 0, len(artists))
	for _, a := range artists {
		if filter.Genre != "" && !containsFold(a.Genre, filter.Genre) {
			continue
		}
		if filter.Featured != nil && a.Featured != *filter.Featured {
			continue
		}
		result = append(result, a)
	}

	return truncate(result, filter.Limit), nil
}

// GetArtist returns one artist by exact identifier.
func (s *Service) GetArtist(ctx context.Context, id string) (*domain.Artist, error) {
	return s.repo.GetArtist(ctx, id)
}

// ListFeaturedArtists returns featured artists, at most limit when limit > 0.
func (s *Service) ListFeaturedArtists(ctx context.Context, limit int) ([]*domain.Artist, error) {
	featured := true
	return s.ListArtists(ctx, ArtistFilter{Featured: &featured, Limit: limit})
}

// SearchArtists matches query against name, genre and biography.
// An empty query matches every artist.
func (s *Service) SearchArtists(ctx context.Context, query string) ([]*domain.Artist, error) {
	artists, err := s.repo.ListArtists(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Artist, 0)
	for _, a := range artists {
		if anyContainsFold(query, a.Name, a.Genre, a.Bio) {
			result = append(result, a)
		}
	}
	s.logger.Debug("artist search", "query", query, "matches", len(result))
	return result, nil
}

// ListArtistGenres returns the distinct artist genres, sorted.
func (s *Service) ListArtistGenres(ctx context.Context) ([]string, error) {
	artists, err := s.repo.ListArtists(ctx)
	if err != nil {
		return nil, err
	}
	genres := make([]string, 0, len(artists))
	for _, a := range artists {
		genres = append(genres, a.Genre)
	}
	return distinctSorted(genres), nil
}

// ListReleases returns releases matching filter, newest first. The limit is
// applied after sorting so it always keeps the most recent releases.
func (s *Service) ListReleases(ctx context.Context, filter ReleaseFilter) ([]*domain.Release, error) {
	releases, err := s.repo.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Release, 0, len(releases))
	for _, r := range releases {
		if filter.Type != "" && !strings.EqualFold(string(r.Type), strings.TrimSpace(filter.Type)) {
			continue
		}
		if filter.Genre != "" && !containsFold(r.Genre, filter.Genre) {
			continue
		}
		if filter.Artist != "" && !containsFold(r.ArtistName, filter.Artist) {
			continue
		}
		if filter.Featured != nil && r.Featured != *filter.Featured {
			continue
		}
		result = append(result, r)
	}

	sortNewestFirst(result)
	return truncate(result, filter.Limit), nil
}

// GetRelease returns one release by exact identifier.
func (s *Service) GetRelease(ctx context.Context, id string) (*domain.Release, error) {
	return s.repo.GetRelease(ctx, id)
}

// ListFeaturedReleases returns featured releases newest first.
func (s *Service) ListFeaturedReleases(ctx context.Context, limit int) ([]*domain.Release, error) {
	featured := true
	return s.ListReleases(ctx, ReleaseFilter{Featured: &featured, Limit: limit})
}

// ListReleasesByArtist returns the releases whose artist identifier equals
// artistID in source order. An artist without releases yields an empty list.
func (s *Service) ListReleasesByArtist(ctx context.Context, artistID string) ([]*domain.Release, error) {
	releases, err := s.repo.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Release, 0)
	for _, r := range releases {
		if r.ArtistID == artistID {
			result = append(result, r)
		}
	}
	return result, nil
}

// SearchReleases matches query against title, artist name, genre,
// description and tags. Matches come back in source order.
func (s *Service) SearchReleases(ctx context.Context, query string) ([]*domain.Release, error) {
	releases, err := s.repo.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Release, 0)
	for _, r := range releases {
		fields := append([]string{r.Title, r.ArtistName, r.Genre, r.Description}, r.Tags...)
		if anyContainsFold(query, fields...) {
			result = append(result, r)
		}
	}
	s.logger.Debug("release search", "query", query, "matches", len(result))
	return result, nil
}

// ListReleaseTypes returns the distinct release types present, sorted.
func (s *Service) ListReleaseTypes(ctx context.Context) ([]string, error) {
	releases, err := s.repo.ListReleases(ctx)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(releases))
	for _, r := range releases {
		types = append(types, string(r.Type))
	}
	return distinctSorted(types), nil
}

// ListReleaseGenres returns the distinct release genres, sorted.
func (s *Service) ListReleaseGenres(ctx context.Context) ([]string, error) {
	releases, err := s.repo.ListReleases(ctx)
	if err != nil {
		return nil, err
	}
	genres := make([]string, 0, len(releases))
	for _, r := range releases {
		genres = append(genres, r.Genre)
	}
	return distinctSorted(genres), nil
}

// CreateArtist is not supported by any catalog backend yet.
func (s *Service) CreateArtist(_ context.Context, _ *domain.Artist) (*domain.Artist, error) {
	return nil, errors.NotImplemented("Artist creation not implemented yet")
}

// UpdateArtist is not supported by any catalog backend yet.
func (s *Service) UpdateArtist(_ context.Context, _ string, _ *domain.Artist) (*domain.Artist, error) {
	return nil, errors.NotImplemented("Artist update not implemented yet")
}

// DeleteArtist is not supported by any catalog backend yet.
func (s *Service) DeleteArtist(_ context.Context, _ string) error {
	return errors.NotImplemented("Artist deletion not implemented yet")
}

// CreateRelease is not supported by any catalog backend yet.
func (s *Service) CreateRelease(_ context.Context, _ *domain.Release) (*domain.Release, error) {
	return nil, errors.NotImplemented("Release creation not implemented yet")
}

// UpdateRelease is not supported by any catalog backend yet.
func (s *Service) UpdateRelease(_ context.Context, _ string, _ *domain.Release) (*domain.Release, error) {
	return nil, errors.NotImplemented("Release update not implemented yet")
}

// DeleteRelease is not supported by any catalog backend yet.
func (s *Service) DeleteRelease(_ context.Context, _ string) error {
	return errors.NotImplemented("Release deletion not implemented yet")
}

// fold case-folds s. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(fold(s), fold(strings.TrimSpace(substr)))
}

func anyContainsFold(query string, fields ...string) bool {
	q := fold(strings.TrimSpace(query))
	for _, f := range fields {
		if strings.Contains(fold(f), q) {
			return true
		}
	}
	return false
}

// sortNewestFirst orders by release date descending. Ties keep source order.
func sortNewestFirst(releases []*domain.Release) {
	slices.SortStableFunc(releases, func(a, b *domain.Release) int {
		return b.ReleaseDate.Compare(a.ReleaseDate)
	})
}

func distinctSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
