package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
)

// artistColumns is the ordered list of columns selected in artist queries.
// Must match the scan order in scanArtist.
const artistColumns = `id, name, genre, bio, image, social_links, ai_tools, release_ids,
	featured, join_date, location, website`

// releaseColumns is the ordered list of columns selected in release queries.
// Must match the scan order in scanRelease.
const releaseColumns = `id, title, artist_id, artist_name, type, genre, release_date,
	catalog_number, artwork, description, streaming_links, featured, tags, credits`

type scanner interface{ Scan(dest ...any) error }

func scanArtist(row scanner) (*domain.Artist, error) {
	var (
		a                                domain.Artist
		image, location, website         sql.NullString
		socialLinks, aiTools, releaseIDs string
		featured                         int
		joinDate                         sql.NullString
	)

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Genre,
		&a.Bio,
		&image,
		&socialLinks,
		&aiTools,
		&releaseIDs,
		&featured,
		&joinDate,
		&location,
		&website,
	)
	if err != nil {
		return nil, err
	}

	a.Image = image.String
	a.Location = location.String
	a.Website = website.String
	a.Featured = featured != 0

	if a.JoinDate, err = parseNullableTime(joinDate); err != nil {
		return nil, fmt.Errorf("artist %s join_date: %w", a.ID, err)
	}
	if err := decodeColumn(socialLinks, &a.SocialLinks); err != nil {
		return nil, fmt.Errorf("artist %s social_links: %w", a.ID, err)
	}
	if err := decodeColumn(aiTools, &a.AITools); err != nil {
		return nil, fmt.Errorf("artist %s ai_tools: %w", a.ID, err)
	}
	if err := decodeColumn(releaseIDs, &a.Releases); err != nil {
		return nil, fmt.Errorf("artist %s release_ids: %w", a.ID, err)
	}
	return &a, nil
}

func scanRelease(row scanner) (*domain.Release, error) {
	var (
		r                             domain.Release
		releaseType                   string
		releaseDate, artwork          sql.NullString
		streamingLinks, tags, credits string
		featured                      int
	)

	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.ArtistID,
		&r.ArtistName,
		&releaseType,
		&r.Genre,
		&releaseDate,
		&r.CatalogNumber,
		&artwork,
		&r.Description,
		&streamingLinks,
		&featured,
		&tags,
		&credits,
	)
	if err != nil {
		return nil, err
	}

	r.Type = domain.ReleaseType(releaseType)
	r.Artwork = artwork.String
	r.Featured = featured != 0

	if r.ReleaseDate, err = parseNullableTime(releaseDate); err != nil {
		return nil, fmt.Errorf("release %s release_date: %w", r.ID, err)
	}
	if err := decodeColumn(streamingLinks, &r.StreamingLinks); err != nil {
		return nil, fmt.Errorf("release %s streaming_links: %w", r.ID, err)
	}
	if err := decodeColumn(tags, &r.Tags); err != nil {
		return nil, fmt.Errorf("release %s tags: %w", r.ID, err)
	}
	if err := decodeColumn(credits, &r.Credits); err != nil {
		return nil, fmt.Errorf("release %s credits: %w", r.ID, err)
	}
	return &r, nil
}

// ListArtists returns every artist in import order.
func (s *Store) ListArtists(ctx context.Context) ([]*domain.Artist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artistColumns+` FROM artists ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	artists := make([]*domain.Artist, 0)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// GetArtist retrieves an artist by its ID.
func (s *Store) GetArtist(ctx context.Context, artistID string) (*domain.Artist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = ?`, artistID)

	a, err := scanArtist(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("artist %q not found", artistID)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListReleases returns every release in import order, tracks included.
func (s *Store) ListReleases(ctx context.Context) ([]*domain.Release, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+releaseColumns+` FROM releases ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	releases := make([]*domain.Release, 0)
	byID := make(map[string]*domain.Release)
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trackRows, err := s.db.QueryContext(ctx,
		`SELECT release_id, title, duration, explicit, preview FROM tracks ORDER BY release_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer trackRows.Close()

	for trackRows.Next() {
		var releaseID string
		t, err := scanTrack(trackRows, &releaseID)
		if err != nil {
			return nil, err
		}
		if r, ok := byID[releaseID]; ok {
			r.Tracks = append(r.Tracks, t)
		}
	}
	return releases, trackRows.Err()
}

// GetRelease retrieves a release by its ID, tracks included.
func (s *Store) GetRelease(ctx context.Context, releaseID string) (*domain.Release, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+releaseColumns+` FROM releases WHERE id = ?`, releaseID)

	r, err := scanRelease(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("release %q not found", releaseID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT release_id, title, duration, explicit, preview FROM tracks WHERE release_id = ? ORDER BY position`,
		releaseID)
	if err != nil {
		return nil, fmt.Errorf("get tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ignored string
		t, err := scanTrack(rows, &ignored)
		if err != nil {
			return nil, err
		}
		r.Tracks = append(r.Tracks, t)
	}
	return r, rows.Err()
}

func scanTrack(row scanner, releaseID *string) (domain.Track, error) {
	var (
		t        domain.Track
		explicit int
		preview  sql.NullString
	)
	if err := row.Scan(releaseID, &t.Title, &t.Duration, &explicit, &preview); err != nil {
		return domain.Track{}, err
	}
	t.Explicit = explicit != 0
	t.Preview = preview.String
	return t, nil
}

// Counts reports how many artists, releases and tracks are stored.
func (s *Store) Counts(ctx context.Context) (artists, releases, tracks int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM artists),
			(SELECT COUNT(*) FROM releases),
			(SELECT COUNT(*) FROM tracks)`).Scan(&artists, &releases, &tracks)
	return artists, releases, tracks, err
}
