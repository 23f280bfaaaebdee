package sqlite

import (
	"context"
	"fmt"

	"github.com/trinestudio/trine-server/internal/domain"
)

// Import replaces the stored catalog with the given artists and releases in
// a single transaction. Slice order becomes the catalog's source order.
func (s *Store) Import(ctx context.Context, artists []*domain.Artist, releases []*domain.Release) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range []string{`DELETE FROM tracks`, `DELETE FROM releases`, `DELETE FROM artists`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}

	artistStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artists (
			id, position, name, genre, bio, image, social_links, ai_tools, release_ids,
			featured, join_date, location, website
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare artist insert: %w", err)
	}
	defer artistStmt.Close()

	for i, a := range artists {
		socialLinks, err := jsonColumn(a.SocialLinks, "{}")
		if err != nil {
			return fmt.Errorf("artist %s: %w", a.ID, err)
		}
		aiTools, err := jsonColumn(a.AITools, "[]")
		if err != nil {
			return fmt.Errorf("artist %s: %w", a.ID, err)
		}
		releaseIDs, err := jsonColumn(a.Releases, "[]")
		if err != nil {
			return fmt.Errorf("artist %s: %w", a.ID, err)
		}

		_, err = artistStmt.ExecContext(ctx,
			a.ID, i, a.Name, a.Genre, a.Bio, nullString(a.Image),
			socialLinks, aiTools, releaseIDs,
			boolToInt(a.Featured), nullTimeString(a.JoinDate),
			nullString(a.Location), nullString(a.Website),
		)
		if err != nil {
			return fmt.Errorf("insert artist %s: %w", a.ID, err)
		}
	}

	releaseStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO releases (
			id, position, title, artist_id, artist_name, type, genre, release_date,
			catalog_number, artwork, description, streaming_links, featured, tags, credits
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare release insert: %w", err)
	}
	defer releaseStmt.Close()

	trackStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (release_id, position, title, duration, explicit, preview)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare track insert: %w", err)
	}
	defer trackStmt.Close()

	for i, r := range releases {
		streamingLinks, err := jsonColumn(r.StreamingLinks, "{}")
		if err != nil {
			return fmt.Errorf("release %s: %w", r.ID, err)
		}
		tags, err := jsonColumn(r.Tags, "[]")
		if err != nil {
			return fmt.Errorf("release %s: %w", r.ID, err)
		}
		credits, err := jsonColumn(r.Credits, "{}")
		if err != nil {
			return fmt.Errorf("release %s: %w", r.ID, err)
		}

		_, err = releaseStmt.ExecContext(ctx,
			r.ID, i, r.Title, r.ArtistID, r.ArtistName, string(r.Type), r.Genre,
			nullTimeString(r.ReleaseDate), r.CatalogNumber, nullString(r.Artwork),
			r.Description, streamingLinks, boolToInt(r.Featured), tags, credits,
		)
		if err != nil {
			return fmt.Errorf("insert release %s: %w", r.ID, err)
		}

		for j, t := range r.Tracks {
			_, err := trackStmt.ExecContext(ctx,
				r.ID, j, t.Title, t.Duration, boolToInt(t.Explicit), nullString(t.Preview))
			if err != nil {
				return fmt.Errorf("insert track %d of %s: %w", j+1, r.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	s.logger.Info("Catalog imported", "artists", len(artists), "releases", len(releases))
	return nil
}
