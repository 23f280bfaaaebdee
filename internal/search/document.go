// Package search provides ranked full-text search across the catalog using
// Bleve. Artists and releases share one index and are told apart by type.
package search

import (
	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/genre"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeArtist  DocType = "artist"
	DocTypeRelease DocType = "release"
)

// SearchDocument is the unified document structure for the Bleve index.
//
// Release documents carry the artist's display name so a single query
// finds "Digital Dreams" when the user types "neural nexus".
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Artist: name, Release: title
	Name string `json:"name"`

	ArtistID    string `json:"artist_id,omitempty"`
	ArtistName  string `json:"artist_name,omitempty"`
	Description string `json:"description,omitempty"` // bio for artists
	Genre       string `json:"genre,omitempty"`
	Location    string `json:"location,omitempty"`

	GenreSlugs  []string `json:"genre_slugs,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AITools     []string `json:"ai_tools,omitempty"`
	TrackTitles []string `json:"track_titles,omitempty"`

	ReleaseType string `json:"release_type,omitempty"`
	Featured    bool   `json:"featured"`

	// Release date for releases, join date for artists. Unix millis.
	Date int64 `json:"date,omitempty"`
	Year int   `json:"year,omitempty"`
}

// Key is the index key. Artist and release IDs live in separate namespaces
// upstream, so the type is part of the key.
func (d *SearchDocument) Key() string {
	return string(d.Type) + ":" + d.ID
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":       d.ID,
		"type":     string(d.Type),
		"name":     d.Name,
		"featured": d.Featured,
	}

	if d.ArtistID != "" {
		m["artist_id"] = d.ArtistID
	}
	if d.ArtistName != "" {
		m["artist_name"] = d.ArtistName
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.Location != "" {
		m["location"] = d.Location
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.AITools) > 0 {
		m["ai_tools"] = d.AITools
	}
	if len(d.TrackTitles) > 0 {
		m["track_titles"] = d.TrackTitles
	}
	if d.ReleaseType != "" {
		m["release_type"] = d.ReleaseType
	}
	if d.Date != 0 {
		m["date"] = d.Date
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}

	return m
}

// ArtistToSearchDocument converts a domain Artist to a SearchDocument.
func ArtistToSearchDocument(a *domain.Artist) *SearchDocument {
	doc := &SearchDocument{
		ID:          a.ID,
		Type:        DocTypeArtist,
		Name:        a.Name,
		Description: a.Bio,
		Genre:       a.Genre,
		Location:    a.Location,
		GenreSlugs:  genre.NormalizeToSlugs(a.Genre),
		AITools:     a.AITools,
		Featured:    a.Featured,
	}
	if !a.JoinDate.IsZero() {
		doc.Date = a.JoinDate.UnixMilli()
		doc.Year = a.JoinDate.Year()
	}
	return doc
}

// ReleaseToSearchDocument converts a domain Release to a SearchDocument.
func ReleaseToSearchDocument(r *domain.Release) *SearchDocument {
	doc := &SearchDocument{
		ID:          r.ID,
		Type:        DocTypeRelease,
		Name:        r.Title,
		ArtistID:    r.ArtistID,
		ArtistName:  r.ArtistName,
		Description: r.Description,
		Genre:       r.Genre,
		GenreSlugs:  genre.NormalizeToSlugs(r.Genre),
		Tags:        r.Tags,
		ReleaseType: string(r.Type),
		Featured:    r.Featured,
	}
	for _, t := range r.Tracks {
		doc.TrackTitles = append(doc.TrackTitles, t.Title)
	}
	if !r.ReleaseDate.IsZero() {
		doc.Date = r.ReleaseDate.UnixMilli()
		doc.Year = r.ReleaseDate.Year()
	}
	return doc
}
