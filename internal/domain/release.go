package domain

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ReleaseType classifies a release by format.
type ReleaseType string

// Known release types.
const (
	ReleaseTypeSingle      ReleaseType = "Single"
	ReleaseTypeEP          ReleaseType = "EP"
	ReleaseTypeLP          ReleaseType = "LP"
	ReleaseTypeAlbum       ReleaseType = "Album"
	ReleaseTypeCompilation ReleaseType = "Compilation"
)

// ReleaseTypes lists every release type in display order.
func ReleaseTypes() []ReleaseType {
	return []ReleaseType{
		ReleaseTypeSingle,
		ReleaseTypeEP,
		ReleaseTypeLP,
		ReleaseTypeAlbum,
		ReleaseTypeCompilation,
	}
}

// ParseReleaseType resolves a release type case-insensitively.
func ParseReleaseType(s string) (ReleaseType, error) {
	for _, t := range ReleaseTypes() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown release type %q", s)
}

// Valid reports whether t is a known release type.
func (t ReleaseType) Valid() bool {
	_, err := ParseReleaseType(string(t))
	return err == nil
}

// Release is a published single, EP, LP, album or compilation.
type Release struct {
	ID             string            `json:"id" yaml:"id"`
	Title          string            `json:"title" yaml:"title"`
	ArtistID       string            `json:"artistId" yaml:"artistId"`
	ArtistName     string            `json:"artist" yaml:"artist"` // denormalized display name
	Type           ReleaseType       `json:"type" yaml:"type"`
	Genre          string            `json:"genre" yaml:"genre"`
	ReleaseDate    time.Time         `json:"releaseDate" yaml:"releaseDate"`
	CatalogNumber  string            `json:"catalogNumber" yaml:"catalogNumber"`
	Artwork        string            `json:"artwork,omitempty" yaml:"artwork"`
	Description    string            `json:"description" yaml:"description"`
	Tracks         []Track           `json:"tracks" yaml:"tracks"`
	StreamingLinks map[string]string `json:"streamingLinks,omitempty" yaml:"streamingLinks"` // platform -> URL
	Featured       bool              `json:"featured" yaml:"featured"`
	Tags           []string          `json:"tags,omitempty" yaml:"tags"`
	Credits        map[string]string `json:"credits,omitempty" yaml:"credits"` // role -> credit
}

// Track is one entry of a release's track list.
type Track struct {
	Title    string `json:"title" yaml:"title"`
	Duration string `json:"duration" yaml:"duration"` // m:ss
	Explicit bool   `json:"explicit" yaml:"explicit"`
	Preview  string `json:"preview,omitempty" yaml:"preview"`
}

// Seconds parses the m:ss (or h:mm:ss) duration. Malformed values count as zero.
func (t Track) Seconds() int {
	total := 0
	for part := range strings.SplitSeq(t.Duration, ":") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// Runtime is the summed duration of every track.
func (r *Release) Runtime() time.Duration {
	var total int
	for _, t := range r.Tracks {
		total += t.Seconds()
	}
	return time.Duration(total) * time.Second
}

// Clone returns a deep copy so callers can never mutate a backing store.
func (r *Release) Clone() *Release {
	if r == nil {
		return nil
	}
	c := *r
	c.Tracks = slices.Clone(r.Tracks)
	c.StreamingLinks = maps.Clone(r.StreamingLinks)
	c.Tags = slices.Clone(r.Tags)
	c.Credits = maps.Clone(r.Credits)
	return &c
}
