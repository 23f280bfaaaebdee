package cms

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/karlseguin/ccache/v3"
	"github.com/tidwall/gjson"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
)

// GROQ projections mapping content documents onto the catalog shape. Fields
// the content model does not declare come back null and decode as zero.
const (
	artistProjection = `{
  "id": _id,
  name,
  genre,
  bio,
  "image": image.asset->url,
  socialLinks,
  aiTools,
  "releases": *[_type == "release" && references(^._id)]._id,
  featured,
  joinDate,
  location,
  website
}`

	releaseProjection = `{
  "id": _id,
  title,
  "artistId": artist._ref,
  "artist": artist->name,
  type,
  genre,
  releaseDate,
  catalogNumber,
  "artwork": image.asset->url,
  description,
  tracks[]{title, duration, explicit, preview},
  streamingLinks,
  featured,
  tags,
  credits
}`

	featureProjection = `{
  "id": _id,
  headline,
  "artistId": artist._ref,
  "releaseId": release._ref,
  "image": image.asset->url,
  description
}`

	queryArtists  = `*[_type == "artist"] | order(_createdAt asc) ` + artistProjection
	queryArtist   = `*[_type == "artist" && _id == $id][0] ` + artistProjection
	queryReleases = `*[_type == "release"] | order(_createdAt asc) ` + releaseProjection
	queryRelease  = `*[_type == "release" && _id == $id][0] ` + releaseProjection
	queryFeatures = `*[_type == "feature"] | order(_createdAt desc) ` + featureProjection
)

const defaultCacheTTL = time.Minute

// Querier runs read queries. *Client satisfies it.
type Querier interface {
	Fetch(ctx context.Context, groq string, params map[string]any) (gjson.Result, error)
}

// Repository serves the catalog from the content store. Results are cached
// for a short TTL so page loads don't fan out into one query per request.
type Repository struct {
	client Querier
	cache  *ccache.Cache[[]byte]
	ttl    time.Duration
	logger *slog.Logger
}

// NewRepository creates a content-backed catalog repository. A zero ttl
// uses one minute; a negative ttl disables caching.
func NewRepository(client Querier, ttl time.Duration, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &Repository{
		client: client,
		cache:  ccache.New(ccache.Configure[[]byte]().MaxSize(256)),
		ttl:    ttl,
		logger: logger,
	}
}

// Close stops the cache worker.
func (r *Repository) Close() {
	r.cache.Stop()
}

// Invalidate drops every cached result, e.g. after a content webhook.
func (r *Repository) Invalidate() {
	r.cache.Clear()
}

// ListArtists returns every artist document.
func (r *Repository) ListArtists(ctx context.Context) ([]*domain.Artist, error) {
	result, err := r.fetch(ctx, "artists", queryArtists, nil)
	if err != nil {
		return nil, err
	}

	var docs []artistDoc
	if err := decode(result, &docs); err != nil {
		return nil, err
	}
	artists := make([]*domain.Artist, 0, len(docs))
	for i := range docs {
		artists = append(artists, docs[i].toDomain())
	}
	return artists, nil
}

// GetArtist returns one artist document by ID.
func (r *Repository) GetArtist(ctx context.Context, artistID string) (*domain.Artist, error) {
	result, err := r.fetch(ctx, "artist:"+artistID, queryArtist, map[string]any{"id": artistID})
	if err != nil {
		return nil, err
	}
	if result.Type == gjson.Null {
		return nil, errors.NotFoundf("artist %q not found", artistID)
	}

	var doc artistDoc
	if err := decode(result, &doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListReleases returns every release document.
func (r *Repository) ListReleases(ctx context.Context) ([]*domain.Release, error) {
	result, err := r.fetch(ctx, "releases", queryReleases, nil)
	if err != nil {
		return nil, err
	}

	var docs []releaseDoc
	if err := decode(result, &docs); err != nil {
		return nil, err
	}
	releases := make([]*domain.Release, 0, len(docs))
	for i := range docs {
		releases = append(releases, docs[i].toDomain())
	}
	return releases, nil
}

// GetRelease returns one release document by ID.
func (r *Repository) GetRelease(ctx context.Context, releaseID string) (*domain.Release, error) {
	result, err := r.fetch(ctx, "release:"+releaseID, queryRelease, map[string]any{"id": releaseID})
	if err != nil {
		return nil, err
	}
	if result.Type == gjson.Null {
		return nil, errors.NotFoundf("release %q not found", releaseID)
	}

	var doc releaseDoc
	if err := decode(result, &doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListFeatures returns homepage features, newest first.
func (r *Repository) ListFeatures(ctx context.Context) ([]domain.Feature, error) {
	result, err := r.fetch(ctx, "features", queryFeatures, nil)
	if err != nil {
		return nil, err
	}

	var features []domain.Feature
	if err := decode(result, &features); err != nil {
		return nil, err
	}
	for i := range features {
		features[i].Description = htmlToMarkdown(features[i].Description)
	}
	if features == nil {
		features = []domain.Feature{}
	}
	return features, nil
}

// fetch returns the cached raw result for key or runs the query.
func (r *Repository) fetch(ctx context.Context, key, groq string, params map[string]any) (gjson.Result, error) {
	if r.ttl > 0 {
		if item := r.cache.Get(key); item != nil && !item.Expired() {
			return gjson.ParseBytes(item.Value()), nil
		}
	}

	result, err := r.client.Fetch(ctx, groq, params)
	if err != nil {
		return gjson.Result{}, err
	}
	if r.ttl > 0 {
		r.cache.Set(key, []byte(result.Raw), r.ttl)
	}
	return result, nil
}

func decode(result gjson.Result, dest any) error {
	if result.Type == gjson.Null {
		return nil
	}
	if err := json.Unmarshal([]byte(result.Raw), dest); err != nil {
		return errors.Wrap(err, errors.CodeTransportFailed, "cms: unexpected document shape")
	}
	return nil
}

type artistDoc struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Genre       string            `json:"genre"`
	Bio         string            `json:"bio"`
	Image       string            `json:"image"`
	SocialLinks map[string]string `json:"socialLinks"`
	AITools     []string          `json:"aiTools"`
	Releases    []string          `json:"releases"`
	Featured    bool              `json:"featured"`
	JoinDate    string            `json:"joinDate"`
	Location    string            `json:"location"`
	Website     string            `json:"website"`
}

func (d *artistDoc) toDomain() *domain.Artist {
	return &domain.Artist{
		ID:          d.ID,
		Name:        d.Name,
		Genre:       d.Genre,
		Bio:         htmlToMarkdown(d.Bio),
		Image:       d.Image,
		SocialLinks: d.SocialLinks,
		AITools:     d.AITools,
		Releases:    d.Releases,
		Featured:    d.Featured,
		JoinDate:    parseDate(d.JoinDate),
		Location:    d.Location,
		Website:     d.Website,
	}
}

type releaseDoc struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	ArtistID       string            `json:"artistId"`
	ArtistName     string            `json:"artist"`
	Type           string            `json:"type"`
	Genre          string            `json:"genre"`
	ReleaseDate    string            `json:"releaseDate"`
	CatalogNumber  string            `json:"catalogNumber"`
	Artwork        string            `json:"artwork"`
	Description    string            `json:"description"`
	Tracks         []domain.Track    `json:"tracks"`
	StreamingLinks map[string]string `json:"streamingLinks"`
	Featured       bool              `json:"featured"`
	Tags           []string          `json:"tags"`
	Credits        map[string]string `json:"credits"`
}

func (d *releaseDoc) toDomain() *domain.Release {
	releaseType := domain.ReleaseType(strings.TrimSpace(d.Type))
	if parsed, err := domain.ParseReleaseType(d.Type); err == nil {
		releaseType = parsed
	}
	tracks := d.Tracks
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return &domain.Release{
		ID:             d.ID,
		Title:          d.Title,
		ArtistID:       d.ArtistID,
		ArtistName:     d.ArtistName,
		Type:           releaseType,
		Genre:          d.Genre,
		ReleaseDate:    parseDate(d.ReleaseDate),
		CatalogNumber:  d.CatalogNumber,
		Artwork:        d.Artwork,
		Description:    htmlToMarkdown(d.Description),
		Tracks:         tracks,
		StreamingLinks: d.StreamingLinks,
		Featured:       d.Featured,
		Tags:           d.Tags,
		Credits:        d.Credits,
	}
}

// parseDate accepts date-only and RFC 3339 values. Anything else is zero.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// containsHTML reports whether s looks like HTML. Plain-text content is left
// untouched so bios with a stray "<" survive.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// htmlToMarkdown converts rich-text content to markdown. Non-HTML input and
// conversion failures return the original string.
func htmlToMarkdown(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}
