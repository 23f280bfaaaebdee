package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string   // User's search query
	Types []string // Document types to include (empty = all)

	// Filters
	GenreSlugs   []string // Exact genre slugs, OR'd
	ReleaseTypes []string // e.g. "Single", "LP"; releases only
	ArtistID     string   // Releases by one artist
	FeaturedOnly bool
	MinYear      int
	MaxYear      int

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	Highlight     bool
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         defaultLimit,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitzero"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID          string            `json:"id"`
	Type        DocType           `json:"type"`
	Score       float64           `json:"score"`
	Name        string            `json:"name"`
	ArtistID    string            `json:"artist_id,omitempty"`
	ArtistName  string            `json:"artist_name,omitempty"`
	Genre       string            `json:"genre,omitempty"`
	ReleaseType string            `json:"release_type,omitempty"`
	Year        int               `json:"year,omitempty"`
	Featured    bool              `json:"featured"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Types        []FacetCount `json:"types,omitempty"`
	Genres       []FacetCount `json:"genres,omitempty"`
	ReleaseTypes []FacetCount `json:"release_types,omitempty"`
	Tags         []FacetCount `json:"tags,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

var facetFields = []string{"type", "genre_slugs", "release_type", "tags"}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), limit, max(params.Offset, 0), false)
	addSorting(searchRequest, params)

	if params.IncludeFacets {
		for _, field := range facetFields {
			searchRequest.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("artist_name")
	}

	searchRequest.Fields = []string{
		"id", "type", "name", "artist_id", "artist_name",
		"genre", "release_type", "year", "featured",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{Score: hit.Score}

		if id, ok := hit.Fields["id"].(string); ok {
			searchHit.ID = id
		}
		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if a, ok := hit.Fields["artist_id"].(string); ok {
			searchHit.ArtistID = a
		}
		if a, ok := hit.Fields["artist_name"].(string); ok {
			searchHit.ArtistName = a
		}
		if g, ok := hit.Fields["genre"].(string); ok {
			searchHit.Genre = g
		}
		if rt, ok := hit.Fields["release_type"].(string); ok {
			searchHit.ReleaseType = rt
		}
		if y, ok := hit.Fields["year"].(float64); ok {
			searchHit.Year = int(y)
		}
		if f, ok := hit.Fields["featured"].(bool); ok {
			searchHit.Featured = f
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Names weigh most, then the artist credited on a release, then genre and
// tags; descriptions and track titles only break ties. Fuzzy and prefix
// matches on the name cover typos and type-ahead.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		textQueries := []query.Query{
			matchField(q, "name", 3.0),
			matchField(q, "artist_name", 2.0),
			matchField(q, "genre", 1.5),
			matchField(q, "description", 1.0),
			matchField(q, "track_titles", 1.0),
			matchField(q, "ai_tools", 0.8),
			matchField(q, "location", 0.5),
		}

		tagQuery := bleve.NewTermQuery(strings.ToLower(q))
		tagQuery.SetField("tags")
		tagQuery.SetBoost(1.5)
		textQueries = append(textQueries, tagQuery)

		fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		if len(q) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(q))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		queries = append(queries, anyTerm("type", params.Types))
	}
	if len(params.GenreSlugs) > 0 {
		queries = append(queries, anyTerm("genre_slugs", params.GenreSlugs))
	}
	if len(params.ReleaseTypes) > 0 {
		queries = append(queries, anyTerm("release_type", params.ReleaseTypes))
	}
	if params.ArtistID != "" {
		queries = append(queries, anyTerm("artist_id", []string{params.ArtistID}))
	}

	if params.FeaturedOnly {
		fq := bleve.NewBoolFieldQuery(true)
		fq.SetField("featured")
		queries = append(queries, fq)
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 3000
		}
		inclusive := true
		rangeQuery := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rangeQuery.SetField("year")
		queries = append(queries, rangeQuery)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func matchField(q, field string, boost float64) query.Query {
	m := bleve.NewMatchQuery(q)
	m.SetField(field)
	m.SetBoost(boost)
	return m
}

// anyTerm ORs exact keyword matches on field.
func anyTerm(field string, values []string) query.Query {
	terms := make([]query.Query, len(values))
	for i, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(field)
		terms[i] = tq
	}
	return bleve.NewDisjunctionQuery(terms...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name", "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"date", "name"})
		} else {
			req.SortBy([]string{"-date", "name"})
		}
	default:
		req.SortBy([]string{"-_score", "name"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	counts := func(name string) []FacetCount {
		facet, ok := result.Facets[name]
		if !ok || facet.Terms == nil {
			return nil
		}
		var out []FacetCount
		for _, term := range facet.Terms.Terms() {
			out = append(out, FacetCount{Value: term.Term, Count: term.Count})
		}
		return out
	}

	return SearchFacets{
		Types:        counts("type"),
		Genres:       counts("genre_slugs"),
		ReleaseTypes: counts("release_type"),
		Tags:         counts("tags"),
	}
}
