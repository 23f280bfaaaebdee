package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trinestudio/trine-server/internal/domain"
	domainerrors "github.com/trinestudio/trine-server/internal/errors"
	"github.com/trinestudio/trine-server/internal/genre"
	"github.com/trinestudio/trine-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Ranked full-text search across artists and releases",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query        string `query:"q" maxLength:"200" doc:"Search query"`
	Types        string `query:"types" maxLength:"100" doc:"Comma-separated types to search (artist,release). Omit for all."`
	GenreSlugs   string `query:"genres" maxLength:"200" doc:"Comma-separated genres to filter by"`
	ReleaseTypes string `query:"release_types" maxLength:"100" doc:"Comma-separated release types (Single,EP,LP,Album,Compilation)"`
	Artist       string `query:"artist" maxLength:"100" doc:"Only releases by this artist ID"`
	Featured     bool   `query:"featured" doc:"Only featured entries"`
	MinYear      int    `query:"min_year" minimum:"0" doc:"Earliest year"`
	MaxYear      int    `query:"max_year" minimum:"0" doc:"Latest year"`
	Limit        int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset       int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	Sort         string `query:"sort" enum:"relevance,name,recent" doc:"Sort order (default relevance)"`
	Facets       bool   `query:"facets" doc:"Include facets in response"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string               `json:"query" doc:"Original search query"`
	Total  uint64               `json:"total" doc:"Total matches"`
	TookMs int64                `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []search.SearchHit   `json:"hits" doc:"Search results"`
	Facets *search.SearchFacets `json:"facets,omitempty" doc:"Facet counts for filtering"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, domainerrors.Internal("search index not configured")
	}

	params := search.SearchParams{
		Query:         input.Query,
		ArtistID:      strings.TrimSpace(input.Artist),
		FeaturedOnly:  input.Featured,
		MinYear:       input.MinYear,
		MaxYear:       input.MaxYear,
		Limit:         input.Limit,
		Offset:        input.Offset,
		SortBy:        input.Sort,
		IncludeFacets: input.Facets,
		Highlight:     true,
	}

	for _, t := range splitCSV(input.Types) {
		switch search.DocType(strings.ToLower(t)) {
		case search.DocTypeArtist:
			params.Types = append(params.Types, string(search.DocTypeArtist))
		case search.DocTypeRelease:
			params.Types = append(params.Types, string(search.DocTypeRelease))
		default:
			return nil, domainerrors.Validationf("unknown search type %q", t)
		}
	}

	// Genres are matched by slug, so free-form labels work too.
	if input.GenreSlugs != "" {
		params.GenreSlugs = genre.NormalizeToSlugs(input.GenreSlugs)
	}
	for _, rt := range splitCSV(input.ReleaseTypes) {
		parsed, err := domain.ParseReleaseType(rt)
		if err != nil {
			return nil, domainerrors.Validationf("unknown release type %q", rt)
		}
		params.ReleaseTypes = append(params.ReleaseTypes, string(parsed))
	}

	s.logger.Debug("search request received",
		"query", input.Query,
		"types", params.Types,
		"limit", params.Limit,
	)

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", input.Query)
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	resp := SearchResponse{
		Query:  input.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   result.Hits,
	}
	if resp.Hits == nil {
		resp.Hits = []search.SearchHit{}
	}
	if input.Facets {
		facets := result.Facets
		resp.Facets = &facets
	}

	return &SearchOutput{Body: resp}, nil
}

func splitCSV(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
