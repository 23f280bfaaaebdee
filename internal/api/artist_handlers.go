package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/domain"
	domainerrors "github.com/trinestudio/trine-server/internal/errors"
)

func (s *Server) registerArtistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listArtists",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists",
		Summary:     "List artists",
		Description: "Returns roster artists in catalog order, optionally filtered",
		Tags:        []string{"Artists"},
	}, s.handleListArtists)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeaturedArtists",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists/featured",
		Summary:     "List featured artists",
		Tags:        []string{"Artists"},
	}, s.handleListFeaturedArtists)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchArtists",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists/search",
		Summary:     "Search artists",
		Description: "Case-insensitive substring match on name, genre and bio",
		Tags:        []string{"Artists"},
	}, s.handleSearchArtists)

	huma.Register(s.api, huma.Operation{
		OperationID: "listArtistGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists/genres",
		Summary:     "List artist genres",
		Tags:        []string{"Artists"},
	}, s.handleListArtistGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "getArtist",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists/{id}",
		Summary:     "Get artist",
		Tags:        []string{"Artists"},
	}, s.handleGetArtist)

	huma.Register(s.api, huma.Operation{
		OperationID: "listArtistReleases",
		Method:      http.MethodGet,
		Path:        "/api/v1/artists/{id}/releases",
		Summary:     "List artist releases",
		Description: "Returns the artist's releases, newest first",
		Tags:        []string{"Artists"},
	}, s.handleListArtistReleases)

	huma.Register(s.api, huma.Operation{
		OperationID: "createArtist",
		Method:      http.MethodPost,
		Path:        "/api/v1/artists",
		Summary:     "Create artist",
		Description: "Not implemented; artists are managed in the content studio",
		Tags:        []string{"Artists"},
		RequestBody: optionalBody(),
	}, s.handleCreateArtist)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateArtist",
		Method:      http.MethodPatch,
		Path:        "/api/v1/artists/{id}",
		Summary:     "Update artist",
		Description: "Not implemented; artists are managed in the content studio",
		Tags:        []string{"Artists"},
		RequestBody: optionalBody(),
	}, s.handleUpdateArtist)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteArtist",
		Method:      http.MethodDelete,
		Path:        "/api/v1/artists/{id}",
		Summary:     "Delete artist",
		Description: "Not implemented; artists are managed in the content studio",
		Tags:        []string{"Artists"},
	}, s.handleDeleteArtist)
}

// === DTOs ===

type ListArtistsInput struct {
	Genre    string `query:"genre" doc:"Genre substring, case-insensitive"`
	Featured string `query:"featured" enum:"true,false" doc:"Only featured (true) or non-featured (false) artists"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (0 = all)"`
}

type ListLimitInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (0 = all)"`
}

type SearchCatalogInput struct {
	Query string `query:"q" maxLength:"200" doc:"Substring to match"`
}

type ArtistIDInput struct {
	ID string `path:"id" doc:"Artist ID"`
}

type ArtistMutationInput struct {
	ID      string `path:"id" doc:"Artist ID"`
	RawBody []byte `required:"false"`
}

type CreateArtistInput struct {
	RawBody []byte `required:"false"`
}

type ArtistListResponse struct {
	Artists []*domain.Artist `json:"artists" doc:"Artists"`
}

type ArtistListOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ArtistListResponse
}

type ArtistOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         *domain.Artist
}

type ValuesResponse struct {
	Values []string `json:"values" doc:"Distinct values, sorted"`
}

type ValuesOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ValuesResponse
}

type ReleaseListResponse struct {
	Releases []*domain.Release `json:"releases" doc:"Releases, newest first"`
}

type ReleaseListOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ReleaseListResponse
}

// === Handlers ===

func (s *Server) handleListArtists(ctx context.Context, input *ListArtistsInput) (*ArtistListOutput, error) {
	featured, err := parseOptionalBool("featured", input.Featured)
	if err != nil {
		return nil, err
	}

	artists, err := s.services.Catalog.ListArtists(ctx, catalog.ArtistFilter{
		Genre:    strings.TrimSpace(input.Genre),
		Featured: featured,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return artistList(artists), nil
}

func (s *Server) handleListFeaturedArtists(ctx context.Context, input *ListLimitInput) (*ArtistListOutput, error) {
	artists, err := s.services.Catalog.ListFeaturedArtists(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return artistList(artists), nil
}

func (s *Server) handleSearchArtists(ctx context.Context, input *SearchCatalogInput) (*ArtistListOutput, error) {
	artists, err := s.services.Catalog.SearchArtists(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return artistList(artists), nil
}

func (s *Server) handleListArtistGenres(ctx context.Context, _ *struct{}) (*ValuesOutput, error) {
	genres, err := s.services.Catalog.ListArtistGenres(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesOutput{CacheControl: CacheCatalog, Body: ValuesResponse{Values: genres}}, nil
}

func (s *Server) handleGetArtist(ctx context.Context, input *ArtistIDInput) (*ArtistOutput, error) {
	artist, err := s.services.Catalog.GetArtist(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ArtistOutput{CacheControl: CacheCatalog, Body: artist}, nil
}

func (s *Server) handleListArtistReleases(ctx context.Context, input *ArtistIDInput) (*ReleaseListOutput, error) {
	// 404 for unknown artists rather than an empty list.
	if _, err := s.services.Catalog.GetArtist(ctx, input.ID); err != nil {
		return nil, err
	}
	releases, err := s.services.Catalog.ListReleasesByArtist(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return releaseList(releases), nil
}

func (s *Server) handleCreateArtist(ctx context.Context, _ *CreateArtistInput) (*ArtistOutput, error) {
	_, err := s.services.Catalog.CreateArtist(ctx, nil)
	return nil, err
}

func (s *Server) handleUpdateArtist(ctx context.Context, input *ArtistMutationInput) (*ArtistOutput, error) {
	_, err := s.services.Catalog.UpdateArtist(ctx, input.ID, nil)
	return nil, err
}

func (s *Server) handleDeleteArtist(ctx context.Context, input *ArtistIDInput) (*struct{}, error) {
	return nil, s.services.Catalog.DeleteArtist(ctx, input.ID)
}

// === Helpers ===

func artistList(artists []*domain.Artist) *ArtistListOutput {
	if artists == nil {
		artists = []*domain.Artist{}
	}
	return &ArtistListOutput{CacheControl: CacheCatalog, Body: ArtistListResponse{Artists: artists}}
}

func releaseList(releases []*domain.Release) *ReleaseListOutput {
	if releases == nil {
		releases = []*domain.Release{}
	}
	return &ReleaseListOutput{CacheControl: CacheCatalog, Body: ReleaseListResponse{Releases: releases}}
}

// optionalBody lets mutators accept an empty request so they always reach
// the handler and answer 501.
func optionalBody() *huma.RequestBody {
	return &huma.RequestBody{Required: false}
}

// parseOptionalBool turns "", "true" and "false" into a tri-state filter.
func parseOptionalBool(name, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, domainerrors.Validationf("%s must be true or false", name)
	}
	return &b, nil
}
