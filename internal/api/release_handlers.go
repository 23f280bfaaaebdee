package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trinestudio/trine-server/internal/catalog"
	"github.com/trinestudio/trine-server/internal/domain"
)

func (s *Server) registerReleaseRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReleases",
		Method:      http.MethodGet,
		Path:        "/api/v1/releases",
		Summary:     "List releases",
		Description: "Returns releases newest first, optionally filtered",
		Tags:        []string{"Releases"},
	}, s.handleListReleases)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeaturedReleases",
		Method:      http.MethodGet,
		Path:        "/api/v1/releases/featured",
		Summary:     "List featured releases",
		Tags:        []string{"Releases"},
	}, s.handleListFeaturedReleases)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchReleases",
		Method:      http.MethodGet,
		Path:        "/api/v1/releases/search",
		Summary:     "Search releases",
		Description: "Case-insensitive substring match on title, artist, genre, description and tags",
		Tags:        []string{"Releases"},
	}, s.handleSearchReleases)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReleaseTypes",
		Method:      http.MethodGet,
		Path:        "/api/v1/releases/types",
		Summary:     "List release types",
		Tags:        []string{"Releases"},
	}, s.handleListReleaseTypes)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReleaseGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/releases/genres",
		Summary:     "List release genres",
		Tags:        []string{"Releases"},
	}, s.handleListReleaseGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRelease",
		Method:      http.MethodGet,
		Path:        "/api/v1/releases/{id}",
		Summary:     "Get release",
		Tags:        []string{"Releases"},
	}, s.handleGetRelease)

	huma.Register(s.api, huma.Operation{
		OperationID: "createRelease",
		Method:      http.MethodPost,
		Path:        "/api/v1/releases",
		Summary:     "Create release",
		Description: "Not implemented; releases are managed in the content studio",
		Tags:        []string{"Releases"},
		RequestBody: optionalBody(),
	}, s.handleCreateRelease)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRelease",
		Method:      http.MethodPatch,
		Path:        "/api/v1/releases/{id}",
		Summary:     "Update release",
		Description: "Not implemented; releases are managed in the content studio",
		Tags:        []string{"Releases"},
		RequestBody: optionalBody(),
	}, s.handleUpdateRelease)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRelease",
		Method:      http.MethodDelete,
		Path:        "/api/v1/releases/{id}",
		Summary:     "Delete release",
		Description: "Not implemented; releases are managed in the content studio",
		Tags:        []string{"Releases"},
	}, s.handleDeleteRelease)
}

// === DTOs ===

type ListReleasesInput struct {
	Type     string `query:"type" doc:"Release type (Single, EP, LP, Album, Compilation), case-insensitive"`
	Genre    string `query:"genre" doc:"Genre substring, case-insensitive"`
	Artist   string `query:"artist" doc:"Artist name substring, case-insensitive"`
	Featured string `query:"featured" enum:"true,false" doc:"Only featured (true) or non-featured (false) releases"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (0 = all)"`
}

type ReleaseIDInput struct {
	ID string `path:"id" doc:"Release ID"`
}

type ReleaseMutationInput struct {
	ID      string `path:"id" doc:"Release ID"`
	RawBody []byte `required:"false"`
}

type CreateReleaseInput struct {
	RawBody []byte `required:"false"`
}

type ReleaseOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         *domain.Release
}

// === Handlers ===

func (s *Server) handleListReleases(ctx context.Context, input *ListReleasesInput) (*ReleaseListOutput, error) {
	featured, err := parseOptionalBool("featured", input.Featured)
	if err != nil {
		return nil, err
	}

	releases, err := s.services.Catalog.ListReleases(ctx, catalog.ReleaseFilter{
		Type:     strings.TrimSpace(input.Type),
		Genre:    strings.TrimSpace(input.Genre),
		Artist:   strings.TrimSpace(input.Artist),
		Featured: featured,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return releaseList(releases), nil
}

func (s *Server) handleListFeaturedReleases(ctx context.Context, input *ListLimitInput) (*ReleaseListOutput, error) {
	releases, err := s.services.Catalog.ListFeaturedReleases(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return releaseList(releases), nil
}

func (s *Server) handleSearchReleases(ctx context.Context, input *SearchCatalogInput) (*ReleaseListOutput, error) {
	releases, err := s.services.Catalog.SearchReleases(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return releaseList(releases), nil
}

func (s *Server) handleListReleaseTypes(ctx context.Context, _ *struct{}) (*ValuesOutput, error) {
	types, err := s.services.Catalog.ListReleaseTypes(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesOutput{CacheControl: CacheCatalog, Body: ValuesResponse{Values: types}}, nil
}

func (s *Server) handleListReleaseGenres(ctx context.Context, _ *struct{}) (*ValuesOutput, error) {
	genres, err := s.services.Catalog.ListReleaseGenres(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesOutput{CacheControl: CacheCatalog, Body: ValuesResponse{Values: genres}}, nil
}

func (s *Server) handleGetRelease(ctx context.Context, input *ReleaseIDInput) (*ReleaseOutput, error) {
	release, err := s.services.Catalog.GetRelease(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReleaseOutput{CacheControl: CacheCatalog, Body: release}, nil
}

func (s *Server) handleCreateRelease(ctx context.Context, _ *CreateReleaseInput) (*ReleaseOutput, error) {
	_, err := s.services.Catalog.CreateRelease(ctx, nil)
	return nil, err
}

func (s *Server) handleUpdateRelease(ctx context.Context, input *ReleaseMutationInput) (*ReleaseOutput, error) {
	_, err := s.services.Catalog.UpdateRelease(ctx, input.ID, nil)
	return nil, err
}

func (s *Server) handleDeleteRelease(ctx context.Context, input *ReleaseIDInput) (*struct{}, error) {
	return nil, s.services.Catalog.DeleteRelease(ctx, input.ID)
}
