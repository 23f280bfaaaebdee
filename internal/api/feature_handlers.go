package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trinestudio/trine-server/internal/domain"
)

func (s *Server) registerFeatureRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFeatures",
		Method:      http.MethodGet,
		Path:        "/api/v1/features",
		Summary:     "List homepage features",
		Description: "Returns homepage spotlights. Empty unless the catalog is served from the CMS.",
		Tags:        []string{"Features"},
	}, s.handleListFeatures)
}

type FeatureListResponse struct {
	Features []domain.Feature `json:"features" doc:"Homepage spotlights"`
}

type FeatureListOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         FeatureListResponse
}

func (s *Server) handleListFeatures(ctx context.Context, _ *struct{}) (*FeatureListOutput, error) {
	features := []domain.Feature{}
	if s.services.Features != nil {
		list, err := s.services.Features.ListFeatures(ctx)
		if err != nil {
			return nil, err
		}
		if list != nil {
			features = list
		}
	}
	return &FeatureListOutput{CacheControl: CacheCatalog, Body: FeatureListResponse{Features: features}}, nil
}
