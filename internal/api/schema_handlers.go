package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/trinestudio/trine-server/internal/errors"
	"github.com/trinestudio/trine-server/internal/schema"
)

func (s *Server) registerSchemaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSchemaTypes",
		Method:      http.MethodGet,
		Path:        "/api/v1/schema",
		Summary:     "List content types",
		Description: "Returns every document type the content store holds",
		Tags:        []string{"Schema"},
	}, s.handleListSchemaTypes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSchemaType",
		Method:      http.MethodGet,
		Path:        "/api/v1/schema/{type}",
		Summary:     "Get content type",
		Description: "Returns one document type with its fields",
		Tags:        []string{"Schema"},
	}, s.handleGetSchemaType)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateSchemaDocument",
		Method:      http.MethodPost,
		Path:        "/api/v1/schema/{type}/validate",
		Summary:     "Validate document",
		Description: "Checks a raw content document against its type",
		Tags:        []string{"Schema"},
	}, s.handleValidateSchemaDocument)
}

// === DTOs ===

type ListSchemaTypesResponse struct {
	Types []schema.DocumentType `json:"types" doc:"Document types"`
}

type ListSchemaTypesOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ListSchemaTypesResponse
}

type GetSchemaTypeInput struct {
	Type string `path:"type" doc:"Document type name (artist, release, feature)"`
}

type SchemaTypeOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         schema.DocumentType
}

type ValidateSchemaDocumentInput struct {
	Type string `path:"type" doc:"Document type name"`
	Body map[string]any
}

type ValidateSchemaDocumentResponse struct {
	Valid bool `json:"valid" doc:"Always true; invalid documents return a validation error"`
}

type ValidateSchemaDocumentOutput struct {
	Body ValidateSchemaDocumentResponse
}

// === Handlers ===

func (s *Server) handleListSchemaTypes(_ context.Context, _ *struct{}) (*ListSchemaTypesOutput, error) {
	return &ListSchemaTypesOutput{
		CacheControl: CacheSchema,
		Body:         ListSchemaTypesResponse{Types: schema.All()},
	}, nil
}

func (s *Server) handleGetSchemaType(_ context.Context, input *GetSchemaTypeInput) (*SchemaTypeOutput, error) {
	dt, ok := schema.Lookup(input.Type)
	if !ok {
		return nil, domainerrors.NotFoundf("content type %q not found", input.Type)
	}
	return &SchemaTypeOutput{CacheControl: CacheSchema, Body: dt}, nil
}

func (s *Server) handleValidateSchemaDocument(_ context.Context, input *ValidateSchemaDocumentInput) (*ValidateSchemaDocumentOutput, error) {
	dt, ok := schema.Lookup(input.Type)
	if !ok {
		return nil, domainerrors.NotFoundf("content type %q not found", input.Type)
	}
	if err := dt.Validate(input.Body); err != nil {
		return nil, err
	}
	return &ValidateSchemaDocumentOutput{Body: ValidateSchemaDocumentResponse{Valid: true}}, nil
}
