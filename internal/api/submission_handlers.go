package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/form"
)

func (s *Server) registerSubmissionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "startSubmission",
		Method:        http.MethodPost,
		Path:          "/api/v1/submissions",
		Summary:       "Start submission",
		Description:   "Opens a new artist submission session at step 1",
		Tags:          []string{"Submissions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleStartSubmission)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSubmissionFields",
		Method:      http.MethodGet,
		Path:        "/api/v1/submissions/fields",
		Summary:     "List submission fields",
		Description: "Returns every submission field with the step it belongs to",
		Tags:        []string{"Submissions"},
	}, s.handleListSubmissionFields)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSubmission",
		Method:      http.MethodGet,
		Path:        "/api/v1/submissions/{id}",
		Summary:     "Get submission",
		Tags:        []string{"Submissions"},
	}, s.handleGetSubmission)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSubmission",
		Method:      http.MethodPatch,
		Path:        "/api/v1/submissions/{id}",
		Summary:     "Update submission fields",
		Description: "Sets one or more fields by name. Either every field is accepted or none is.",
		Tags:        []string{"Submissions"},
	}, s.handleUpdateSubmission)

	huma.Register(s.api, huma.Operation{
		OperationID: "nextSubmissionStep",
		Method:      http.MethodPost,
		Path:        "/api/v1/submissions/{id}/next",
		Summary:     "Next step",
		Description: "Advances one step without validating",
		Tags:        []string{"Submissions"},
	}, s.handleNextSubmissionStep)

	huma.Register(s.api, huma.Operation{
		OperationID: "previousSubmissionStep",
		Method:      http.MethodPost,
		Path:        "/api/v1/submissions/{id}/previous",
		Summary:     "Previous step",
		Tags:        []string{"Submissions"},
	}, s.handlePreviousSubmissionStep)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateSubmissionStep",
		Method:      http.MethodGet,
		Path:        "/api/v1/submissions/{id}/steps/{step}/validate",
		Summary:     "Validate step",
		Description: "Checks the required fields of one step without changing state",
		Tags:        []string{"Submissions"},
	}, s.handleValidateSubmissionStep)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendSubmission",
		Method:      http.MethodPost,
		Path:        "/api/v1/submissions/{id}/submit",
		Summary:     "Submit",
		Description: "Validates the whole record and forwards it to the form backend",
		Tags:        []string{"Submissions"},
		Middlewares: huma.Middlewares{s.submitRateLimit},
	}, s.handleSendSubmission)

	huma.Register(s.api, huma.Operation{
		OperationID:   "discardSubmission",
		Method:        http.MethodDelete,
		Path:          "/api/v1/submissions/{id}",
		Summary:       "Discard submission",
		Description:   "Forgets the session and cancels an in-flight submit",
		Tags:          []string{"Submissions"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDiscardSubmission)
}

// === DTOs ===

type SubmissionIDInput struct {
	ID string `path:"id" doc:"Submission session ID"`
}

type UpdateSubmissionInput struct {
	ID   string `path:"id" doc:"Submission session ID"`
	Body struct {
		Fields map[string]string `json:"fields" doc:"Field name to value. Checkboxes take true/false, lists are comma-separated."`
	}
}

type ValidateSubmissionStepInput struct {
	ID   string `path:"id" doc:"Submission session ID"`
	Step int    `path:"step" minimum:"1" maximum:"5" doc:"Step number"`
}

type SubmissionOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         form.Snapshot
}

type StepValidationResponse struct {
	Step  int  `json:"step" doc:"Validated step"`
	Valid bool `json:"valid" doc:"Always true; invalid steps return a validation error"`
}

type StepValidationOutput struct {
	Body StepValidationResponse
}

type SubmitResponse struct {
	Receipt    *form.Receipt `json:"receipt" doc:"Confirmation from the form backend"`
	Submission form.Snapshot `json:"submission" doc:"Final session state"`
}

type SubmitOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         SubmitResponse
}

type SubmissionField struct {
	Name string `json:"name" doc:"Wire name"`
	Step int    `json:"step" doc:"Step the field is shown on"`
}

type SubmissionFieldsResponse struct {
	Steps  int               `json:"steps" doc:"Number of steps"`
	Fields []SubmissionField `json:"fields" doc:"Fields in wire order"`
}

type SubmissionFieldsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         SubmissionFieldsResponse
}

// === Handlers ===

func (s *Server) handleStartSubmission(ctx context.Context, _ *struct{}) (*SubmissionOutput, error) {
	e, err := s.services.Forms.Create(ctx)
	if err != nil {
		return nil, err
	}
	return submissionOutput(e.Snapshot()), nil
}

func (s *Server) handleListSubmissionFields(_ context.Context, _ *struct{}) (*SubmissionFieldsOutput, error) {
	names := domain.SubmissionFieldNames()
	fields := make([]SubmissionField, len(names))
	for i, name := range names {
		fields[i] = SubmissionField{Name: name, Step: domain.SubmissionFieldStep(name)}
	}
	return &SubmissionFieldsOutput{
		CacheControl: CacheSchema,
		Body:         SubmissionFieldsResponse{Steps: domain.SubmissionSteps, Fields: fields},
	}, nil
}

func (s *Server) handleGetSubmission(ctx context.Context, input *SubmissionIDInput) (*SubmissionOutput, error) {
	e, err := s.services.Forms.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return submissionOutput(e.Snapshot()), nil
}

func (s *Server) handleUpdateSubmission(ctx context.Context, input *UpdateSubmissionInput) (*SubmissionOutput, error) {
	e, err := s.services.Forms.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := e.SetFields(input.Body.Fields); err != nil {
		return nil, err
	}
	return submissionOutput(e.Snapshot()), nil
}

func (s *Server) handleNextSubmissionStep(ctx context.Context, input *SubmissionIDInput) (*SubmissionOutput, error) {
	e, err := s.services.Forms.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if _, err := e.Next(); err != nil {
		return nil, err
	}
	return submissionOutput(e.Snapshot()), nil
}

func (s *Server) handlePreviousSubmissionStep(ctx context.Context, input *SubmissionIDInput) (*SubmissionOutput, error) {
	e, err := s.services.Forms.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if _, err := e.Previous(); err != nil {
		return nil, err
	}
	return submissionOutput(e.Snapshot()), nil
}

func (s *Server) handleValidateSubmissionStep(ctx context.Context, input *ValidateSubmissionStepInput) (*StepValidationOutput, error) {
	e, err := s.services.Forms.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := e.ValidateStep(input.Step); err != nil {
		return nil, err
	}
	return &StepValidationOutput{Body: StepValidationResponse{Step: input.Step, Valid: true}}, nil
}

func (s *Server) handleSendSubmission(ctx context.Context, input *SubmissionIDInput) (*SubmitOutput, error) {
	e, err := s.services.Forms.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	// A dropped client connection must not abort the send; only navigation
	// or discard cancels it.
	receipt, err := e.Submit(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	return &SubmitOutput{
		CacheControl: CacheNoStore,
		Body:         SubmitResponse{Receipt: receipt, Submission: e.Snapshot()},
	}, nil
}

func (s *Server) handleDiscardSubmission(ctx context.Context, input *SubmissionIDInput) (*struct{}, error) {
	if err := s.services.Forms.Discard(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func submissionOutput(snap form.Snapshot) *SubmissionOutput {
	return &SubmissionOutput{CacheControl: CacheNoStore, Body: snap}
}
