package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/asagaorino0/formlink-api/internal/models"
	"github.com/asagaorino0/formlink-api/internal/repository"
)

// SubmissionsHandler handles form submission endpoints.
type SubmissionsHandler struct {
	submissions repository.FormSubmissionRepository
	users       repository.LineUserRepository
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(submissions repository.FormSubmissionRepository, users repository.LineUserRepository) *SubmissionsHandler {
	return &SubmissionsHandler{submissions: submissions, users: users}
}

// SubmissionOutput represents a submission in API responses.
type SubmissionOutput struct {
	ID                string `json:"id" doc:"Submission ID"`
	LineUserID        string `json:"line_user_id" doc:"LINE platform user ID"`
	FormURL           string `json:"form_url" doc:"Canonical form URL"`
	AdditionalMessage string `json:"additional_message,omitempty" doc:"Free-text message recorded with the submission"`
	Success           bool   `json:"success" doc:"Whether the linkage completed"`
	SubmittedAt       string `json:"submitted_at" doc:"Submission timestamp"`
}

// CreateSubmissionInput represents the create request.
type CreateSubmissionInput struct {
	Body struct {
		LineUserID        string `json:"line_user_id" doc:"LINE platform user ID"`
		FormURL           string `json:"form_url" doc:"Form URL the user was linked to"`
		AdditionalMessage string `json:"additional_message,omitempty" doc:"Optional free-text message"`
	}
}

// CreateSubmissionOutput represents the create response.
type CreateSubmissionOutput struct {
	Body SubmissionOutput
}

// CreateSubmission records a form submission for a known LINE user.
func (h *SubmissionsHandler) CreateSubmission(ctx context.Context, input *CreateSubmissionInput) (*CreateSubmissionOutput, error) {
	user, err := h.users.GetByLineUserID(ctx, input.Body.LineUserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to look up line user: " + err.Error())
	}
	if user == nil {
		return nil, huma.Error404NotFound("line user not found")
	}

	submission := &models.FormSubmission{
		LineUserID:        input.Body.LineUserID,
		FormURL:           input.Body.FormURL,
		AdditionalMessage: input.Body.AdditionalMessage,
		Success:           true,
	}
	if err := h.submissions.Create(ctx, submission); err != nil {
		return nil, huma.Error500InternalServerError("failed to record submission: " + err.Error())
	}

	return &CreateSubmissionOutput{Body: submissionToOutput(submission)}, nil
}

// ListSubmissionsInput represents the list request.
type ListSubmissionsInput struct {
	LineUserID string `path:"lineUserId" doc:"LINE platform user ID"`
}

// ListSubmissionsOutput represents the list response.
type ListSubmissionsOutput struct {
	Body struct {
		Submissions []SubmissionOutput `json:"submissions" doc:"Submissions, newest first"`
	}
}

// ListSubmissions returns a user's submissions, newest first.
func (h *SubmissionsHandler) ListSubmissions(ctx context.Context, input *ListSubmissionsInput) (*ListSubmissionsOutput, error) {
	subs, err := h.submissions.ListByLineUserID(ctx, input.LineUserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list submissions: " + err.Error())
	}

	output := &ListSubmissionsOutput{}
	for _, s := range subs {
		output.Body.Submissions = append(output.Body.Submissions, submissionToOutput(s))
	}
	return output, nil
}

func submissionToOutput(s *models.FormSubmission) SubmissionOutput {
	return SubmissionOutput{
		ID:                s.ID,
		LineUserID:        s.LineUserID,
		FormURL:           s.FormURL,
		AdditionalMessage: s.AdditionalMessage,
		Success:           s.Success,
		SubmittedAt:       s.SubmittedAt.Format(time.RFC3339),
	}
}
