package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/asagaorino0/formlink-api/internal/line"
	"github.com/asagaorino0/formlink-api/internal/models"
	"github.com/asagaorino0/formlink-api/internal/repository"
)

// LineUsersHandler handles LINE user endpoints.
type LineUsersHandler struct {
	repo repository.LineUserRepository
}

// NewLineUsersHandler creates a new LINE users handler.
func NewLineUsersHandler(repo repository.LineUserRepository) *LineUsersHandler {
	return &LineUsersHandler{repo: repo}
}

// LineUserOutput represents a LINE user in API responses.
type LineUserOutput struct {
	ID          string `json:"id" doc:"Internal row ID"`
	LineUserID  string `json:"line_user_id" doc:"LINE platform user ID"`
	DisplayName string `json:"display_name" doc:"Profile display name"`
	PictureURL  string `json:"picture_url,omitempty" doc:"Profile picture URL"`
	CreatedAt   string `json:"created_at" doc:"First seen timestamp"`
}

// UpsertLineUserInput represents the upsert request.
type UpsertLineUserInput struct {
	Body struct {
		LineUserID  string `json:"line_user_id" doc:"LINE platform user ID (U-prefixed)"`
		DisplayName string `json:"display_name" doc:"Profile display name"`
		PictureURL  string `json:"picture_url,omitempty" doc:"Profile picture URL"`
	}
}

// UpsertLineUserOutput represents the upsert response.
type UpsertLineUserOutput struct {
	Body LineUserOutput
}

// UpsertLineUser stores a LINE user, refreshing the profile fields when the
// account is already known. Safe to call on every login.
func (h *LineUsersHandler) UpsertLineUser(ctx context.Context, input *UpsertLineUserInput) (*UpsertLineUserOutput, error) {
	if !line.ValidUserID(input.Body.LineUserID) {
		return nil, huma.Error400BadRequest("line_user_id must be a U-prefixed LINE user ID")
	}

	user, err := h.repo.Upsert(ctx, &models.LineUser{
		LineUserID:  input.Body.LineUserID,
		DisplayName: input.Body.DisplayName,
		PictureURL:  input.Body.PictureURL,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to store line user: " + err.Error())
	}

	return &UpsertLineUserOutput{Body: lineUserToOutput(user)}, nil
}

// GetLineUserInput represents the get request.
type GetLineUserInput struct {
	LineUserID string `path:"lineUserId" doc:"LINE platform user ID"`
}

// GetLineUserOutput represents the get response.
type GetLineUserOutput struct {
	Body LineUserOutput
}

// GetLineUser retrieves a LINE user by platform user ID.
func (h *LineUsersHandler) GetLineUser(ctx context.Context, input *GetLineUserInput) (*GetLineUserOutput, error) {
	user, err := h.repo.GetByLineUserID(ctx, input.LineUserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get line user: " + err.Error())
	}
	if user == nil {
		return nil, huma.Error404NotFound("line user not found")
	}

	return &GetLineUserOutput{Body: lineUserToOutput(user)}, nil
}

func lineUserToOutput(u *models.LineUser) LineUserOutput {
	return LineUserOutput{
		ID:          u.ID,
		LineUserID:  u.LineUserID,
		DisplayName: u.DisplayName,
		PictureURL:  u.PictureURL,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
