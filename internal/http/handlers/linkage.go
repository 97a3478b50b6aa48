package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/asagaorino0/formlink-api/internal/line"
	"github.com/asagaorino0/formlink-api/internal/service"
)

// LinkageHandler handles the linkage orchestration endpoint.
type LinkageHandler struct {
	linkage  *service.LinkageService
	profiles line.ProfileProvider
	logger   *slog.Logger
}

// NewLinkageHandler creates a new linkage handler.
func NewLinkageHandler(linkage *service.LinkageService, profiles line.ProfileProvider, logger *slog.Logger) *LinkageHandler {
	return &LinkageHandler{linkage: linkage, profiles: profiles, logger: logger}
}

// LinkInput represents the linkage request. Callers either present the
// access token from the client-side LINE login, or the profile fields
// directly when the client already resolved them.
type LinkInput struct {
	Body struct {
		Form              string `json:"form" doc:"Form URL to link"`
		AccessToken       string `json:"access_token,omitempty" doc:"LINE login access token"`
		LineUserID        string `json:"line_user_id,omitempty" doc:"LINE user ID, when the client resolved the profile itself"`
		DisplayName       string `json:"display_name,omitempty" doc:"Display name accompanying line_user_id"`
		PictureURL        string `json:"picture_url,omitempty" doc:"Picture URL accompanying line_user_id"`
		Notify            bool   `json:"notify,omitempty" doc:"Send the prefill link back over LINE push"`
		AdditionalMessage string `json:"additional_message,omitempty" doc:"Free-text message recorded with the submission"`
	}
}

// LinkOutput represents the linkage response.
type LinkOutput struct {
	Body struct {
		Success      bool     `json:"success"`
		PrefillURL   string   `json:"prefill_url" doc:"Viewform URL with the identity field prefilled"`
		SubmitURL    string   `json:"submit_url" doc:"formResponse endpoint for the form"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Entries      []string `json:"entries"`
		Fallback     bool     `json:"fallback" doc:"True when discovery failed and the well-known identity field was used"`
		NotifyQueued bool     `json:"notify_queued"`
	}
}

// Link runs the full linkage flow for an authenticated LINE user.
func (h *LinkageHandler) Link(ctx context.Context, input *LinkInput) (*LinkOutput, error) {
	if input.Body.Form == "" {
		return nil, huma.Error400BadRequest(`Missing "form" parameter`)
	}

	profile, err := h.resolveProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := h.linkage.Link(ctx, profile, input.Body.Form, service.LinkOptions{
		Notify:            input.Body.Notify,
		AdditionalMessage: input.Body.AdditionalMessage,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("linkage failed: " + err.Error())
	}

	out := &LinkOutput{}
	out.Body.Success = true
	out.Body.PrefillURL = result.PrefillURL
	out.Body.SubmitURL = result.SubmitURL
	out.Body.Title = result.Entries.Title
	out.Body.Description = result.Entries.Description
	out.Body.Entries = result.Entries.Entries
	out.Body.Fallback = result.Fallback
	out.Body.NotifyQueued = result.NotifyQueued
	return out, nil
}

// resolveProfile turns the request's credentials into a LINE profile.
func (h *LinkageHandler) resolveProfile(ctx context.Context, input *LinkInput) (*line.Profile, error) {
	if input.Body.AccessToken != "" {
		profile, err := h.profiles.GetProfile(ctx, input.Body.AccessToken)
		if err != nil {
			h.logger.Warn("profile lookup failed", "error", err)
			return nil, huma.Error401Unauthorized("invalid LINE access token")
		}
		return profile, nil
	}

	if !line.ValidUserID(input.Body.LineUserID) {
		return nil, huma.Error400BadRequest("line_user_id must be a U-prefixed LINE user ID")
	}
	return &line.Profile{
		UserID:      input.Body.LineUserID,
		DisplayName: input.Body.DisplayName,
		PictureURL:  input.Body.PictureURL,
	}, nil
}
