package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/asagaorino0/formlink-api/internal/forms"
	"github.com/asagaorino0/formlink-api/internal/service"
)

// FormsHandler handles form inspection endpoints.
type FormsHandler struct {
	inspect *service.InspectService
}

// NewFormsHandler creates a new forms handler.
func NewFormsHandler(inspect *service.InspectService) *FormsHandler {
	return &FormsHandler{inspect: inspect}
}

// InspectFormInput represents the inspect request.
type InspectFormInput struct {
	Form string `query:"form" required:"true" doc:"Form URL to inspect (any recognized shape)"`
}

// InspectFormOutput represents the inspect response.
type InspectFormOutput struct {
	Body struct {
		Success     bool     `json:"success" doc:"Whether entry discovery succeeded"`
		URL         string   `json:"url" doc:"Canonical viewform URL"`
		Title       string   `json:"title" doc:"Form title"`
		Description string   `json:"description" doc:"Form description"`
		Entries     []string `json:"entries" doc:"Entry IDs in document order"`
	}
}

// InspectForm resolves a form URL to its entry IDs and metadata.
func (h *FormsHandler) InspectForm(ctx context.Context, input *InspectFormInput) (*InspectFormOutput, error) {
	ref, em, err := h.inspect.Inspect(ctx, input.Form)
	if err != nil {
		var de *forms.DiscoveryError
		if errors.As(err, &de) {
			return nil, huma.Error422UnprocessableEntity("form discovery failed: " + de.Reason)
		}
		return nil, huma.Error500InternalServerError("form discovery failed: " + err.Error())
	}

	out := &InspectFormOutput{}
	out.Body.Success = true
	out.Body.URL = ref.ViewURL
	out.Body.Title = em.Title
	out.Body.Description = em.Description
	out.Body.Entries = em.Entries
	return out, nil
}
