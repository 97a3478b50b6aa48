package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/asagaorino0/formlink-api/internal/line"
)

// Pusher sends push messages. Satisfied by *line.Client.
type Pusher interface {
	PushText(ctx context.Context, userID, text string) error
	PushCard(ctx context.Context, userID string, card line.Card) error
}

// SendMessageHandler handles the direct push endpoint.
type SendMessageHandler struct {
	pusher Pusher
}

// NewSendMessageHandler creates a new send message handler.
func NewSendMessageHandler(pusher Pusher) *SendMessageHandler {
	return &SendMessageHandler{pusher: pusher}
}

// SendMessageInput represents the push request.
type SendMessageInput struct {
	Body struct {
		LineUserID string `json:"line_user_id" doc:"Recipient LINE user ID"`
		Message    string `json:"message" doc:"Message text (or card body text)"`
		Type       string `json:"type,omitempty" enum:"text,card" doc:"Message type, default text"`

		// Card fields, used when type is card
		Title       string `json:"title,omitempty" doc:"Card title"`
		ButtonLabel string `json:"button_label,omitempty" doc:"Card button label"`
		ButtonURI   string `json:"button_uri,omitempty" doc:"Card button link"`
	}
}

// SendMessageOutput represents the push response.
type SendMessageOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// SendMessage pushes a message to a LINE user. Missing channel
// credentials are an operational error, not a caller mistake.
func (h *SendMessageHandler) SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	if !line.ValidUserID(input.Body.LineUserID) {
		return nil, huma.Error400BadRequest("line_user_id must be a U-prefixed LINE user ID")
	}
	if input.Body.Message == "" {
		return nil, huma.Error400BadRequest("message is required")
	}

	var err error
	switch input.Body.Type {
	case "card":
		err = h.pusher.PushCard(ctx, input.Body.LineUserID, line.Card{
			Title:       input.Body.Title,
			Text:        input.Body.Message,
			ButtonLabel: input.Body.ButtonLabel,
			ButtonURI:   input.Body.ButtonURI,
		})
	default:
		err = h.pusher.PushText(ctx, input.Body.LineUserID, input.Body.Message)
	}

	if err != nil {
		if errors.Is(err, line.ErrCredentialsMissing) {
			return nil, huma.Error500InternalServerError("LINE channel credentials not configured")
		}
		return nil, huma.Error502BadGateway("push delivery failed: " + err.Error())
	}

	out := &SendMessageOutput{}
	out.Body.Success = true
	return out, nil
}
