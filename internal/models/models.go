// Package models defines the domain models for the application.
// Login, profile lookup, and push delivery are handled by the LINE
// platform; LineUserID fields reference LINE user IDs (e.g., "Uxxx").
package models

import (
	"time"
)

// LineUser represents a LINE account captured through the login flow.
type LineUser struct {
	ID          string    `json:"id"`
	LineUserID  string    `json:"line_user_id"` // LINE platform user ID (U-prefixed)
	DisplayName string    `json:"display_name"`
	PictureURL  string    `json:"picture_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FormSubmission records one linkage of a LINE user to a hosted form.
// The submission itself is delivered to the form host; this row is the
// local audit trail.
type FormSubmission struct {
	ID                string    `json:"id"`
	LineUserID        string    `json:"line_user_id"`
	FormURL           string    `json:"form_url"`
	AdditionalMessage string    `json:"additional_message,omitempty"`
	Success           bool      `json:"success"`
	SubmittedAt       time.Time `json:"submitted_at"`
}
