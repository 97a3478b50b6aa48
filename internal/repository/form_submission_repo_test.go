package repository

import (
	"context"
	"testing"
	"time"

	"github.com/asagaorino0/formlink-api/internal/models"
)

func TestFormSubmissionRepository_Create(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	submission := &models.FormSubmission{
		LineUserID:        "U4af4980629abcdef0123456789abcdef",
		FormURL:           "https://docs.google.com/forms/d/e/1FAIpQLSe-example/viewform",
		AdditionalMessage: "filled from chat",
		Success:           true,
	}

	if err := repos.Submissions.Create(ctx, submission); err != nil {
		t.Fatalf("failed to create submission: %v", err)
	}
	if submission.ID == "" {
		t.Error("expected ID to be generated")
	}
	if submission.SubmittedAt.IsZero() {
		t.Error("expected SubmittedAt to be set")
	}

	list, err := repos.Submissions.ListByLineUserID(ctx, submission.LineUserID)
	if err != nil {
		t.Fatalf("failed to list submissions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].FormURL != submission.FormURL {
		t.Errorf("FormURL = %q, want %q", list[0].FormURL, submission.FormURL)
	}
	if list[0].AdditionalMessage != "filled from chat" {
		t.Errorf("AdditionalMessage = %q, want %q", list[0].AdditionalMessage, "filled from chat")
	}
	if !list[0].Success {
		t.Error("expected Success to be true")
	}
}

func TestFormSubmissionRepository_ListByLineUserID_Ordering(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	older := &models.FormSubmission{
		LineUserID:  "Uorder0000000000000000000000000000",
		FormURL:     "https://docs.google.com/forms/d/e/1FAIpQLOlder/viewform",
		Success:     true,
		SubmittedAt: time.Now().Add(-time.Hour),
	}
	newer := &models.FormSubmission{
		LineUserID:  "Uorder0000000000000000000000000000",
		FormURL:     "https://docs.google.com/forms/d/e/1FAIpQLNewer/viewform",
		Success:     true,
		SubmittedAt: time.Now(),
	}

	if err := repos.Submissions.Create(ctx, older); err != nil {
		t.Fatalf("failed to create older submission: %v", err)
	}
	if err := repos.Submissions.Create(ctx, newer); err != nil {
		t.Fatalf("failed to create newer submission: %v", err)
	}

	list, err := repos.Submissions.ListByLineUserID(ctx, "Uorder0000000000000000000000000000")
	if err != nil {
		t.Fatalf("failed to list submissions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].FormURL != newer.FormURL {
		t.Errorf("expected newest submission first, got %q", list[0].FormURL)
	}
}

func TestFormSubmissionRepository_ListByLineUserID_Empty(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	list, err := repos.Submissions.ListByLineUserID(ctx, "Unobody000000000000000000000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len(list) = %d, want 0", len(list))
	}
}
