package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/asagaorino0/formlink-api/internal/models"
)

const testUserID = "U4af4980629abcdef0123456789abcdef"

// fakeLineUserRepo is an in-memory LineUserRepository.
type fakeLineUserRepo struct {
	users map[string]*models.LineUser
	err   error
}

func newFakeLineUserRepo() *fakeLineUserRepo {
	return &fakeLineUserRepo{users: make(map[string]*models.LineUser)}
}

func (f *fakeLineUserRepo) Upsert(ctx context.Context, user *models.LineUser) (*models.LineUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	existing, ok := f.users[user.LineUserID]
	if !ok {
		stored := *user
		stored.ID = fmt.Sprintf("row-%d", len(f.users)+1)
		stored.CreatedAt = time.Now().UTC()
		stored.UpdatedAt = stored.CreatedAt
		f.users[user.LineUserID] = &stored
		return &stored, nil
	}
	existing.DisplayName = user.DisplayName
	existing.PictureURL = user.PictureURL
	existing.UpdatedAt = time.Now().UTC()
	return existing, nil
}

func (f *fakeLineUserRepo) GetByLineUserID(ctx context.Context, lineUserID string) (*models.LineUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[lineUserID], nil
}

func TestUpsertLineUser(t *testing.T) {
	repo := newFakeLineUserRepo()
	handler := NewLineUsersHandler(repo)

	input := &UpsertLineUserInput{}
	input.Body.LineUserID = testUserID
	input.Body.DisplayName = "Taro"
	input.Body.PictureURL = "https://profile.line-scdn.net/pic.jpg"

	output, err := handler.UpsertLineUser(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.LineUserID != testUserID {
		t.Errorf("LineUserID = %q", output.Body.LineUserID)
	}
	if output.Body.ID == "" {
		t.Error("ID should be assigned")
	}
	if output.Body.DisplayName != "Taro" {
		t.Errorf("DisplayName = %q", output.Body.DisplayName)
	}
}

func TestUpsertLineUser_InvalidID(t *testing.T) {
	handler := NewLineUsersHandler(newFakeLineUserRepo())

	for _, id := range []string{"", "Xabc", "U123"} {
		input := &UpsertLineUserInput{}
		input.Body.LineUserID = id
		_, err := handler.UpsertLineUser(context.Background(), input)
		if err == nil {
			t.Errorf("expected error for id %q", id)
			continue
		}
		assertStatus(t, err, 400)
	}
}

func TestGetLineUser(t *testing.T) {
	repo := newFakeLineUserRepo()
	handler := NewLineUsersHandler(repo)

	input := &UpsertLineUserInput{}
	input.Body.LineUserID = testUserID
	input.Body.DisplayName = "Taro"
	if _, err := handler.UpsertLineUser(context.Background(), input); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	output, err := handler.GetLineUser(context.Background(), &GetLineUserInput{LineUserID: testUserID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.DisplayName != "Taro" {
		t.Errorf("DisplayName = %q", output.Body.DisplayName)
	}
}

func TestGetLineUser_NotFound(t *testing.T) {
	handler := NewLineUsersHandler(newFakeLineUserRepo())

	_, err := handler.GetLineUser(context.Background(), &GetLineUserInput{LineUserID: testUserID})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	assertStatus(t, err, 404)
}
