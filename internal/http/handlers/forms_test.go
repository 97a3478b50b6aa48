package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asagaorino0/formlink-api/internal/forms"
	"github.com/asagaorino0/formlink-api/internal/service"
)

const testFormPage = `<!DOCTYPE html><html><head>
<title>入会フォーム - Google フォーム</title>
<meta itemprop="description" content="入会のご案内">
</head><body>
<input name="entry.1795297917" type="text">
<input name="entry.2000000001" type="text">
</body></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestInspect builds an inspect service with the proxy chain disabled
// so tests only ever hit local servers.
func newTestInspect(t *testing.T) *service.InspectService {
	t.Helper()
	discoverer := forms.NewDiscoverer(forms.DiscovererConfig{
		Timeout: 2 * time.Second,
		Logger:  discardLogger(),
	})
	return service.NewInspectService(discoverer, forms.NewCache(), discardLogger())
}

func TestInspectForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testFormPage)
	}))
	defer srv.Close()

	handler := NewFormsHandler(newTestInspect(t))
	output, err := handler.InspectForm(context.Background(), &InspectFormInput{Form: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !output.Body.Success {
		t.Error("Success should be true")
	}
	if output.Body.Title != "入会フォーム" {
		t.Errorf("Title = %q", output.Body.Title)
	}
	if output.Body.Description != "入会のご案内" {
		t.Errorf("Description = %q", output.Body.Description)
	}
	if len(output.Body.Entries) != 2 || output.Body.Entries[0] != "entry.1795297917" {
		t.Errorf("Entries = %v", output.Body.Entries)
	}
}

func TestInspectForm_NoEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>not a form</title></head><body>hello</body></html>`)
	}))
	defer srv.Close()

	handler := NewFormsHandler(newTestInspect(t))
	_, err := handler.InspectForm(context.Background(), &InspectFormInput{Form: srv.URL})
	if err == nil {
		t.Fatal("expected error for page without entry IDs")
	}
	assertStatus(t, err, 422)
}

func TestInspectForm_Unreachable(t *testing.T) {
	handler := NewFormsHandler(newTestInspect(t))
	_, err := handler.InspectForm(context.Background(), &InspectFormInput{Form: "http://127.0.0.1:1/viewform"})
	if err == nil {
		t.Fatal("expected error for unreachable form")
	}
	assertStatus(t, err, 422)
}
