package handlers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	_ "github.com/tursodatabase/go-libsql"
)

func TestHealthCheck(t *testing.T) {
	output, err := HealthCheck(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.Status != "healthy" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "healthy")
	}
	if output.Body.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestLivez(t *testing.T) {
	output, err := Livez(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.Status != "ok" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "ok")
	}
}

func TestReadyz(t *testing.T) {
	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	handler := NewReadyzHandler(db)
	output, err := handler.Readyz(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Body.Status != "ok" {
		t.Errorf("Status = %q, want %q", output.Body.Status, "ok")
	}

	// A closed pool must report not ready
	_ = db.Close()
	_, err = handler.Readyz(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for closed database")
	}
	assertStatus(t, err, 503)
}

// assertStatus checks the HTTP status carried by a handler error.
func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	se, ok := err.(huma.StatusError)
	if !ok {
		t.Fatalf("error %v does not carry a status", err)
	}
	if se.GetStatus() != want {
		t.Errorf("status = %d, want %d", se.GetStatus(), want)
	}
}
