package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAppRoot(t *testing.T) {
	handler := NewAppRootHandler()

	req := httptest.NewRequest(http.MethodGet, "/?form=https%3A%2F%2Fforms.gle%2Fabc&redirect=true&notify=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q", cc)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `data-form="https://forms.gle/abc"`) {
		t.Errorf("body missing form attribute: %s", body)
	}
	if !strings.Contains(body, `data-redirect="true"`) {
		t.Error("body missing redirect attribute")
	}
	if !strings.Contains(body, `data-notify="1"`) {
		t.Error("body missing notify attribute")
	}
}

func TestAppRoot_EscapesParams(t *testing.T) {
	handler := NewAppRootHandler()

	req := httptest.NewRequest(http.MethodGet, "/?form=%22%3E%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), "<script>alert") {
		t.Errorf("body contains unescaped markup: %s", rec.Body.String())
	}
}

func TestAppRoot_NoParams(t *testing.T) {
	handler := NewAppRootHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `data-form=""`) {
		t.Error("body should render empty form attribute")
	}
}
