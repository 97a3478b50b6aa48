package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeout_Default(t *testing.T) {
	mwFunc := Timeout(TimeoutConfig{
		Default:  50 * time.Millisecond,
		Extended: time.Second,
	})

	slow := mwFunc(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
			w.WriteHeader(http.StatusOK)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/line-users", nil)
	rec := httptest.NewRecorder()
	slow.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
}

func TestTimeout_ExtendedPattern(t *testing.T) {
	mwFunc := Timeout(TimeoutConfig{
		Default:          10 * time.Millisecond,
		Extended:         500 * time.Millisecond,
		ExtendedPatterns: []string{"/inspect"},
	})

	handler := mwFunc(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/inspect", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 under extended timeout", rec.Code)
	}
}

func TestTimeout_SkipPattern(t *testing.T) {
	mwFunc := Timeout(TimeoutConfig{
		Default:      10 * time.Millisecond,
		SkipPatterns: []string{"/stream"},
	})

	handler := mwFunc(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); ok {
			t.Error("skip pattern path should have no deadline")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
