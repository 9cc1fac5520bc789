package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBodyLimitAllowsSmallPayload(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusOK)
	})
	handler := BodyLimit{Max: 64}.Middleware(next)

	req := httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(`{"id":"x"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if got != `{"id":"x"}` {
		t.Fatalf("body not passed through: %q", got)
	}
}

func TestBodyLimitRejectsOversizedPayload(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})
	handler := BodyLimit{Max: 8}.Middleware(next)

	req := httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(strings.Repeat("a", 32)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", rr.Code)
	}
}

func TestBodyLimitDisabledPassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler := BodyLimit{}.Middleware(next)

	req := httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(strings.Repeat("a", 1<<12)))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("next handler should run when limit disabled")
	}
}
