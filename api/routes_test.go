package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRoutesRequireAuth(t *testing.T) {
	app := newTestApplication()
	handler := composeRoutes(app)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/private"},
		{http.MethodDelete, "/api/user"},
		{http.MethodGet, "/api/events"},
		{http.MethodPost, "/api/events"},
		{http.MethodPost, "/api/events/batch"},
		{http.MethodPut, "/api/events/1"},
		{http.MethodDelete, "/api/events/1"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/1"},
		{http.MethodDelete, "/api/tasks/1"},
		{http.MethodPost, "/api/tasks/1/toggle"},
		{http.MethodGet, "/api/calendar"},
	}
	for _, p := range protected {
		r := httptest.NewRequest(p.method, p.path, nil)
		r.RemoteAddr = "127.0.0.1:9999"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got status %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRoutesHealthCheckIsPublic(t *testing.T) {
	app := newTestApplication()
	handler := composeRoutes(app)

	r := httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil)
	r.RemoteAddr = "127.0.0.1:9999"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRoutesMetricsIsPublic(t *testing.T) {
	app := newTestApplication()
	handler := composeRoutes(app)

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.RemoteAddr = "127.0.0.1:9999"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", w.Code, http.StatusOK)
	}
}
