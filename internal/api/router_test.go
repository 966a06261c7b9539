package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/mediapress/internal/api"
)

func echoRoute(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", name)
		w.WriteHeader(http.StatusOK)
	}
}

func paramEcho(t *testing.T, name, wantParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantParam, chi.URLParam(r, "jobID"))
		w.Header().Set("X-Handler", name)
		w.WriteHeader(http.StatusOK)
	}
}

func TestRouter_Wiring(t *testing.T) {
	router := api.NewRouter(api.Dependencies{
		HealthHandler:   echoRoute("health"),
		StartHandler:    echoRoute("start"),
		ProgressHandler: paramEcho(t, "progress", "abc-123"),
		DownloadHandler: paramEcho(t, "download", "abc-123"),
		CancelHandler:   echoRoute("cancel"),
	})

	tests := []struct {
		method  string
		target  string
		handler string
	}{
		{http.MethodGet, "/health", "health"},
		{http.MethodPost, "/start", "start"},
		{http.MethodGet, "/progress/abc-123", "progress"},
		{http.MethodGet, "/download/abc-123", "download"},
		{http.MethodPost, "/cancel", "cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.handler, rec.Header().Get("X-Handler"))
		})
	}
}

func TestRouter_MethodAndRouteMismatches(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/start", http.StatusMethodNotAllowed},
		{http.MethodPost, "/progress/abc", http.StatusMethodNotAllowed},
		{http.MethodGet, "/progress/", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_UnwiredHandlerAnswers501(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
