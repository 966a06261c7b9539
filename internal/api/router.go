package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/kiranshivaraju/mediapress/internal/api/middleware"
	"github.com/kiranshivaraju/mediapress/internal/api/response"
)

// Dependencies holds the handlers the router wires up.
type Dependencies struct {
	HealthHandler   http.HandlerFunc
	StartHandler    http.HandlerFunc
	ProgressHandler http.HandlerFunc
	DownloadHandler http.HandlerFunc
	CancelHandler   http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/health", orNotImplemented(deps.HealthHandler))

	r.Post("/start", orNotImplemented(deps.StartHandler))
	r.Get("/progress/{jobID}", orNotImplemented(deps.ProgressHandler))
	r.Get("/download/{jobID}", orNotImplemented(deps.DownloadHandler))
	r.Post("/cancel", orNotImplemented(deps.CancelHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
