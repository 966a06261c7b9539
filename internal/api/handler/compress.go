// Package handler implements the HTTP handlers for the compression API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kiranshivaraju/mediapress/internal/api/response"
	"github.com/kiranshivaraju/mediapress/internal/job"
	"github.com/kiranshivaraju/mediapress/internal/transcode"
	"github.com/kiranshivaraju/mediapress/pkg/models"
)

// memoryLimit bounds how much of a multipart body is buffered in memory
// before spilling to temp files.
const memoryLimit = 32 << 20

// Orchestrator is the job service interface the handlers depend on.
type Orchestrator interface {
	Create(ctx context.Context, upload io.Reader, originalName string, opts models.Options) (models.Job, error)
	Poll(id string) (models.ProgressSnapshot, error)
	Cancel(id string) ([]models.RemovedFile, error)
	Download(id string) (path string, filename string, err error)
}

// NewStartHandler returns the handler for POST /start: multipart file plus
// quality/codec/resolution form fields.
func NewStartHandler(svc Orchestrator, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := formFile(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
			return
		}
		defer file.Close()

		opts := models.ParseOptions(
			r.FormValue("quality"),
			r.FormValue("codec"),
			r.FormValue("resolution"),
		)

		j, err := svc.Create(r.Context(), file, header.Filename, opts)
		if err != nil {
			switch {
			case errors.Is(err, transcode.ErrUnavailable):
				response.Error(w, http.StatusServiceUnavailable, "TRANSCODER_UNAVAILABLE",
					"The video encoder is not available", nil)
			case errors.Is(err, job.ErrInvalidInput):
				response.Error(w, http.StatusBadRequest, "INVALID_INPUT",
					"The uploaded file is not usable", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to accept the upload", nil)
			}
			return
		}

		response.Accepted(w, map[string]string{
			"job_id": j.ID,
			"status": j.Status,
		})
	}
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart body")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("no file was uploaded")
	}
	return file, header, nil
}

type progressResponse struct {
	Status      string   `json:"status"`
	Percent     *float64 `json:"percent"`
	TimeLeft    *float64 `json:"time_left"`
	Error       string   `json:"error,omitempty"`
	DownloadURL string   `json:"download_url,omitempty"`
}

// NewProgressHandler returns the handler for GET /progress/{jobID}.
func NewProgressHandler(svc Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")

		snap, err := svc.Poll(id)
		if err != nil {
			if errors.Is(err, job.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No such job", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to read job progress", nil)
			return
		}

		resp := progressResponse{
			Status:   snap.Status,
			Percent:  snap.Percent,
			TimeLeft: snap.TimeLeft,
			Error:    snap.Error,
		}
		if snap.Status == models.JobStatusDone {
			resp.DownloadURL = "/download/" + id
		}

		response.JSON(w, resp)
	}
}

// NewDownloadHandler returns the handler for GET /download/{jobID}, serving
// the compressed artifact as an attachment.
func NewDownloadHandler(svc Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")

		path, filename, err := svc.Download(id)
		if err != nil {
			switch {
			case errors.Is(err, job.ErrNotFound):
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No such job", nil)
			case errors.Is(err, job.ErrNotReady):
				response.Error(w, http.StatusConflict, "NOT_READY",
					"The job has not produced an artifact yet", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to serve the artifact", nil)
			}
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		http.ServeFile(w, r, path)
	}
}

// NewCancelHandler returns the handler for POST /cancel with body {job_id}.
func NewCancelHandler(svc Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobID string `json:"job_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.JobID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job_id is required", nil)
			return
		}

		removed, err := svc.Cancel(req.JobID)
		if err != nil {
			if errors.Is(err, job.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No such job", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to cancel the job", nil)
			return
		}

		if removed == nil {
			removed = []models.RemovedFile{}
		}
		response.JSON(w, map[string]any{
			"ok":      true,
			"removed": removed,
		})
	}
}
