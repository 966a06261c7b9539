package models

import "time"

const (
	JobKindImage = "image"
	JobKindVideo = "video"
)

const (
	JobStatusRunning   = "running"
	JobStatusDone      = "done"
	JobStatusError     = "error"
	JobStatusCancelled = "cancelled"
)

// Job tracks one compression request. The API returns a job_id on POST /start;
// the client polls GET /progress/{job_id} until the status is terminal.
//
// A Job is owned by the registry: all mutation happens inside registry-guarded
// operations, and once the status leaves "running" it never changes again.
type Job struct {
	ID           string
	Kind         string
	Status       string
	OriginalName string
	InputPath    string
	OutputPath   string
	ProgressPath string  // sideband progress sink, video jobs only
	Duration     float64 // expected media duration in seconds; 0 means unknown
	ErrorMessage string
	Process      Process // held while running, released on transition out
	CreatedAt    time.Time
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status != JobStatusRunning
}

// Process is a handle on a live external encode, exposed by the transcoder.
type Process interface {
	// Alive reports whether the process is still running. Non-blocking.
	Alive() bool

	// ExitErr returns the process exit error once it has finished, nil for a
	// clean exit or while still running.
	ExitErr() error

	// Stop terminates the process, gracefully first and forcefully if it does
	// not exit. Best-effort and non-blocking.
	Stop()
}

// ProgressSnapshot is the answer to a progress poll. Percent and TimeLeft are
// nil when the media duration is unknown, not zero.
type ProgressSnapshot struct {
	JobID    string   `json:"job_id"`
	Status   string   `json:"status"`
	Percent  *float64 `json:"percent"`
	TimeLeft *float64 `json:"time_left"`
	Error    string   `json:"error,omitempty"`
}

// RemovedFile reports the per-file outcome of a cancellation cleanup.
type RemovedFile struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"` // "removed", "missing", or an error message
}
