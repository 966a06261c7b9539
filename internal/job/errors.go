package job

import "errors"

var (
	// ErrNotFound means the job id is unknown to the registry. A job cancelled
	// moments ago also answers NotFound; callers treat that as terminal.
	ErrNotFound = errors.New("job not found")

	// ErrNotReady means a download was requested before the job completed, or
	// the artifact is missing from disk despite a done status.
	ErrNotReady = errors.New("job artifact not ready")

	// ErrInvalidInput means the upload was unusable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExists means a job id collided with a live job.
	ErrExists = errors.New("job already exists")
)
