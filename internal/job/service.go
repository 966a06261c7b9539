// Package job implements the asynchronous compression orchestrator: the job
// registry, the per-job state machine, and the operations behind the submit,
// progress, download, and cancel endpoints.
package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/mediapress/internal/transcode"
	"github.com/kiranshivaraju/mediapress/pkg/models"
)

// Transcoder is the external video encoder collaborator.
type Transcoder interface {
	// ProbeDuration returns the media duration in seconds, 0 when unknown.
	ProbeDuration(ctx context.Context, path string) float64

	// Start launches an encode and returns a handle on the running process
	// without waiting for it.
	Start(p models.EncodeParams) (models.Process, error)
}

// ImageCompressor is the synchronous image collaborator. Compress writes a
// recompressed copy next to the input and returns its path, erroring on
// undecodable input.
type ImageCompressor interface {
	Compress(path string) (string, error)
}

// Service is the job orchestrator. It classifies submissions, runs the image
// path synchronously, supervises video encodes through the Transcoder, and
// answers polls, cancels, and downloads against the registry.
type Service struct {
	registry    *Registry
	transcoder  Transcoder
	images      ImageCompressor
	isImage     func(path string) bool
	uploadDir   string
	downloadDir string
}

// NewService wires the orchestrator. isImage is the content classifier: it
// reports whether a saved upload decodes as an image.
func NewService(registry *Registry, tc Transcoder, images ImageCompressor, isImage func(string) bool, uploadDir, downloadDir string) *Service {
	return &Service{
		registry:    registry,
		transcoder:  tc,
		images:      images,
		isImage:     isImage,
		uploadDir:   uploadDir,
		downloadDir: downloadDir,
	}
}

// Create persists the upload under a fresh job id, classifies it, and either
// compresses it synchronously (images, returning a terminal job) or launches
// an encode process and returns a running job immediately. It never blocks on
// the video encode itself.
func (s *Service) Create(ctx context.Context, upload io.Reader, originalName string, opts models.Options) (models.Job, error) {
	id := uuid.New().String()
	ext := safeExt(originalName)

	inputPath := filepath.Join(s.uploadDir, id+ext)
	if err := saveUpload(inputPath, upload); err != nil {
		return models.Job{}, fmt.Errorf("save upload: %w", err)
	}

	j := models.Job{
		ID:           id,
		OriginalName: filepath.Base(originalName),
		InputPath:    inputPath,
		CreatedAt:    time.Now(),
	}

	if s.isImage(inputPath) {
		j.Kind = models.JobKindImage
		s.compressImage(&j)
	} else {
		j.Kind = models.JobKindVideo
		if err := s.startEncode(ctx, &j, opts); err != nil {
			os.Remove(inputPath)
			return models.Job{}, err
		}
	}

	if err := s.registry.Create(&j); err != nil {
		// A v4 uuid collision is not a practical concern, but the registry
		// still refuses rather than clobbering a live job.
		if j.Process != nil {
			j.Process.Stop()
		}
		return models.Job{}, err
	}

	slog.Info("job created",
		"job_id", j.ID,
		"kind", j.Kind,
		"status", j.Status,
		"original_name", j.OriginalName,
	)

	return j, nil
}

// compressImage runs the synchronous image path, leaving j in a terminal
// state either way.
func (s *Service) compressImage(j *models.Job) {
	out, err := s.images.Compress(j.InputPath)
	if err != nil {
		j.Status = models.JobStatusError
		j.ErrorMessage = err.Error()
		return
	}

	finalPath := filepath.Join(s.downloadDir, filepath.Base(out))
	if err := os.Rename(out, finalPath); err != nil {
		j.Status = models.JobStatusError
		j.ErrorMessage = fmt.Sprintf("move artifact: %v", err)
		return
	}

	j.Status = models.JobStatusDone
	j.OutputPath = finalPath
}

// startEncode resolves the duration, reserves the output and sink paths, and
// launches the external encode.
func (s *Service) startEncode(ctx context.Context, j *models.Job, opts models.Options) error {
	ext := filepath.Ext(j.InputPath)
	if ext == "" {
		ext = ".mp4"
	}

	j.Duration = s.transcoder.ProbeDuration(ctx, j.InputPath)
	j.OutputPath = filepath.Join(s.downloadDir, j.ID+"_compressed"+ext)
	j.ProgressPath = filepath.Join(s.uploadDir, j.ID+".progress")

	proc, err := s.transcoder.Start(models.EncodeParams{
		InputPath:    j.InputPath,
		OutputPath:   j.OutputPath,
		ProgressPath: j.ProgressPath,
		Options:      opts,
	})
	if err != nil {
		return fmt.Errorf("start encode: %w", err)
	}

	j.Status = models.JobStatusRunning
	j.Process = proc
	return nil
}

// Poll reports the job's progress, lazily transitioning a running job whose
// encode has finished. Terminal jobs answer from stored state without touching
// the process or the sink again.
func (s *Service) Poll(id string) (models.ProgressSnapshot, error) {
	snap, ok := s.registry.Snapshot(id)
	if !ok {
		return models.ProgressSnapshot{}, ErrNotFound
	}

	if snap.Terminal() {
		return s.snapshot(snap), nil
	}

	// Sink and liveness are read outside the registry lock; the transition
	// decision is revalidated inside Update so a racing poller cannot
	// double-complete the job.
	progress := s.readProgress(snap.ProgressPath)
	alive := snap.Process != nil && snap.Process.Alive()

	// Two independent done-signals: the stream's explicit end marker, or the
	// process having exited. The stream may lag a fast encode, and an abrupt
	// exit may never write a final snapshot, so either one suffices.
	if progress.Finished || !alive {
		status := models.JobStatusDone
		var msg string
		if !progress.Finished && snap.Process != nil {
			if exitErr := snap.Process.ExitErr(); exitErr != nil {
				status = models.JobStatusError
				msg = fmt.Sprintf("encode failed: %v", exitErr)
			}
		}

		_ = s.registry.Update(id, func(j *models.Job) {
			if j.Terminal() {
				return
			}
			j.Status = status
			j.ErrorMessage = msg
			j.Process = nil
		})

		snap, ok = s.registry.Snapshot(id)
		if !ok {
			// Cancelled out from under us; NotFound is the terminal answer.
			return models.ProgressSnapshot{}, ErrNotFound
		}
		slog.Info("job finished", "job_id", id, "status", snap.Status)
		return s.snapshot(snap), nil
	}

	result := models.ProgressSnapshot{JobID: snap.ID, Status: snap.Status}
	if snap.Duration > 0 {
		percent := progress.Elapsed / snap.Duration * 100
		if percent > 100 {
			percent = 100
		}
		timeLeft := snap.Duration - progress.Elapsed
		if timeLeft < 0 {
			timeLeft = 0
		}
		result.Percent = &percent
		result.TimeLeft = &timeLeft
	}
	return result, nil
}

// readProgress reads the sink if it exists. A missing or empty sink is not an
// error; it means no snapshot has been written yet.
func (s *Service) readProgress(path string) transcode.Progress {
	if path == "" {
		return transcode.Progress{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return transcode.Progress{}
	}
	return transcode.ParseProgress(data)
}

// snapshot renders a terminal job's stored state.
func (s *Service) snapshot(j models.Job) models.ProgressSnapshot {
	result := models.ProgressSnapshot{
		JobID:  j.ID,
		Status: j.Status,
		Error:  j.ErrorMessage,
	}
	if j.Status == models.JobStatusDone {
		percent := 100.0
		timeLeft := 0.0
		result.Percent = &percent
		result.TimeLeft = &timeLeft
	}
	return result
}

// Cancel stops the encode if one is still running, removes the job's files
// best-effort, and drops the registry entry unconditionally. Per-file cleanup
// failures are reported in the outcome list, never as an overall error.
func (s *Service) Cancel(id string) ([]models.RemovedFile, error) {
	snap, ok := s.registry.Snapshot(id)
	if !ok {
		return nil, ErrNotFound
	}

	if snap.Process != nil && snap.Process.Alive() {
		snap.Process.Stop()
	}

	var removed []models.RemovedFile
	for _, path := range []string{snap.InputPath, snap.OutputPath, snap.ProgressPath} {
		if path == "" {
			continue
		}
		removed = append(removed, removeFile(path))
	}

	// The entry goes away even if the process could not be confirmed dead:
	// registry hygiene wins over strict accounting of a process that may
	// already be unkillable.
	s.registry.Remove(id)

	slog.Info("job cancelled", "job_id", id, "files", len(removed))
	return removed, nil
}

// Download returns the artifact path and a presentation filename for a done
// job. A done status with the artifact missing from disk still answers
// ErrNotReady, covering artifacts lost to the retention sweep.
func (s *Service) Download(id string) (string, string, error) {
	snap, ok := s.registry.Snapshot(id)
	if !ok {
		return "", "", ErrNotFound
	}
	if snap.Status != models.JobStatusDone {
		return "", "", ErrNotReady
	}
	if _, err := os.Stat(snap.OutputPath); err != nil {
		return "", "", ErrNotReady
	}

	return snap.OutputPath, downloadName(snap.OriginalName, snap.OutputPath), nil
}

func saveUpload(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func removeFile(path string) models.RemovedFile {
	err := os.Remove(path)
	switch {
	case err == nil:
		return models.RemovedFile{Path: path, Outcome: "removed"}
	case os.IsNotExist(err):
		return models.RemovedFile{Path: path, Outcome: "missing"}
	default:
		return models.RemovedFile{Path: path, Outcome: err.Error()}
	}
}

var extPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

// safeExt extracts a filesystem-safe extension from the client-supplied name.
// Stored filenames are built purely from the job id plus this extension; the
// original name itself is never used as a path component.
func safeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// downloadName derives a presentation filename from the original upload name,
// matching the artifact's extension.
func downloadName(originalName, outputPath string) string {
	base := filepath.Base(originalName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "media"
	}
	return base + "_compressed" + filepath.Ext(outputPath)
}
