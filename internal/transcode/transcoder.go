// Package transcode drives the external ffmpeg/ffprobe binaries: it probes
// media duration, builds encode command lines from resolved options, and
// supervises the lifecycle of one encode process per job.
package transcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/kiranshivaraju/mediapress/pkg/models"
)

// ErrUnavailable is returned when the ffmpeg binary cannot be resolved.
var ErrUnavailable = errors.New("ffmpeg not found in PATH")

// Transcoder launches and supervises external encode processes.
type Transcoder struct {
	ffmpegPath  string
	ffprobePath string
}

// New resolves the ffmpeg and ffprobe binaries and returns a Transcoder.
// Pass empty strings to resolve from PATH. A missing ffmpeg is fatal
// (ErrUnavailable); a missing ffprobe only disables duration probing.
func New(ffmpegPath, ffprobePath string) (*Transcoder, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	resolved, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, ffmpegPath)
	}

	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	probeResolved, err := exec.LookPath(ffprobePath)
	if err != nil {
		probeResolved = ""
	}

	return &Transcoder{ffmpegPath: resolved, ffprobePath: probeResolved}, nil
}

type ffprobeOutput struct {
	Format ffprobeFormat `json:"format"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// ProbeDuration returns the media duration of the file in seconds, or 0 when
// the duration cannot be determined. Probe failures are not errors: an unknown
// duration only disables percent reporting for the job.
func (t *Transcoder) ProbeDuration(ctx context.Context, path string) float64 {
	if t.ffprobePath == "" {
		return 0
	}

	cmd := exec.CommandContext(ctx, t.ffprobePath,
		"-v", "error",
		"-show_format",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0
	}

	var ff ffprobeOutput
	if err := json.Unmarshal(output, &ff); err != nil {
		return 0
	}

	dur, err := strconv.ParseFloat(ff.Format.Duration, 64)
	if err != nil || dur < 0 {
		return 0
	}
	return dur
}

// Start launches the encode described by p and returns a handle on the running
// process. It does not wait for the encode: progress is communicated solely
// through the progress sink, and completion through the process exit. The
// process deliberately outlives the submitting request; it is stopped only via
// the handle.
func (t *Transcoder) Start(p models.EncodeParams) (models.Process, error) {
	args := buildArgs(p)

	cmd := exec.Command(t.ffmpegPath, args...)
	// Stdout/stderr stay unset so the child inherits /dev/null. Capturing them
	// would require draining the pipes for the lifetime of the encode; a full
	// pipe would deadlock a long-running ffmpeg.

	proc := newProcess(cmd)
	if err := proc.start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return proc, nil
}

var crfByQuality = map[string]int{
	models.QualityHigh:     20,
	models.QualityBalanced: 28,
	models.QualitySmall:    30,
	models.QualityXS:       32,
}

var scaleByResolution = map[string]string{
	models.Resolution720p: "scale=-2:720",
	models.Resolution480p: "scale=-2:480",
	models.Resolution360p: "scale=-2:360",
}

func buildArgs(p models.EncodeParams) []string {
	vcodec := "libx265"
	if p.Options.Codec == models.CodecH264 {
		vcodec = "libx264"
	}

	args := []string{
		"-y", "-nostats", "-hide_banner", "-loglevel", "warning",
		"-progress", p.ProgressPath,
		"-i", p.InputPath,
		"-c:v", vcodec,
		"-crf", strconv.Itoa(crfByQuality[p.Options.Quality]),
		"-preset", "medium",
		"-c:a", "aac",
		"-b:a", "96k",
	}

	if scale, ok := scaleByResolution[p.Options.Resolution]; ok {
		args = append(args, "-vf", scale)
	}

	args = append(args, p.OutputPath)
	return args
}
