package transcode

import (
	"strconv"
	"strings"
)

// Progress is a normalized snapshot of an ffmpeg -progress sink.
type Progress struct {
	Elapsed  float64 // seconds of media encoded so far
	Finished bool
}

// ParseProgress reads the raw contents of a progress sink and returns the most
// recent elapsed time and whether the encode has signalled completion.
//
// The sink is append-only key=value text; ffmpeg writes a snapshot roughly every
// half second and terminates each one with a "progress=continue" or
// "progress=end" line. The file may be read mid-write, so a truncated final line
// is normal. Elapsed time appears either as a microsecond counter (out_time_us,
// out_time_ms) or as a clock string (out_time=HH:MM:SS.ffffff); either is
// accepted, and later snapshots override earlier ones. Malformed or empty input
// parses as no progress yet.
func ParseProgress(data []byte) Progress {
	var p Progress

	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] != "" {
		// No trailing newline: the final line is mid-write. A truncated counter
		// like "out_time_us=812" would parse as a tiny valid value and make the
		// reported progress go backwards, so drop it.
		lines = lines[:len(lines)-1]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case "out_time_us", "out_time_ms":
			// Both are microseconds; out_time_ms is misnamed in ffmpeg.
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				p.Elapsed = float64(us) / 1e6
			}
		case "out_time":
			if secs, ok := parseClock(value); ok {
				p.Elapsed = secs
			}
		case "progress":
			if value == "end" {
				p.Finished = true
			}
		}
	}

	return p
}

// parseClock parses HH:MM:SS[.fraction] into seconds.
func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}

	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}
