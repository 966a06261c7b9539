package models

const (
	QualityHigh     = "high"
	QualityBalanced = "balanced"
	QualitySmall    = "small"
	QualityXS       = "xs"

	CodecH265 = "h265"
	CodecH264 = "h264"

	Resolution720p     = "720p"
	Resolution480p     = "480p"
	Resolution360p     = "360p"
	ResolutionOriginal = "original"
)

var validQualities = map[string]bool{
	QualityHigh:     true,
	QualityBalanced: true,
	QualitySmall:    true,
	QualityXS:       true,
}

var validCodecs = map[string]bool{
	CodecH265: true,
	CodecH264: true,
}

var validResolutions = map[string]bool{
	Resolution720p:     true,
	Resolution480p:     true,
	Resolution360p:     true,
	ResolutionOriginal: true,
}

// Options are the resolved encode options for a video job. Always normalized:
// construct via ParseOptions so every field holds a valid enum value.
type Options struct {
	Quality    string
	Codec      string
	Resolution string
}

// ParseOptions validates the client-supplied option strings against the fixed
// enums, falling back to the defaults (balanced, h265, original) for anything
// absent or unrecognized. Unknown values are never an error.
func ParseOptions(quality, codec, resolution string) Options {
	opts := Options{
		Quality:    QualityBalanced,
		Codec:      CodecH265,
		Resolution: ResolutionOriginal,
	}
	if validQualities[quality] {
		opts.Quality = quality
	}
	if validCodecs[codec] {
		opts.Codec = codec
	}
	if validResolutions[resolution] {
		opts.Resolution = resolution
	}
	return opts
}

// EncodeParams describes one external encode invocation.
type EncodeParams struct {
	InputPath    string
	OutputPath   string
	ProgressPath string // sideband sink the encoder writes progress snapshots to
	Options      Options
}
