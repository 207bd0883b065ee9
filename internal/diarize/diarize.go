// Package diarize labels spans of an audio file by speaker identity.
package diarize

import (
	"context"
	"math"

	"github.com/mediascribe/mediascribe/internal/align"
)

// Diarizer partitions an audio file into speaker-attributed segments.
// Implementations may fail for any reason; callers substitute the
// deterministic fallback instead of surfacing the error.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]align.DiarizationSegment, error)
	Name() string
}

const (
	fallbackBucketSec = 10
	fallbackPeriodSec = 20
)

// FallbackSegments produces a model-free two-speaker partition of the given
// duration: contiguous 10-second buckets alternating SPEAKER_1/SPEAKER_2 on
// a 20-second period, the final bucket ending exactly at the duration.
// Duration 0 yields no segments.
func FallbackSegments(durationSec float64) []align.DiarizationSegment {
	var segments []align.DiarizationSegment

	for offset := 0; float64(offset) < durationSec; offset += fallbackBucketSec {
		speaker := "SPEAKER_1"
		if offset%fallbackPeriodSec >= fallbackBucketSec {
			speaker = "SPEAKER_2"
		}
		segments = append(segments, align.DiarizationSegment{
			Start:   float64(offset),
			End:     math.Min(float64(offset+fallbackBucketSec), durationSec),
			Speaker: speaker,
		})
	}

	return segments
}
