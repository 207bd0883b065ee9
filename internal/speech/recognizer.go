// Package speech converts normalized audio into timed transcript segments.
package speech

import (
	"context"

	"github.com/mediascribe/mediascribe/internal/align"
)

// Transcript is the full recognizer output for one audio file.
type Transcript struct {
	Text     string                    `json:"text"`
	Segments []align.TranscriptSegment `json:"segments"`
	Language string                    `json:"language"`
	Duration float64                   `json:"duration"`
}

// Recognizer is the interface for speech-to-text backends.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath string) (*Transcript, error)
	Name() string
}
