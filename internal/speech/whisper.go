package speech

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mediascribe/mediascribe/internal/align"
)

// WhisperConfig holds configuration for the Whisper recognizer.
type WhisperConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
}

// Whisper transcribes audio through OpenAI's Whisper API or any compatible
// endpoint, requesting verbose JSON so per-segment timings come back.
type Whisper struct {
	client *openai.Client
	model  string
}

// NewWhisper creates a Whisper recognizer with defaults applied.
func NewWhisper(cfg WhisperConfig) *Whisper {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Whisper{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (w *Whisper) Name() string { return "openai-whisper" }

// Transcribe uploads the audio file and maps the verbose response onto the
// aligner's segment type, in the order the API returned them.
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (*Transcript, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}

	segments := make([]align.TranscriptSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, align.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}

	language := resp.Language
	if language == "" {
		language = "en"
	}

	return &Transcript{
		Text:     resp.Text,
		Segments: segments,
		Language: language,
		Duration: resp.Duration,
	}, nil
}
