// Package transcription runs the audio processing pipeline and persists
// its results.
package transcription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mediascribe/mediascribe/internal/align"
	"github.com/mediascribe/mediascribe/internal/config"
	"github.com/mediascribe/mediascribe/internal/diarize"
	"github.com/mediascribe/mediascribe/internal/media"
	"github.com/mediascribe/mediascribe/internal/speech"
)

type normalizeFunc func(ctx context.Context, audioPath, tmpDir string) (string, error)
type durationFunc func(ctx context.Context, audioPath string) (float64, error)
type recognizerLoader func() (speech.Recognizer, error)
type diarizerLoader func(ctx context.Context) (diarize.Diarizer, error)

// Processor sequences normalize -> transcribe -> diarize -> align for one
// audio file at a time. Model handles are loaded on first use and cached
// for the lifetime of the instance; a Processor is not safe for concurrent
// reuse.
type Processor struct {
	normalize      normalizeFunc
	probeDuration  durationFunc
	loadRecognizer recognizerLoader
	loadDiarizer   diarizerLoader
	tmpDir         string

	recognizer   speech.Recognizer
	diarizer     diarize.Diarizer
	diarizerDown bool
}

// NewProcessor wires the configured speech backend and diarization engine.
func NewProcessor(cfg *config.Config) *Processor {
	loadRecognizer := func() (speech.Recognizer, error) {
		switch cfg.Speech.Backend {
		case "local":
			return speech.NewLocal(speech.LocalConfig{BaseURL: cfg.Speech.LocalBaseURL}), nil
		case "openai", "":
			return speech.NewWhisper(speech.WhisperConfig{
				APIKey:  cfg.Speech.OpenAIKey,
				BaseURL: cfg.Speech.OpenAIBaseURL,
				Model:   cfg.Speech.Model,
			}), nil
		default:
			return nil, fmt.Errorf("unknown speech backend %q", cfg.Speech.Backend)
		}
	}
	loadDiarizer := func(ctx context.Context) (diarize.Diarizer, error) {
		engine := diarize.NewEngine(diarize.EngineConfig{BaseURL: cfg.Diarize.BaseURL})
		if err := engine.Ping(ctx); err != nil {
			return nil, err
		}
		return engine, nil
	}
	return newProcessor(media.Normalize, media.Duration, loadRecognizer, loadDiarizer, cfg.Media.TmpDir)
}

func newProcessor(normalize normalizeFunc, probe durationFunc, loadRec recognizerLoader, loadDia diarizerLoader, tmpDir string) *Processor {
	return &Processor{
		normalize:      normalize,
		probeDuration:  probe,
		loadRecognizer: loadRec,
		loadDiarizer:   loadDia,
		tmpDir:         tmpDir,
	}
}

// Process transcribes and diarizes the given audio file and merges both
// into a speaker-attributed transcript. The normalized intermediate WAV is
// deleted on every exit path; the original input file is never touched.
// Recognition errors are fatal; diarization errors degrade to the
// deterministic fallback partition.
func (p *Processor) Process(ctx context.Context, audioPath string) (*align.Result, error) {
	if err := p.ensureModels(ctx); err != nil {
		return nil, err
	}

	wavPath, err := p.normalize(ctx, audioPath, p.tmpDir)
	if err != nil {
		return nil, fmt.Errorf("normalize audio: %w", err)
	}
	defer func() {
		if wavPath == audioPath {
			return
		}
		if err := media.RemoveIfExists(wavPath); err != nil {
			slog.Warn("failed to remove intermediate audio", "path", wavPath, "error", err)
		}
	}()

	transcript, err := p.recognizer.Transcribe(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	diarization := p.diarizeWithFallback(ctx, wavPath, transcript.Duration)

	return &align.Result{
		Text:     transcript.Text,
		Segments: align.Merge(transcript.Segments, diarization),
		Language: transcript.Language,
	}, nil
}

// ensureModels lazily sets up the recognizer and the diarization engine.
// A recognizer that cannot be built is fatal. A diarization engine that
// cannot be reached flips this instance permanently to the fallback
// partition.
func (p *Processor) ensureModels(ctx context.Context) error {
	if p.recognizer == nil {
		rec, err := p.loadRecognizer()
		if err != nil {
			return fmt.Errorf("load recognizer: %w", err)
		}
		slog.Info("recognizer ready", "backend", rec.Name())
		p.recognizer = rec
	}

	if p.diarizer == nil && !p.diarizerDown {
		dia, err := p.loadDiarizer(ctx)
		if err != nil {
			slog.Error("diarization engine unavailable, using fallback partition", "error", err)
			p.diarizerDown = true
			return nil
		}
		slog.Info("diarization engine ready", "engine", dia.Name())
		p.diarizer = dia
	}

	return nil
}

func (p *Processor) diarizeWithFallback(ctx context.Context, wavPath string, durationSec float64) []align.DiarizationSegment {
	if p.diarizer != nil {
		segments, err := p.diarizer.Diarize(ctx, wavPath)
		if err == nil {
			return segments
		}
		slog.Error("diarization failed, using fallback partition", "error", err)
	}

	if durationSec <= 0 {
		probed, err := p.probeDuration(ctx, wavPath)
		if err != nil {
			slog.Warn("could not determine audio duration for fallback", "error", err)
			return nil
		}
		durationSec = probed
	}

	return diarize.FallbackSegments(durationSec)
}
