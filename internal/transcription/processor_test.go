package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediascribe/mediascribe/internal/align"
	"github.com/mediascribe/mediascribe/internal/diarize"
	"github.com/mediascribe/mediascribe/internal/speech"
)

type recognizerStub struct {
	transcribeFn func(ctx context.Context, audioPath string) (*speech.Transcript, error)
}

func (s recognizerStub) Transcribe(ctx context.Context, audioPath string) (*speech.Transcript, error) {
	return s.transcribeFn(ctx, audioPath)
}

func (s recognizerStub) Name() string { return "stub" }

type diarizerStub struct {
	diarizeFn func(ctx context.Context, audioPath string) ([]align.DiarizationSegment, error)
}

func (s diarizerStub) Diarize(ctx context.Context, audioPath string) ([]align.DiarizationSegment, error) {
	return s.diarizeFn(ctx, audioPath)
}

func (s diarizerStub) Name() string { return "stub" }

// writeTempWAV simulates the normalizer producing an intermediate artifact.
func writeTempWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "normalized.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func normalizeTo(path string) normalizeFunc {
	return func(context.Context, string, string) (string, error) {
		return path, nil
	}
}

func loadRecognizer(rec speech.Recognizer) recognizerLoader {
	return func() (speech.Recognizer, error) { return rec, nil }
}

func loadDiarizer(dia diarize.Diarizer) diarizerLoader {
	return func(context.Context) (diarize.Diarizer, error) { return dia, nil }
}

func fixedDuration(sec float64) durationFunc {
	return func(context.Context, string) (float64, error) { return sec, nil }
}

func TestProcessMergesSpeakers(t *testing.T) {
	wav := writeTempWAV(t)

	rec := recognizerStub{transcribeFn: func(context.Context, string) (*speech.Transcript, error) {
		return &speech.Transcript{
			Text:     "hello there",
			Language: "en",
			Duration: 8,
			Segments: []align.TranscriptSegment{
				{Start: 0, End: 4, Text: " hello "},
				{Start: 4, End: 8, Text: " there "},
			},
		}, nil
	}}
	dia := diarizerStub{diarizeFn: func(context.Context, string) ([]align.DiarizationSegment, error) {
		return []align.DiarizationSegment{
			{Start: 0, End: 4, Speaker: "SPEAKER_00"},
			{Start: 4, End: 8, Speaker: "SPEAKER_01"},
		}, nil
	}}

	p := newProcessor(normalizeTo(wav), fixedDuration(8), loadRecognizer(rec), loadDiarizer(dia), "")
	result, err := p.Process(context.Background(), "input.mp3")
	require.NoError(t, err)

	assert.Equal(t, "hello there", result.Text)
	assert.Equal(t, "en", result.Language)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, "SPEAKER_00", result.Segments[0].Speaker)
	assert.Equal(t, "hello", result.Segments[0].Text)
	assert.Equal(t, "SPEAKER_01", result.Segments[1].Speaker)
}

func TestProcessRemovesIntermediateOnRecognitionFailure(t *testing.T) {
	wav := writeTempWAV(t)

	rec := recognizerStub{transcribeFn: func(context.Context, string) (*speech.Transcript, error) {
		return nil, errors.New("model exploded")
	}}

	p := newProcessor(normalizeTo(wav), fixedDuration(0), loadRecognizer(rec), loadDiarizer(diarizerStub{}), "")
	_, err := p.Process(context.Background(), "input.mp3")
	require.Error(t, err)
	assert.ErrorContains(t, err, "transcribe")

	_, statErr := os.Stat(wav)
	assert.True(t, os.IsNotExist(statErr), "intermediate artifact must be deleted on failure")
}

func TestProcessRemovesIntermediateOnSuccess(t *testing.T) {
	wav := writeTempWAV(t)

	rec := recognizerStub{transcribeFn: func(context.Context, string) (*speech.Transcript, error) {
		return &speech.Transcript{Text: "ok", Language: "en", Duration: 1}, nil
	}}
	dia := diarizerStub{diarizeFn: func(context.Context, string) ([]align.DiarizationSegment, error) {
		return nil, nil
	}}

	p := newProcessor(normalizeTo(wav), fixedDuration(1), loadRecognizer(rec), loadDiarizer(dia), "")
	_, err := p.Process(context.Background(), "input.mp3")
	require.NoError(t, err)

	_, statErr := os.Stat(wav)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessNeverDeletesOriginalInput(t *testing.T) {
	original := writeTempWAV(t)

	rec := recognizerStub{transcribeFn: func(context.Context, string) (*speech.Transcript, error) {
		return nil, errors.New("boom")
	}}

	// Normalizer returns the input path unchanged (already a 16kHz WAV).
	p := newProcessor(normalizeTo(original), fixedDuration(0), loadRecognizer(rec), loadDiarizer(diarizerStub{}), "")
	_, err := p.Process(context.Background(), original)
	require.Error(t, err)

	_, statErr := os.Stat(original)
	assert.NoError(t, statErr, "original input must survive")
}

func TestProcessFallsBackWhenDiarizationFails(t *testing.T) {
	wav := writeTempWAV(t)

	rec := recognizerStub{transcribeFn: func(context.Context, string) (*speech.Transcript, error) {
		return &speech.Transcript{
			Text:     "a b c",
			Language: "en",
			Duration: 25,
			Segments: []align.TranscriptSegment{
				{Start: 0, End: 9, Text: "a"},
				{Start: 11, End: 19, Text: "b"},
				{Start: 21, End: 24, Text: "c"},
			},
		}, nil
	}}
	dia := diarizerStub{diarizeFn: func(context.Context, string) ([]align.DiarizationSegment, error) {
		return nil, errors.New("pipeline crashed")
	}}

	p := newProcessor(normalizeTo(wav), fixedDuration(25), loadRecognizer(rec), loadDiarizer(dia), "")
	result, err := p.Process(context.Background(), "input.mp3")
	require.NoError(t, err, "diarization failure must not surface")

	require.Len(t, result.Segments, 3)
	assert.Equal(t, "SPEAKER_1", result.Segments[0].Speaker)
	assert.Equal(t, "SPEAKER_2", result.Segments[1].Speaker)
	assert.Equal(t, "SPEAKER_1", result.Segments[2].Speaker)
}

func TestProcessDiarizerLoadFailureIsPermanentFallback(t *testing.T) {
	loadCalls := 0
	loadDia := func(context.Context) (diarize.Diarizer, error) {
		loadCalls++
		return nil, errors.New("server down")
	}
	rec := recognizerStub{transcribeFn: func(context.Context, string) (*speech.Transcript, error) {
		return &speech.Transcript{
			Text:     "x",
			Language: "en",
			Duration: 5,
			Segments: []align.TranscriptSegment{{Start: 0, End: 5, Text: "x"}},
		}, nil
	}}

	p := newProcessor(normalizeTo(writeTempWAV(t)), fixedDuration(5), loadRecognizer(rec), loadDia, "")

	for i := 0; i < 3; i++ {
		result, err := p.Process(context.Background(), "input.mp3")
		require.NoError(t, err)
		require.Len(t, result.Segments, 1)
		assert.Equal(t, "SPEAKER_1", result.Segments[0].Speaker)
	}
	assert.Equal(t, 1, loadCalls, "engine setup must not be retried per instance")
}

func TestProcessRecognizerLoadFailureIsFatal(t *testing.T) {
	loadRec := func() (speech.Recognizer, error) {
		return nil, errors.New("no api key")
	}

	p := newProcessor(normalizeTo("unused"), fixedDuration(0), loadRec, loadDiarizer(diarizerStub{}), "")
	_, err := p.Process(context.Background(), "input.mp3")
	require.Error(t, err)
	assert.ErrorContains(t, err, "load recognizer")
}

func TestProcessModelsLoadOnce(t *testing.T) {
	recLoads := 0
	rec := recognizerStub{transcribeFn: func(context.Context, string) (*speech.Transcript, error) {
		return &speech.Transcript{Text: "x", Language: "en", Duration: 1}, nil
	}}
	loadRec := func() (speech.Recognizer, error) {
		recLoads++
		return rec, nil
	}
	diaLoads := 0
	loadDia := func(context.Context) (diarize.Diarizer, error) {
		diaLoads++
		return diarizerStub{diarizeFn: func(context.Context, string) ([]align.DiarizationSegment, error) {
			return nil, nil
		}}, nil
	}

	wavs := []string{writeTempWAV(t), writeTempWAV(t)}
	i := 0
	normalize := func(context.Context, string, string) (string, error) {
		path := wavs[i]
		i++
		return path, nil
	}

	p := newProcessor(normalize, fixedDuration(1), loadRec, loadDia, "")
	for range wavs {
		_, err := p.Process(context.Background(), "input.mp3")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, recLoads)
	assert.Equal(t, 1, diaLoads)
}
