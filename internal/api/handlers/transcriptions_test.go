package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediascribe/mediascribe/internal/align"
	"github.com/mediascribe/mediascribe/internal/models"
	"github.com/mediascribe/mediascribe/internal/queue"
)

func newTestRouter() *chi.Mux {
	return chi.NewRouter()
}

type transcriptionStoreStub struct {
	files          map[uuid.UUID]*models.AudioFile
	transcriptions map[uuid.UUID]*models.Transcription
	statuses       map[uuid.UUID][]string
}

func newTranscriptionStoreStub() *transcriptionStoreStub {
	return &transcriptionStoreStub{
		files:          make(map[uuid.UUID]*models.AudioFile),
		transcriptions: make(map[uuid.UUID]*models.Transcription),
		statuses:       make(map[uuid.UUID][]string),
	}
}

func (s *transcriptionStoreStub) CreateAudioFile(ctx context.Context, filename string) (*models.AudioFile, error) {
	af := &models.AudioFile{
		ID:         uuid.New(),
		Filename:   filename,
		Status:     models.AudioStatusPending,
		UploadedAt: time.Now(),
	}
	s.files[af.ID] = af
	return af, nil
}

func (s *transcriptionStoreStub) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.statuses[id] = append(s.statuses[id], status)
	return nil
}

func (s *transcriptionStoreStub) SaveResult(ctx context.Context, audioFileID uuid.UUID, result *align.Result) (*models.Transcription, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	tr := &models.Transcription{
		ID:          uuid.New(),
		AudioFileID: audioFileID,
		Result:      raw,
		CompletedAt: time.Now(),
	}
	s.transcriptions[tr.ID] = tr
	return tr, nil
}

func (s *transcriptionStoreStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Transcription, error) {
	tr, ok := s.transcriptions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tr, nil
}

func (s *transcriptionStoreStub) List(ctx context.Context, limit int) ([]models.Transcription, error) {
	out := make([]models.Transcription, 0, len(s.transcriptions))
	for _, tr := range s.transcriptions {
		out = append(out, *tr)
	}
	return out, nil
}

type processorStub struct {
	result *align.Result
	err    error
	paths  []string
}

func (p *processorStub) Process(ctx context.Context, audioPath string) (*align.Result, error) {
	p.paths = append(p.paths, audioPath)
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type enqueuerStub struct {
	payloads []queue.TranscriptionProcessPayload
}

func (e *enqueuerStub) EnqueueTranscriptionProcess(payload queue.TranscriptionProcessPayload) error {
	e.payloads = append(e.payloads, payload)
	return nil
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "meeting.mp3")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake audio bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestTranscribeSync(t *testing.T) {
	store := newTranscriptionStoreStub()
	processor := &processorStub{result: &align.Result{
		Text:     "hello world",
		Language: "en",
		Segments: []align.AlignedSegment{{Start: 0, End: 1.5, Text: "hello world", Speaker: "SPEAKER_1"}},
	}}
	notifier := &notifierStub{}
	h := NewTranscriptionHandler(processor, nil, store, &enqueuerStub{}, notifier, t.TempDir())

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Text     string                 `json:"text"`
		Language string                 `json:"language"`
		Segments []align.AlignedSegment `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello world", resp.Text)
	assert.Equal(t, "en", resp.Language)
	require.Len(t, resp.Segments, 1)
	assert.Equal(t, "SPEAKER_1", resp.Segments[0].Speaker)

	assert.Equal(t, []string{models.EventTranscriptionCompleted}, notifier.events)

	// The uploaded temp file must be gone after a sync run.
	require.Len(t, processor.paths, 1)
	_, err := os.Stat(processor.paths[0])
	assert.True(t, os.IsNotExist(err))
}

func TestTranscribeSyncFailure(t *testing.T) {
	store := newTranscriptionStoreStub()
	processor := &processorStub{err: assert.AnError}
	notifier := &notifierStub{}
	h := NewTranscriptionHandler(processor, nil, store, &enqueuerStub{}, notifier, t.TempDir())

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{models.EventTranscriptionFailed}, notifier.events)

	require.Len(t, store.files, 1)
	for id := range store.files {
		assert.Equal(t, []string{models.AudioStatusProcessing, models.AudioStatusFailed}, store.statuses[id])
	}
}

func TestTranscribeAsyncEnqueues(t *testing.T) {
	store := newTranscriptionStoreStub()
	enqueuer := &enqueuerStub{}
	h := NewTranscriptionHandler(&processorStub{}, nil, store, enqueuer, nil, t.TempDir())

	body, contentType := multipartUpload(t, map[string]string{"async": "true"})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, enqueuer.payloads, 1)

	// The upload stays on disk for the worker.
	_, err := os.Stat(enqueuer.payloads[0].AudioPath)
	assert.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestTranscribeModelOverride(t *testing.T) {
	store := newTranscriptionStoreStub()
	defaultProc := &processorStub{result: &align.Result{Text: "default"}}
	largeProc := &processorStub{result: &align.Result{Text: "large"}}
	factory := func(model string) AudioProcessor {
		require.Equal(t, "large", model)
		return largeProc
	}
	h := NewTranscriptionHandler(defaultProc, factory, store, &enqueuerStub{}, nil, t.TempDir())

	body, contentType := multipartUpload(t, map[string]string{"model_size": "large"})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, defaultProc.paths)
	assert.Len(t, largeProc.paths, 1)
	assert.Contains(t, rec.Body.String(), `"text":"large"`)

	// Same override reuses the cached processor.
	body, contentType = multipartUpload(t, map[string]string{"model_size": "large"})
	req = httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	h.Transcribe(httptest.NewRecorder(), req)
	assert.Len(t, largeProc.paths, 2)
}

func TestTranscribeAsyncCarriesModel(t *testing.T) {
	enqueuer := &enqueuerStub{}
	h := NewTranscriptionHandler(&processorStub{}, nil, newTranscriptionStoreStub(), enqueuer, nil, t.TempDir())

	body, contentType := multipartUpload(t, map[string]string{"async": "true", "model_size": "small"})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, enqueuer.payloads, 1)
	assert.Equal(t, "small", enqueuer.payloads[0].Model)
}

func TestTranscribeNoFile(t *testing.T) {
	h := NewTranscriptionHandler(&processorStub{}, nil, newTranscriptionStoreStub(), &enqueuerStub{}, nil, t.TempDir())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("async", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Transcribe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscriptionGetInvalidID(t *testing.T) {
	h := NewTranscriptionHandler(&processorStub{}, nil, newTranscriptionStoreStub(), &enqueuerStub{}, nil, t.TempDir())

	r := newTestRouter()
	r.Get("/transcriptions/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/transcriptions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscriptionGetNotFound(t *testing.T) {
	h := NewTranscriptionHandler(&processorStub{}, nil, newTranscriptionStoreStub(), &enqueuerStub{}, nil, t.TempDir())

	r := newTestRouter()
	r.Get("/transcriptions/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/transcriptions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscriptionListPreview(t *testing.T) {
	store := newTranscriptionStoreStub()
	long := strings.Repeat("a", 150)
	_, err := store.SaveResult(context.Background(), uuid.New(), &align.Result{Text: long, Language: "en"})
	require.NoError(t, err)

	h := NewTranscriptionHandler(&processorStub{}, nil, store, &enqueuerStub{}, nil, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/transcriptions", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	text, _ := items[0]["text"].(string)
	assert.Len(t, text, previewLen+3)
	assert.True(t, strings.HasSuffix(text, "..."))
}
