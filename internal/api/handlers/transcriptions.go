package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mediascribe/mediascribe/internal/align"
	"github.com/mediascribe/mediascribe/internal/media"
	"github.com/mediascribe/mediascribe/internal/models"
	"github.com/mediascribe/mediascribe/internal/queue"
)

const (
	maxUploadBytes = 256 << 20
	listLimit      = 10
	previewLen     = 100
)

// AudioProcessor runs the transcription pipeline for one audio file.
type AudioProcessor interface {
	Process(ctx context.Context, audioPath string) (*align.Result, error)
}

// TranscriptionStore persists audio files and transcription results.
type TranscriptionStore interface {
	CreateAudioFile(ctx context.Context, filename string) (*models.AudioFile, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SaveResult(ctx context.Context, audioFileID uuid.UUID, result *align.Result) (*models.Transcription, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transcription, error)
	List(ctx context.Context, limit int) ([]models.Transcription, error)
}

// Enqueuer hands audio files to the background worker.
type Enqueuer interface {
	EnqueueTranscriptionProcess(payload queue.TranscriptionProcessPayload) error
}

// Notifier fans events out to webhook subscribers.
type Notifier interface {
	Dispatch(ctx context.Context, event string, payload interface{}) error
}

type TranscriptionHandler struct {
	// processorMu serializes pipeline runs: a processor instance caches
	// model handles and is not safe for concurrent reuse.
	processorMu sync.Mutex
	processor   AudioProcessor
	// buildProcessor creates processors for per-request model overrides.
	// Instances are cached so loaded models are reused across requests.
	buildProcessor func(model string) AudioProcessor
	processors     map[string]AudioProcessor

	store    TranscriptionStore
	queue    Enqueuer
	notifier Notifier
	tmpDir   string
}

func NewTranscriptionHandler(processor AudioProcessor, factory func(model string) AudioProcessor, store TranscriptionStore, q Enqueuer, notifier Notifier, tmpDir string) *TranscriptionHandler {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &TranscriptionHandler{
		processor:      processor,
		buildProcessor: factory,
		processors:     make(map[string]AudioProcessor),
		store:          store,
		queue:          q,
		notifier:       notifier,
		tmpDir:         tmpDir,
	}
}

// processorFor returns the processor for the requested model, the default
// one when no override is given. Callers must hold processorMu.
func (h *TranscriptionHandler) processorFor(model string) AudioProcessor {
	if model == "" || h.buildProcessor == nil {
		return h.processor
	}
	p, ok := h.processors[model]
	if !ok {
		p = h.buildProcessor(model)
		h.processors[model] = p
	}
	return p
}

// Transcribe accepts a multipart audio upload and returns the
// speaker-attributed transcript. With async=true the file is queued for
// the worker instead and a 202 is returned immediately.
func (h *TranscriptionHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no audio file provided"})
		return
	}
	defer file.Close()

	uploadPath, err := h.saveUpload(file, header.Filename)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store upload"})
		return
	}

	audioFile, err := h.store.CreateAudioFile(r.Context(), header.Filename)
	if err != nil {
		h.removeUpload(uploadPath)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	model := r.FormValue("model_size")

	if r.FormValue("async") == "true" {
		if err := h.queue.EnqueueTranscriptionProcess(queue.TranscriptionProcessPayload{
			AudioFileID: audioFile.ID.String(),
			AudioPath:   uploadPath,
			Model:       model,
		}); err != nil {
			h.removeUpload(uploadPath)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"audio_file_id": audioFile.ID,
			"status":        models.AudioStatusPending,
		})
		return
	}

	defer h.removeUpload(uploadPath)

	if err := h.store.UpdateStatus(r.Context(), audioFile.ID, models.AudioStatusProcessing); err != nil {
		slog.Error("failed to mark audio file processing", "error", err)
	}

	h.processorMu.Lock()
	result, err := h.processorFor(model).Process(r.Context(), uploadPath)
	h.processorMu.Unlock()
	if err != nil {
		slog.Error("transcription failed", "audio_file_id", audioFile.ID, "error", err)
		if statusErr := h.store.UpdateStatus(r.Context(), audioFile.ID, models.AudioStatusFailed); statusErr != nil {
			slog.Error("failed to mark audio file failed", "error", statusErr)
		}
		h.notify(r.Context(), models.EventTranscriptionFailed, map[string]interface{}{
			"audio_file_id": audioFile.ID,
			"error":         err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transcription failed: " + err.Error()})
		return
	}

	tr, err := h.store.SaveResult(r.Context(), audioFile.ID, result)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.notify(r.Context(), models.EventTranscriptionCompleted, map[string]interface{}{
		"transcription_id": tr.ID,
		"audio_file_id":    audioFile.ID,
		"language":         result.Language,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transcription_id": tr.ID,
		"text":             result.Text,
		"segments":         result.Segments,
		"language":         result.Language,
		"processed_at":     tr.CompletedAt,
	})
}

// List returns the most recent transcriptions with a text preview.
func (h *TranscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	trs, err := h.store.List(r.Context(), listLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	items := make([]map[string]interface{}, 0, len(trs))
	for _, tr := range trs {
		var result align.Result
		_ = json.Unmarshal(tr.Result, &result)
		items = append(items, map[string]interface{}{
			"id":            tr.ID,
			"audio_file_id": tr.AudioFileID,
			"completed_at":  tr.CompletedAt,
			"text":          preview(result.Text, previewLen),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TranscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transcription ID"})
		return
	}

	tr, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "transcription not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var result align.Result
	if err := json.Unmarshal(tr.Result, &result); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "corrupt stored result"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transcription_id": tr.ID,
		"text":             result.Text,
		"segments":         result.Segments,
		"language":         result.Language,
		"processed_at":     tr.CompletedAt,
	})
}

func (h *TranscriptionHandler) saveUpload(file io.Reader, filename string) (string, error) {
	path := filepath.Join(h.tmpDir, uuid.New().String()+filepath.Ext(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (h *TranscriptionHandler) removeUpload(path string) {
	if err := media.RemoveIfExists(path); err != nil {
		slog.Warn("failed to remove uploaded audio", "path", path, "error", err)
	}
}

func (h *TranscriptionHandler) notify(ctx context.Context, event string, payload map[string]interface{}) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Dispatch(ctx, event, payload); err != nil {
		slog.Error("webhook dispatch failed", "event", event, "error", err)
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
