package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/mediascribe/mediascribe/internal/media"
	"github.com/mediascribe/mediascribe/internal/models"
	"github.com/mediascribe/mediascribe/internal/queue"
	"github.com/mediascribe/mediascribe/internal/transcription"
	"github.com/mediascribe/mediascribe/internal/webhook"
)

// TranscriptionWorker runs queued audio files through the processing
// pipeline. The worker owns the uploaded file referenced by the task and
// deletes it when the job finishes, successfully or not.
type TranscriptionWorker struct {
	processor  *transcription.Processor
	factory    func(model string) *transcription.Processor
	processors map[string]*transcription.Processor
	svc        *transcription.Service
	webhookSvc *webhook.Service
}

func NewTranscriptionWorker(processor *transcription.Processor, factory func(model string) *transcription.Processor, svc *transcription.Service, webhookSvc *webhook.Service) *TranscriptionWorker {
	return &TranscriptionWorker{
		processor:  processor,
		factory:    factory,
		processors: make(map[string]*transcription.Processor),
		svc:        svc,
		webhookSvc: webhookSvc,
	}
}

// processorFor reuses one processor per requested model so loaded models
// survive across jobs. Safe because the server runs one task at a time.
func (w *TranscriptionWorker) processorFor(model string) *transcription.Processor {
	if model == "" || w.factory == nil {
		return w.processor
	}
	p, ok := w.processors[model]
	if !ok {
		p = w.factory(model)
		w.processors[model] = p
	}
	return p
}

func (w *TranscriptionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranscriptionProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	audioFileID, err := uuid.Parse(payload.AudioFileID)
	if err != nil {
		return fmt.Errorf("parse audio file ID: %w", err)
	}

	slog.Info("processing audio file", "audio_file_id", audioFileID, "path", payload.AudioPath)

	if err := w.svc.UpdateStatus(ctx, audioFileID, models.AudioStatusProcessing); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	defer func() {
		if err := media.RemoveIfExists(payload.AudioPath); err != nil {
			slog.Warn("failed to remove uploaded audio", "path", payload.AudioPath, "error", err)
		}
	}()

	result, err := w.processorFor(payload.Model).Process(ctx, payload.AudioPath)
	if err != nil {
		if statusErr := w.svc.UpdateStatus(ctx, audioFileID, models.AudioStatusFailed); statusErr != nil {
			slog.Error("failed to mark audio file failed", "error", statusErr)
		}
		w.notify(ctx, models.EventTranscriptionFailed, map[string]interface{}{
			"audio_file_id": audioFileID,
			"error":         err.Error(),
		})
		return fmt.Errorf("process audio: %w", err)
	}

	tr, err := w.svc.SaveResult(ctx, audioFileID, result)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	w.notify(ctx, models.EventTranscriptionCompleted, map[string]interface{}{
		"transcription_id": tr.ID,
		"audio_file_id":    audioFileID,
		"language":         result.Language,
	})

	slog.Info("audio file processed", "audio_file_id", audioFileID, "transcription_id", tr.ID)
	return nil
}

func (w *TranscriptionWorker) notify(ctx context.Context, event string, payload map[string]interface{}) {
	if w.webhookSvc == nil {
		return
	}
	if err := w.webhookSvc.Dispatch(ctx, event, payload); err != nil {
		slog.Error("webhook dispatch failed", "event", event, "error", err)
	}
}
