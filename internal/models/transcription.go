package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AudioFile struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	Status     string    `json:"status" db:"status"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type Transcription struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	AudioFileID uuid.UUID       `json:"audio_file_id" db:"audio_file_id"`
	Result      json.RawMessage `json:"result" db:"result"`
	CompletedAt time.Time       `json:"completed_at" db:"completed_at"`
}

const (
	AudioStatusPending    = "pending"
	AudioStatusProcessing = "processing"
	AudioStatusCompleted  = "completed"
	AudioStatusFailed     = "failed"
)
