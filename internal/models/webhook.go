package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Webhook struct {
	ID        uuid.UUID `json:"id" db:"id"`
	URL       string    `json:"url" db:"url"`
	Events    []string  `json:"events" db:"events"`
	Secret    string    `json:"-" db:"secret"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type WebhookDelivery struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	WebhookID      uuid.UUID       `json:"webhook_id" db:"webhook_id"`
	Event          string          `json:"event" db:"event"`
	Payload        json.RawMessage `json:"payload" db:"payload"`
	ResponseStatus int             `json:"response_status" db:"response_status"`
	Attempts       int             `json:"attempts" db:"attempts"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

const (
	EventTranscriptionCompleted = "transcription.completed"
	EventTranscriptionFailed    = "transcription.failed"
	EventPostCreated            = "post.created"
)
