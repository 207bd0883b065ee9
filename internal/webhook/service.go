package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediascribe/mediascribe/internal/models"
)

type Service struct {
	db         *pgxpool.Pool
	dispatcher *Dispatcher
}

func NewService(db *pgxpool.Pool, dispatcher *Dispatcher) *Service {
	return &Service{db: db, dispatcher: dispatcher}
}

type CreateRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Webhook, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	eventsJSON, _ := json.Marshal(req.Events)

	var wh models.Webhook
	var events json.RawMessage
	err = s.db.QueryRow(ctx,
		`INSERT INTO webhooks (id, url, events, secret, is_active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, url, events, is_active, created_at`,
		uuid.New(), req.URL, eventsJSON, secret,
	).Scan(&wh.ID, &wh.URL, &events, &wh.IsActive, &wh.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert webhook: %w", err)
	}
	_ = json.Unmarshal(events, &wh.Events)

	// The secret is only returned on creation.
	wh.Secret = secret

	return &wh, nil
}

func (s *Service) List(ctx context.Context) ([]models.Webhook, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, url, events, is_active, created_at
		 FROM webhooks ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []models.Webhook
	for rows.Next() {
		var wh models.Webhook
		var events json.RawMessage
		if err := rows.Scan(&wh.ID, &wh.URL, &events, &wh.IsActive, &wh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		_ = json.Unmarshal(events, &wh.Events)
		webhooks = append(webhooks, wh)
	}
	return webhooks, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM webhooks WHERE id = $1", id)
	return err
}

// Dispatch queues an event for every active subscription that listens to
// it. Delivery happens asynchronously and never blocks the caller.
func (s *Service) Dispatch(ctx context.Context, event string, payload interface{}) error {
	rows, err := s.db.Query(ctx,
		`SELECT id, url, secret FROM webhooks
		 WHERE is_active = true AND events @> $1::jsonb`,
		fmt.Sprintf(`["%s"]`, event),
	)
	if err != nil {
		return fmt.Errorf("find matching webhooks: %w", err)
	}
	defer rows.Close()

	payloadJSON, _ := json.Marshal(payload)

	for rows.Next() {
		var id uuid.UUID
		var url, secret string
		if err := rows.Scan(&id, &url, &secret); err != nil {
			continue
		}

		if s.dispatcher != nil {
			s.dispatcher.Enqueue(DeliveryRequest{
				WebhookID: id,
				URL:       url,
				Secret:    secret,
				Event:     event,
				Payload:   payloadJSON,
			})
		}
	}
	return nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(b), nil
}
