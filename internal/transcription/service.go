package transcription

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediascribe/mediascribe/internal/align"
	"github.com/mediascribe/mediascribe/internal/models"
)

// Service persists audio files and their transcription results.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) CreateAudioFile(ctx context.Context, filename string) (*models.AudioFile, error) {
	var af models.AudioFile
	err := s.db.QueryRow(ctx,
		`INSERT INTO audio_files (id, filename, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, filename, status, uploaded_at`,
		uuid.New(), filename, models.AudioStatusPending,
	).Scan(&af.ID, &af.Filename, &af.Status, &af.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("insert audio file: %w", err)
	}
	return &af, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx, "UPDATE audio_files SET status = $1 WHERE id = $2", status, id)
	return err
}

func (s *Service) GetAudioFile(ctx context.Context, id uuid.UUID) (*models.AudioFile, error) {
	var af models.AudioFile
	err := s.db.QueryRow(ctx,
		`SELECT id, filename, status, uploaded_at FROM audio_files WHERE id = $1`,
		id,
	).Scan(&af.ID, &af.Filename, &af.Status, &af.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("get audio file: %w", err)
	}
	return &af, nil
}

// SaveResult stores the aligned transcript as opaque JSON and marks the
// audio file completed.
func (s *Service) SaveResult(ctx context.Context, audioFileID uuid.UUID, result *align.Result) (*models.Transcription, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var tr models.Transcription
	err = tx.QueryRow(ctx,
		`INSERT INTO transcriptions (id, audio_file_id, result)
		 VALUES ($1, $2, $3)
		 RETURNING id, audio_file_id, result, completed_at`,
		uuid.New(), audioFileID, payload,
	).Scan(&tr.ID, &tr.AudioFileID, &tr.Result, &tr.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("insert transcription: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE audio_files SET status = $1 WHERE id = $2",
		models.AudioStatusCompleted, audioFileID,
	); err != nil {
		return nil, fmt.Errorf("mark audio file completed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &tr, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Transcription, error) {
	var tr models.Transcription
	err := s.db.QueryRow(ctx,
		`SELECT id, audio_file_id, result, completed_at FROM transcriptions WHERE id = $1`,
		id,
	).Scan(&tr.ID, &tr.AudioFileID, &tr.Result, &tr.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	return &tr, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]models.Transcription, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, audio_file_id, result, completed_at
		 FROM transcriptions ORDER BY completed_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close()

	var trs []models.Transcription
	for rows.Next() {
		var tr models.Transcription
		if err := rows.Scan(&tr.ID, &tr.AudioFileID, &tr.Result, &tr.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		trs = append(trs, tr)
	}
	return trs, nil
}
