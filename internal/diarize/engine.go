package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mediascribe/mediascribe/internal/align"
)

// EngineConfig holds configuration for the diarization sidecar.
type EngineConfig struct {
	BaseURL string // default: "http://localhost:8179"
}

// Engine talks to a pyannote-style diarization server over HTTP.
// Run a sidecar exposing POST /diarize (multipart audio upload) and
// GET /health.
type Engine struct {
	baseURL    string
	httpClient *http.Client
}

// NewEngine creates an Engine with defaults applied.
func NewEngine(cfg EngineConfig) *Engine {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8179"
	}
	return &Engine{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

func (e *Engine) Name() string { return "pyannote-server" }

// Ping checks that the diarization server is reachable. Used as the lazy
// "load" step; a failure here means the engine is unavailable.
func (e *Engine) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("diarization server unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("diarization server unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

// Diarize uploads the audio file and returns the server's speaker turns
// ordered by start time.
func (e *Engine) Diarize(ctx context.Context, audioPath string) ([]align.DiarizationSegment, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/diarize", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarization failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Segments []struct {
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Speaker string  `json:"speaker"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	segments := make([]align.DiarizationSegment, 0, len(apiResp.Segments))
	for _, s := range apiResp.Segments {
		segments = append(segments, align.DiarizationSegment{
			Start:   s.Start,
			End:     s.End,
			Speaker: s.Speaker,
		})
	}
	return segments, nil
}
