package speech

// LocalConfig holds configuration for a local whisper.cpp server.
type LocalConfig struct {
	BaseURL string // default: "http://localhost:8178/v1"
}

// NewLocal creates a recognizer backed by a local whisper.cpp HTTP server,
// which speaks the same API. Start the server with:
// ./server -m models/ggml-base.en.bin --port 8178
func NewLocal(cfg LocalConfig) *Whisper {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178/v1"
	}
	// No API key needed for the local server.
	return NewWhisper(WhisperConfig{BaseURL: baseURL})
}
