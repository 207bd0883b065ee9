package queue

const TypeTranscriptionProcess = "transcription:process"

type TranscriptionProcessPayload struct {
	AudioFileID string `json:"audio_file_id"`
	AudioPath   string `json:"audio_path"`
	Model       string `json:"model,omitempty"`
}
