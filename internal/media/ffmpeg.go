// Package media shells out to ffmpeg/ffprobe for audio conversion.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Normalize converts any audio file ffmpeg can read into a mono 16kHz WAV
// suitable for recognition and diarization. Returns the path of the
// converted file, placed in tmpDir (system temp when empty). The caller
// owns the returned file and is responsible for deleting it.
func Normalize(ctx context.Context, audioPath, tmpDir string) (string, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	out := filepath.Join(tmpDir, uuid.New().String()+"_16k.wav")

	// ffmpeg -y -i input -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", audioPath,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Duration returns the audio duration in seconds via ffprobe.
func Duration(ctx context.Context, audioPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration: %w", err)
	}
	return seconds, nil
}

// RemoveIfExists deletes path unless it no longer exists. Cleanup of
// intermediate artifacts is best-effort and must never fail the pipeline.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}
