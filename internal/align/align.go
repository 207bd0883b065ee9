// Package align combines a time-ordered transcription with a time-ordered
// speaker diarization into a single speaker-attributed transcript.
package align

import "strings"

// UnknownSpeaker is assigned when no diarization segment overlaps a
// transcript segment.
const UnknownSpeaker = "UNKNOWN"

// TranscriptSegment is a timed span of recognized text.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// DiarizationSegment is a timed span attributed to one speaker.
type DiarizationSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// AlignedSegment is a transcript segment with its resolved speaker.
type AlignedSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
}

// Result is the unit persisted and served by the API.
type Result struct {
	Text     string           `json:"text"`
	Segments []AlignedSegment `json:"segments"`
	Language string           `json:"language"`
}

// Merge assigns exactly one speaker to every transcript segment.
//
// A diarization segment counts as overlapping when the two half-open
// intervals strictly intersect (d.End > t.Start && d.Start < t.End);
// segments that merely touch at an endpoint do not. The speaker with the
// most overlapping diarization entries wins the vote. Ties go to the label
// seen earliest in the overlap set, which keeps the outcome deterministic.
// Timings are copied unchanged; only the text is whitespace-trimmed.
func Merge(transcript []TranscriptSegment, diarization []DiarizationSegment) []AlignedSegment {
	merged := make([]AlignedSegment, 0, len(transcript))

	for _, seg := range transcript {
		counts := make(map[string]int)
		var order []string

		for _, d := range diarization {
			if d.End > seg.Start && d.Start < seg.End {
				if _, seen := counts[d.Speaker]; !seen {
					order = append(order, d.Speaker)
				}
				counts[d.Speaker]++
			}
		}

		speaker := UnknownSpeaker
		best := 0
		for _, label := range order {
			if counts[label] > best {
				best = counts[label]
				speaker = label
			}
		}

		merged = append(merged, AlignedSegment{
			Start:   seg.Start,
			End:     seg.End,
			Text:    strings.TrimSpace(seg.Text),
			Speaker: speaker,
		})
	}

	return merged
}
