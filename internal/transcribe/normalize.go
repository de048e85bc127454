package transcribe

import (
	"fmt"
	"strings"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// Segment is one diarized span as the model returns it.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// FormatTimestamp renders seconds as MM:SS, flooring to whole seconds.
// Minutes are unbounded.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Normalize converts raw segments into transcript entries: timestamps become
// MM:SS, a missing speaker becomes "Unknown", and segments whose text trims
// to nothing are dropped.
func Normalize(segments []Segment) []trip.TranscriptEntry {
	entries := make([]trip.TranscriptEntry, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		entries = append(entries, trip.TranscriptEntry{
			Timestamp: FormatTimestamp(seg.Start),
			Speaker:   speaker,
			Text:      text,
		})
	}
	return entries
}
