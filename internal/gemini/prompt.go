package gemini

import (
	"fmt"
	"strings"
	"time"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/pipeline"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// VoiceSegment locates one traveler's voice reference inside a concatenated
// analysis file.
type VoiceSegment struct {
	Traveler trip.Traveler
	StartMS  float64
	EndMS    float64
}

// FormatTraveler renders a traveler for prompt text: "Ellen (age 7)" when an
// age is recorded (age 0 counts), otherwise just the name.
func FormatTraveler(t trip.Traveler) string {
	if t.Age != nil {
		return fmt.Sprintf("%s (age %d)", t.Name, *t.Age)
	}
	return t.Name
}

// formatClockTime renders an ISO-8601 timestamp as "December 28, 2024, 02:34 PM".
// Unparseable input is passed through untouched.
func formatClockTime(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("January 02, 2006, 03:04 PM")
}

// formatMS renders milliseconds as an MM:SS offset.
func formatMS(ms float64) string {
	total := int(ms / 1000)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// BuildPrompt assembles the analysis instruction for a clip. When segments
// is non-empty the audio is a concatenation of voice references followed by
// the clip, starting at clipStartMS, and the prompt teaches the model each
// speaker's voice first.
func BuildPrompt(actx pipeline.AnalysisContext, segments []VoiceSegment, clipStartMS float64) string {
	var b strings.Builder

	if len(segments) > 0 {
		clipStart := formatMS(clipStartMS)

		b.WriteString("This audio file contains VOICE REFERENCES followed by a CLIP TO ANALYZE.\n\n")
		b.WriteString("VOICE REFERENCES (learn each person's voice):\n")
		for _, seg := range segments {
			fmt.Fprintf(&b, "- %s: %s to %s\n", FormatTraveler(seg.Traveler), formatMS(seg.StartMS), formatMS(seg.EndMS))
		}

		if missing := missingTravelers(actx.Travelers, segments); len(missing) > 0 {
			fmt.Fprintf(&b, "\nNote: %s did not record a voice reference.\n", strings.Join(missing, ", "))
		}

		fmt.Fprintf(&b, "\nCLIP TO ANALYZE: starts at %s\n\n", clipStart)
		b.WriteString("First, listen to each voice reference segment to learn how each person sounds. ")
		fmt.Fprintf(&b, "Then analyze the clip starting at %s and identify speakers by matching their voices.\n\n", clipStart)
	} else {
		b.WriteString("Analyze this audio clip recorded during a family trip.\n\n")
	}

	if hasContext(actx) {
		b.WriteString("CONTEXT:\n")

		if len(actx.Travelers) > 0 {
			names := make([]string, len(actx.Travelers))
			for i, t := range actx.Travelers {
				names[i] = FormatTraveler(t)
			}
			fmt.Fprintf(&b, "- Travelers: %s\n", strings.Join(names, ", "))
		}
		if actx.Location != "" {
			fmt.Fprintf(&b, "- Location: %s\n", actx.Location)
		}
		if actx.StoryBeatContext != "" {
			fmt.Fprintf(&b, "- This was recorded as a reaction to a story about: %q\n", actx.StoryBeatContext)
			if actx.StoryBeatStarred {
				b.WriteString("- This story beat was starred as a favorite by the family.\n")
			}
		}
		if actx.RecordedAt != "" {
			fmt.Fprintf(&b, "- Recorded at: %s\n", formatClockTime(actx.RecordedAt))
		}

		b.WriteString("\nGiven this context, analyze the audio.\n\n")
	}

	b.WriteString(`Analyze the audio and respond with JSON in this exact format:

{
  "audioType": "speech|ambient|mixed|music|silent",
  "transcript": [
    {
      "timestamp": "00:00",
      "speaker": "Dad",
      "text": "How is it, girls?"
    }
  ],
  "audioEvents": [
    {
      "timestamp": "00:01",
      "event": "rushing water from waterfall"
    }
  ],
  "sceneDescription": "Brief description of the overall scene",
  "emotionalTone": "excited|happy|calm|curious|frustrated|etc."
}

IMPORTANT:
- audioType: Choose one of: speech, ambient, mixed, music, silent
- transcript: Array of dialogue with timestamps. `)

	if len(actx.Travelers) > 0 {
		b.WriteString("Use actual traveler names if you can identify them (e.g., 'Ellen' instead of 'Child'). ")
	}

	b.WriteString(`If unsure, use 'Child', 'Adult Female', or 'Adult Male'.
- audioEvents: Non-speech sounds (background noise, ambient sounds, etc.)
- sceneDescription: 1-2 sentences describing what's happening
- emotionalTone: Overall mood/feeling of the clip

Respond ONLY with valid JSON, no additional text.`)

	return b.String()
}

func hasContext(actx pipeline.AnalysisContext) bool {
	return len(actx.Travelers) > 0 || actx.Location != "" || actx.StoryBeatContext != "" || actx.RecordedAt != ""
}

func missingTravelers(travelers []trip.Traveler, segments []VoiceSegment) []string {
	have := make(map[string]bool, len(segments))
	for _, seg := range segments {
		have[seg.Traveler.Name] = true
	}
	var missing []string
	for _, t := range travelers {
		if !have[t.Name] {
			missing = append(missing, FormatTraveler(t))
		}
	}
	return missing
}
