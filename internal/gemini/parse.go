package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// Matches ```json ... ``` or ``` ... ``` anywhere in the response.
var jsonCodeBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON pulls JSON content out of model text that may be wrapped in a
// markdown fence. Fallback order: fenced with json tag, fenced without tag,
// the trimmed text as-is.
func ExtractJSON(text string) string {
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(text)

	if m := jsonCodeBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// ParseAnalysis decodes model response text into an analysis. A response that
// is empty or not valid JSON yields the failure variant, never an error; bad
// model output is data, not a crash.
func ParseAnalysis(responseText string) (*trip.Analysis, *trip.AnalysisFailure) {
	jsonText := ExtractJSON(responseText)
	if jsonText == "" {
		return nil, &trip.AnalysisFailure{
			Error:        "Failed to parse JSON response",
			ErrorDetails: "model returned no text",
			RawResponse:  responseText,
		}
	}

	var analysis trip.Analysis
	if err := json.Unmarshal([]byte(jsonText), &analysis); err != nil {
		return nil, &trip.AnalysisFailure{
			Error:        "Failed to parse JSON response",
			ErrorDetails: err.Error(),
			RawResponse:  responseText,
		}
	}

	if analysis.Transcript == nil {
		analysis.Transcript = []trip.TranscriptEntry{}
	}
	if analysis.AudioEvents == nil {
		analysis.AudioEvents = []trip.AudioEvent{}
	}
	return &analysis, nil
}
