package gemini

import (
	"strings"
	"testing"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/pipeline"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

func intp(v int) *int { return &v }

func TestFormatTraveler_WithAge(t *testing.T) {
	got := FormatTraveler(trip.Traveler{Name: "Ellen", Age: intp(7)})
	if got != "Ellen (age 7)" {
		t.Errorf("FormatTraveler = %q", got)
	}
}

func TestFormatTraveler_AgeZero(t *testing.T) {
	got := FormatTraveler(trip.Traveler{Name: "Baby", Age: intp(0)})
	if got != "Baby (age 0)" {
		t.Errorf("age 0 is a real age, got %q", got)
	}
}

func TestFormatTraveler_NoAge(t *testing.T) {
	got := FormatTraveler(trip.Traveler{Name: "Mom"})
	if got != "Mom" {
		t.Errorf("FormatTraveler = %q", got)
	}
}

func TestBuildPrompt_TravelerWithoutAge(t *testing.T) {
	actx := pipeline.AnalysisContext{Travelers: []trip.Traveler{{Name: "Mom"}}}
	prompt := BuildPrompt(actx, nil, 0)

	if !strings.Contains(prompt, "Mom") {
		t.Error("prompt must name the traveler")
	}
	if strings.Contains(prompt, "Mom (age") {
		t.Error("prompt must not invent an age for Mom")
	}
}

func TestBuildPrompt_FullContext(t *testing.T) {
	actx := pipeline.AnalysisContext{
		Travelers:        []trip.Traveler{{Name: "Ellen", Age: intp(7)}},
		Location:         "La Mina Falls, El Yunque",
		StoryBeatContext: "Princess Louise-Hippolyte who ruled Monaco",
		StoryBeatStarred: true,
		RecordedAt:       "2024-12-28T14:34:22Z",
	}
	prompt := BuildPrompt(actx, nil, 0)

	for _, want := range []string{
		"Ellen (age 7)",
		"Location: La Mina Falls, El Yunque",
		"Princess Louise-Hippolyte",
		"starred as a favorite",
		"December 28, 2024, 02:34 PM",
		`"audioType"`,
		"speech, ambient, mixed, music, silent",
		"Respond ONLY with valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(prompt, "Use actual traveler names") {
		t.Error("known travelers should enable name instructions")
	}
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	prompt := BuildPrompt(pipeline.AnalysisContext{Travelers: []trip.Traveler{}}, nil, 0)

	if strings.Contains(prompt, "CONTEXT:") {
		t.Error("empty context must not emit a CONTEXT block")
	}
	if strings.Contains(prompt, "Use actual traveler names") {
		t.Error("no travelers, no name instruction")
	}
	if !strings.Contains(prompt, "family trip") {
		t.Error("standalone prompt should carry the default opening")
	}
}

func TestBuildPrompt_UnparseableTimestampPassesThrough(t *testing.T) {
	actx := pipeline.AnalysisContext{
		Travelers:  []trip.Traveler{},
		RecordedAt: "yesterday-ish",
	}
	prompt := BuildPrompt(actx, nil, 0)
	if !strings.Contains(prompt, "Recorded at: yesterday-ish") {
		t.Error("unparseable timestamps should appear verbatim")
	}
}

func TestBuildPrompt_VoiceSegments(t *testing.T) {
	actx := pipeline.AnalysisContext{
		Travelers: []trip.Traveler{
			{Name: "Ellen", Age: intp(7)},
			{Name: "Dad"},
		},
	}
	segments := []VoiceSegment{
		{Traveler: trip.Traveler{Name: "Ellen", Age: intp(7)}, StartMS: 0, EndMS: 4000},
	}
	prompt := BuildPrompt(actx, segments, 4000)

	for _, want := range []string{
		"VOICE REFERENCES",
		"Ellen (age 7): 00:00 to 00:04",
		"Dad did not record a voice reference",
		"CLIP TO ANALYZE: starts at 00:04",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "family trip.\n\nThis audio") {
		t.Error("voice-match prompt replaces the default opening")
	}
}

func TestFormatMS(t *testing.T) {
	cases := []struct {
		ms   float64
		want string
	}{
		{0, "00:00"},
		{4500, "00:04"},
		{65000, "01:05"},
		{3725000, "62:05"},
	}
	for _, c := range cases {
		if got := formatMS(c.ms); got != c.want {
			t.Errorf("formatMS(%v) = %q, want %q", c.ms, got, c.want)
		}
	}
}
