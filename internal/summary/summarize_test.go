package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

type stubCompleter struct {
	content string
	err     error
	calls   int
}

func (s *stubCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func testSummarizer(stub *stubCompleter) *Summarizer {
	return &Summarizer{cli: stub, model: "gpt-4o-mini", bypassChars: 200}
}

func longStory() string {
	return strings.Repeat("The bridge was built over many difficult years. ", 10)
}

func TestSummarize_ShortTextBypasses(t *testing.T) {
	stub := &stubCompleter{content: "should not be called"}
	s := testSummarizer(stub)

	got, err := s.Summarize(context.Background(), "A short story.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "A short story." {
		t.Errorf("short text must pass through unchanged, got %q", got)
	}
	if stub.calls != 0 {
		t.Errorf("model called %d times for short text", stub.calls)
	}
}

func TestSummarize_LongTextCallsModel(t *testing.T) {
	stub := &stubCompleter{content: "The bridge took years to build."}
	s := testSummarizer(stub)

	got, err := s.Summarize(context.Background(), longStory())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "The bridge took years to build." {
		t.Errorf("Summarize = %q", got)
	}
	if stub.calls != 1 {
		t.Errorf("model called %d times, want 1", stub.calls)
	}
}

func TestSummarize_StripsWrappingQuotes(t *testing.T) {
	stub := &stubCompleter{content: `  "The bridge took years to build."  `}
	s := testSummarizer(stub)

	got, err := s.Summarize(context.Background(), longStory())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "The bridge took years to build." {
		t.Errorf("quotes not stripped: %q", got)
	}
}

func TestSummarize_EmptyModelOutputFallsBack(t *testing.T) {
	stub := &stubCompleter{content: "   "}
	s := testSummarizer(stub)

	story := longStory()
	got, err := s.Summarize(context.Background(), story)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != story {
		t.Errorf("empty model output must fall back to the original text")
	}
}

func TestSummarize_ModelError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("quota exceeded")}
	s := testSummarizer(stub)

	if _, err := s.Summarize(context.Background(), longStory()); err == nil {
		t.Fatal("expected error from failing model")
	}
}

func TestSummarizeBeats_OncePerBeat(t *testing.T) {
	stub := &stubCompleter{content: "Condensed."}
	s := testSummarizer(stub)

	lookup := trip.BuildStoryBeatLookup([]trip.StoryBeat{
		{ID: "b1", Text: longStory()},
		{ID: "b2", Text: "short"},
	})
	clips := []*trip.Clip{
		{Filename: "1.webm", StoryBeatID: "b1"},
		{Filename: "2.webm", StoryBeatID: "b1"},
		{Filename: "3.webm", StoryBeatID: "b2"},
		{Filename: "4.webm"},
		{Filename: "5.webm", StoryBeatID: "dangling"},
	}

	summaries := s.SummarizeBeats(context.Background(), clips, lookup)

	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries["b1"] != "Condensed." {
		t.Errorf("b1 summary = %q", summaries["b1"])
	}
	if summaries["b2"] != "short" {
		t.Errorf("short beat should bypass, got %q", summaries["b2"])
	}
	if stub.calls != 1 {
		t.Errorf("model called %d times, want 1 (b1 only, cached across clips)", stub.calls)
	}
	if _, ok := summaries["dangling"]; ok {
		t.Error("unresolvable beat IDs must not be summarized")
	}
}

func TestSummarizeBeats_FailureFallsBackToFullText(t *testing.T) {
	stub := &stubCompleter{err: errors.New("down")}
	s := testSummarizer(stub)

	story := longStory()
	lookup := trip.BuildStoryBeatLookup([]trip.StoryBeat{{ID: "b1", Text: story}})
	clips := []*trip.Clip{{Filename: "1.webm", StoryBeatID: "b1"}}

	summaries := s.SummarizeBeats(context.Background(), clips, lookup)
	if summaries["b1"] != story {
		t.Errorf("failed summarization must fall back to the full text")
	}
}
