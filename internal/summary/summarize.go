package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// completer is the slice of the OpenAI client the summarizer uses.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer collapses long story-beat text into one-sentence summaries.
type Summarizer struct {
	cli         completer
	model       string
	bypassChars int
}

// NewSummarizer builds a summarizer on the OpenAI chat API.
func NewSummarizer(apiKey, model string, bypassChars int) *Summarizer {
	return &Summarizer{
		cli:         openai.NewClient(apiKey),
		model:       model,
		bypassChars: bypassChars,
	}
}

// Summarize returns a one-sentence summary of storyText. Text already below
// the bypass threshold is returned unchanged, and a model call that yields
// nothing falls back to the original text; summarizing never produces less
// than the input.
func (s *Summarizer) Summarize(ctx context.Context, storyText string) (string, error) {
	if utf8.RuneCountInString(storyText) < s.bypassChars {
		return storyText, nil
	}

	prompt := fmt.Sprintf(`Summarize this story in ONE sentence (max 30 words).
Capture the main historical fact or interesting point being shared.

Story:
%s

Summary:`, storyText)

	resp, err := s.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize story beat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return storyText, nil
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return storyText, nil
	}
	return strings.Trim(summary, `"'`), nil
}

// SummarizeBeats summarizes each story beat referenced by at least one clip,
// once per beat, returning the beatID -> summary cache for the run. A failed
// summarization falls back to the beat's full text.
func (s *Summarizer) SummarizeBeats(ctx context.Context, clips []*trip.Clip, lookup trip.StoryBeatLookup) map[string]string {
	summaries := make(map[string]string)
	for _, clip := range clips {
		if clip.StoryBeatID == "" {
			continue
		}
		if _, done := summaries[clip.StoryBeatID]; done {
			continue
		}
		beat, ok := lookup[clip.StoryBeatID]
		if !ok {
			continue
		}

		summary, err := s.Summarize(ctx, beat.Text)
		if err != nil {
			slog.Warn("story beat summarization failed, using full text", "beat", beat.ID, "err", err)
			summary = beat.Text
		}
		summaries[beat.ID] = summary
	}
	return summaries
}
