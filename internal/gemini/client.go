package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/config"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/pipeline"
)

const requestTimeout = 10 * time.Minute

// Client calls the Gemini generateContent API for multimodal audio analysis.
type Client struct {
	APIKey  string
	Model   string
	BaseURL string

	httpClient *http.Client
}

// NewClient returns a client for the given model.
func NewClient(apiKey, model, baseURL string) *Client {
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Analyze sends one audio clip plus its context prompt to the model and
// parses the structured result. A missing audio file or transport failure is
// a hard error; unparseable model output comes back as Outcome.Failure.
func (c *Client) Analyze(ctx context.Context, audioPath string, actx pipeline.AnalysisContext) (pipeline.AnalysisOutcome, error) {
	return c.analyze(ctx, audioPath, actx, nil, 0)
}

func (c *Client) analyze(ctx context.Context, audioPath string, actx pipeline.AnalysisContext, segments []VoiceSegment, clipStartMS float64) (pipeline.AnalysisOutcome, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return pipeline.AnalysisOutcome{}, fmt.Errorf("audio file not found: %s", audioPath)
	}

	prompt := BuildPrompt(actx, segments, clipStartMS)

	responseText, err := c.generateContent(ctx, audioPath, prompt)
	if err != nil {
		return pipeline.AnalysisOutcome{}, err
	}

	analysis, failure := ParseAnalysis(responseText)
	return pipeline.AnalysisOutcome{
		Analysis: analysis,
		Failure:  failure,
		Meta: pipeline.AnalysisMeta{
			Prompt:      prompt,
			RawResponse: responseText,
		},
	}, nil
}

// generateContent posts the audio inline with the prompt and returns the
// concatenated candidate text.
func (c *Client) generateContent(ctx context.Context, audioPath, prompt string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{
						"inline_data": map[string]string{
							"mime_type": config.MIMEForPath(audioPath),
							"data":      base64.StdEncoding.EncodeToString(audio),
						},
					},
					{"text": prompt},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	slog.Debug("analyzing audio", "model", c.Model, "bytes", len(audio))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	// Candidate text may be split across parts; join them.
	var sb strings.Builder
	gjson.GetBytes(respBody, "candidates.0.content.parts").ForEach(func(_, part gjson.Result) bool {
		sb.WriteString(part.Get("text").String())
		return true
	})
	return sb.String(), nil
}
