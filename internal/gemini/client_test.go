package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/pipeline"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

func geminiEnvelope(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("clip-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyze_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)

		fmt.Fprint(w, geminiEnvelope("```json\n{\"audioType\": \"speech\", \"sceneDescription\": \"A beach\", \"emotionalTone\": \"calm\"}\n```"))
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-3-flash-preview", srv.URL)
	actx := pipeline.AnalysisContext{Travelers: []trip.Traveler{{Name: "Mom"}}}

	outcome, err := client.Analyze(context.Background(), writeClip(t), actx)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if gotPath != "/models/gemini-3-flash-preview:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}

	// Request must inline the audio alongside the prompt text.
	raw, _ := json.Marshal(gotBody)
	if !strings.Contains(string(raw), "inline_data") {
		t.Error("request missing inline audio data")
	}
	if !strings.Contains(string(raw), "Mom") {
		t.Error("request prompt missing traveler context")
	}

	if outcome.Failure != nil {
		t.Fatalf("unexpected failure: %+v", outcome.Failure)
	}
	if outcome.Analysis.AudioType != trip.AudioTypeSpeech {
		t.Errorf("AudioType = %q", outcome.Analysis.AudioType)
	}
	if outcome.Meta.Prompt == "" || outcome.Meta.RawResponse == "" {
		t.Error("meta side channel should carry prompt and raw response")
	}
}

func TestAnalyze_UnparseableResponseIsFailureVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiEnvelope("This is not valid JSON { broken }"))
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-3-flash-preview", srv.URL)

	outcome, err := client.Analyze(context.Background(), writeClip(t), pipeline.AnalysisContext{})
	if err != nil {
		t.Fatalf("parse failure must not be a hard error: %v", err)
	}
	if outcome.Failure == nil {
		t.Fatal("expected failure variant")
	}
	if outcome.Failure.Error != "Failed to parse JSON response" {
		t.Errorf("Error = %q", outcome.Failure.Error)
	}
	if outcome.Failure.RawResponse != "This is not valid JSON { broken }" {
		t.Errorf("RawResponse = %q", outcome.Failure.RawResponse)
	}
}

func TestAnalyze_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-3-flash-preview", srv.URL)

	outcome, err := client.Analyze(context.Background(), writeClip(t), pipeline.AnalysisContext{})
	if err != nil {
		t.Fatalf("empty response must not be a hard error: %v", err)
	}
	if outcome.Failure == nil {
		t.Fatal("empty model text must yield the failure variant")
	}
}

func TestAnalyze_MissingAudioFile(t *testing.T) {
	client := NewClient("test-key", "gemini-3-flash-preview", "http://unused")

	_, err := client.Analyze(context.Background(), "/does/not/exist.webm", pipeline.AnalysisContext{})
	if err == nil {
		t.Fatal("missing audio must be a hard error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}

func TestAnalyze_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid key"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient("bad-key", "gemini-3-flash-preview", srv.URL)

	_, err := client.Analyze(context.Background(), writeClip(t), pipeline.AnalysisContext{})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the status code: %v", err)
	}
}
