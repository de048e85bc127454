package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/config"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/pipeline"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

const uploadTimeout = 30 * time.Minute

// Client calls the diarizing transcription endpoint.
type Client struct {
	APIKey string
	Model  string
	APIURL string

	httpClient *http.Client
}

// NewClient returns a client for the given model.
func NewClient(apiKey, model, apiURL string) *Client {
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		APIURL:     apiURL,
		httpClient: &http.Client{Timeout: uploadTimeout},
	}
}

// diarizedResponse is the segment list shape of the diarized_json format.
type diarizedResponse struct {
	Segments []Segment `json:"segments"`
}

// Transcribe uploads a clip for diarized transcription. Voice references,
// when present, are passed as known speakers so the model can attribute
// segments by name; without them the model assigns anonymous labels.
func (c *Client) Transcribe(ctx context.Context, audioPath string, refs []pipeline.VoiceReference) ([]trip.TranscriptEntry, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	speakerNames, speakerRefs, err := encodeKnownSpeakers(refs)
	if err != nil {
		return nil, err
	}

	if len(speakerNames) > 0 {
		slog.Debug("transcribing with known speakers", "speakers", speakerNames)
	} else {
		slog.Debug("transcribing without voice references")
	}

	// Build multipart form body using a pipe.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer mw.Close()
		errCh <- writeForm(mw, c.Model, f, audioPath, speakerNames, speakerRefs)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, pr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return nil, fmt.Errorf("multipart write error: %w", writeErr)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var diarized diarizedResponse
	if err := json.NewDecoder(resp.Body).Decode(&diarized); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return Normalize(diarized.Segments), nil
}

func writeForm(mw *multipart.Writer, model string, f *os.File, audioPath string, speakerNames, speakerRefs []string) error {
	if err := mw.WriteField("model", model); err != nil {
		return err
	}
	if err := mw.WriteField("response_format", "diarized_json"); err != nil {
		return err
	}
	if err := mw.WriteField("chunking_strategy", "auto"); err != nil {
		return err
	}
	for _, name := range speakerNames {
		if err := mw.WriteField("known_speaker_names[]", name); err != nil {
			return err
		}
	}
	for _, ref := range speakerRefs {
		if err := mw.WriteField("known_speaker_references[]", ref); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(audioPath)))
	h.Set("Content-Type", config.MIMEForPath(audioPath))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	return nil
}

// encodeKnownSpeakers turns resolved voice references into parallel
// name / data-URL lists for the request form.
func encodeKnownSpeakers(refs []pipeline.VoiceReference) (names, dataURLs []string, err error) {
	for _, ref := range refs {
		url, err := EncodeDataURL(ref.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("encode voice reference for %s: %w", ref.Traveler.Name, err)
		}
		names = append(names, ref.Traveler.Name)
		dataURLs = append(dataURLs, url)
	}
	return names, dataURLs, nil
}

// EncodeDataURL reads an audio file into a base64 data URL.
func EncodeDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return fmt.Sprintf("data:%s;base64,%s", config.MIMEForPath(path), base64.StdEncoding.EncodeToString(data)), nil
}
