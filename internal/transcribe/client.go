package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"backend/pkg/apperror"
)

// extractRequest is the wire shape sent to the speech service.
type extractRequest struct {
	Audio      string      `json:"audio"` // base64
	MimeType   string      `json:"mime_type"`
	Candidates []Candidate `json:"candidates"`
	Prompt     string      `json:"prompt,omitempty"`
}

type extractResponse struct {
	Items []ExtractedItem `json:"items"`
	Error string          `json:"error,omitempty"`
}

// Client calls the external speech/LLM extraction endpoint over HTTP. The
// call can be slow; it runs with the request context and never inside a
// database transaction.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *Client) ExtractOrders(ctx context.Context, audio []byte, mimeType string, candidates []Candidate, customPrompt string) ([]ExtractedItem, error) {
	payload := extractRequest{
		Audio:      base64.StdEncoding.EncodeToString(audio),
		MimeType:   mimeType,
		Candidates: candidates,
		Prompt:     customPrompt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "speech service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.New(apperror.KindInternal, fmt.Sprintf("speech service returned status %d", resp.StatusCode))
	}

	var result extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to decode speech service response", err)
	}
	if result.Error != "" {
		return nil, apperror.New(apperror.KindInternal, "speech service error: "+result.Error)
	}

	return result.Items, nil
}
