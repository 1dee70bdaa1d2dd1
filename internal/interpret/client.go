// Package interpret turns natural-language mutation prompts into structured
// action payloads via a local LLM endpoint.
package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/railplan/copilot/internal/models"
)

const interpretTimeout = 60 * time.Second

const systemPrompt = `You translate railway master-data change requests into a single JSON action payload.
Respond with JSON only, no prose. The payload has an "action" field naming the
operation and the fields that operation needs. Use "batch" with an "actions"
array for multi-step requests.`

// Client calls an Ollama-compatible generate endpoint and sanitizes the
// returned payload before it reaches the dispatcher.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewClient creates a Client for the given endpoint and model.
func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: interpretTimeout},
	}
}

// Interpret produces a sanitized action payload for the prompt.
func (c *Client) Interpret(ctx context.Context, prompt string) (models.ActionPayload, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: systemPrompt,
		Prompt: prompt,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling interpret request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating interpret request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling generate API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return nil, fmt.Errorf("generate API returned status %d", resp.StatusCode)
	}

	var result generateResponse
	limited := io.LimitReader(resp.Body, 10<<20) // 10 MB
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding generate response: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(result.Response), &raw); err != nil {
		return nil, fmt.Errorf("model did not return a JSON object: %w", err)
	}

	payload := Sanitize(models.ActionPayload(raw))
	if payload.Action() == "" {
		return nil, fmt.Errorf("model response did not name an action")
	}
	return payload, nil
}
