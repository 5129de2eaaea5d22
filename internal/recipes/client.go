// Package recipes talks to the recipe-suggestion collaborator (Gemini's
// generateContent API). The collaborator is opaque: no retry, no backoff,
// its error text is surfaced to the caller as-is.
package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	baseURL string
	model   string
	httpc   *http.Client
}

func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Suggest asks for three recipes using the given items. The API key is the
// user's own stored credential, passed per call, never held by the server.
func (c *Client) Suggest(ctx context.Context, apiKey string, items []food.Item) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("recipe API key is required")
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no food items to suggest recipes for")
	}

	prompt := buildPrompt(items)

	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(reqBody)

	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))

	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)

	if err != nil {
		return "", err
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// surface the collaborator's own message when it has one
		var apiErr errorResponse

		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%s", apiErr.Error.Message)
		}

		return "", fmt.Errorf("recipe service returned status %d", resp.StatusCode)
	}

	var out generateResponse

	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in recipe response")
	}

	var text string

	for _, p := range out.Candidates[0].Content.Parts {
		text += p.Text
	}

	if text == "" {
		return "", fmt.Errorf("no text content in recipe response")
	}

	return Sanitize(text), nil
}

func buildPrompt(items []food.Item) string {
	pairs := make([]string, 0, len(items))

	for _, it := range items {
		pairs = append(pairs, fmt.Sprintf("%s %g個", it.Name, it.Qty))
	}

	ingredients := strings.Join(pairs, ", ")

	return "以下の食材でレシピを3つ提案して(HTML形式)。CSSやstyleタグは絶対に含めないでください: " + ingredients
}
