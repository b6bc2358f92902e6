package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *resty.Client
}

func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    resty.New().SetTimeout(20 * time.Second),
	}
}

const systemPrompt = "You are a translation engine. Translate the user's text " +
	"from %s to %s. Reply with the translation only, no commentary, no quotes."

func (c *OpenAIClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": fmt.Sprintf(systemPrompt, sourceLang, targetLang)},
			{"role": "user", "content": text},
		},
		"temperature": 0.2,
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	r, err := c.http.R().SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("translator: request: %w", err)
	}
	if r.IsError() {
		return "", fmt.Errorf("translator: %s; body: %s", r.Status(), abbreviate(r.String(), 500))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translator: no choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
