package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CityPulse/internal/generation"
	"CityPulse/internal/ports"
)

const defaultSystemPrompt = "You are a precise assistant. Reply only with JSON that matches the provided schema."

// ChatOptions configures an OpenAI-compatible chat completions backend.
type ChatOptions struct {
	Endpoint     string
	Model        string
	APIKey       string
	Temperature  float32
	SystemPrompt string
	HTTPClient   *http.Client
}

// ChatGenerator implements ports.Generator over OpenAI-compatible APIs using json_schema output.
type ChatGenerator struct {
	endpoint     string
	model        string
	apiKey       string
	temperature  float32
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Generator = (*ChatGenerator)(nil)

// NewChatGenerator builds a client from configuration.
func NewChatGenerator(opts ChatOptions) *ChatGenerator {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &ChatGenerator{
		endpoint:     opts.Endpoint,
		model:        opts.Model,
		apiKey:       opts.APIKey,
		temperature:  opts.Temperature,
		systemPrompt: safePrompt(opts.SystemPrompt),
		httpClient:   client,
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate posts the prompt as a user message and returns the assistant's JSON content.
func (c *ChatGenerator) Generate(ctx context.Context, req generation.Request) ([]byte, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("chat client misconfigured")
	}
	if req.Schema == nil {
		return nil, fmt.Errorf("%s: schema is required", req.Name)
	}

	body, err := json.Marshal(c.payload(req))
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat %s: %w", req.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("chat error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("chat %s: no choices returned", req.Name)
	}

	msg := decoded.Choices[0].Message
	if msg.Refusal != "" {
		return nil, fmt.Errorf("chat %s: refused: %s", req.Name, msg.Refusal)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("chat %s: empty response", req.Name)
	}
	return []byte(msg.Content), nil
}

func (c *ChatGenerator) payload(req generation.Request) map[string]any {
	var userContent any = req.Prompt
	if len(req.Media) > 0 {
		parts := []map[string]any{{"type": "text", "text": req.Prompt}}
		for _, m := range req.Media {
			parts = append(parts, map[string]any{
				"type": "image_url",
				"image_url": map[string]string{
					"url": "data:" + m.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(m.Data),
				},
			})
		}
		userContent = parts
	}

	return map[string]any{
		"model":       c.model,
		"temperature": c.temperature,
		"messages": []map[string]any{
			{"role": "system", "content": c.systemPrompt},
			{"role": "user", "content": userContent},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName(req.Name),
				"strict": true,
				"schema": req.Schema.JSONSchema(),
			},
		},
	}
}

// schemaName keeps only the characters the API accepts in a schema name.
func schemaName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return -1
		}
	}, name)
	if name == "" {
		return "response"
	}
	return name
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultSystemPrompt
	}
	return prompt
}
