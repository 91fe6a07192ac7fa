package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"CityPulse/internal/generation"
	"CityPulse/internal/ports"
)

// GeminiOptions configures the Gemini backend.
type GeminiOptions struct {
	APIKey      string
	Model       string
	Temperature float32
	// BaseURL overrides the API endpoint; empty uses the public one.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini implements ports.Generator with Gemini structured output.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ ports.Generator = (*Gemini)(nil)

// NewGemini creates a Gemini client for structured generation.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: opts.Model, temperature: opts.Temperature}, nil
}

// Generate sends the prompt (plus any media) and returns the JSON text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, req generation.Request) ([]byte, error) {
	if req.Schema == nil {
		return nil, fmt.Errorf("%s: schema is required", req.Name)
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(req.Schema),
		Temperature:      genai.Ptr(g.temperature),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(req), config)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", req.Name, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini %s: empty response", req.Name)
	}
	return []byte(text), nil
}

func geminiContents(req generation.Request) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Media)+1)
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	for _, m := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

var genaiTypes = map[generation.Type]genai.Type{
	generation.TypeObject:  genai.TypeObject,
	generation.TypeArray:   genai.TypeArray,
	generation.TypeString:  genai.TypeString,
	generation.TypeNumber:  genai.TypeNumber,
	generation.TypeInteger: genai.TypeInteger,
	generation.TypeBoolean: genai.TypeBoolean,
}

// toGenaiSchema translates the neutral schema; property order follows the sorted names.
func toGenaiSchema(s *generation.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
	}
	if len(s.Enum) > 0 {
		out.Enum = append([]string(nil), s.Enum...)
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		names := s.PropertyNames()
		out.Properties = make(map[string]*genai.Schema, len(names))
		for _, name := range names {
			out.Properties[name] = toGenaiSchema(s.Properties[name])
		}
		out.PropertyOrdering = names
		out.Required = append([]string(nil), s.Required...)
	}
	return out
}
