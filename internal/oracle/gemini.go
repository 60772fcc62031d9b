// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	genai "google.golang.org/genai"

	"github.com/tomtom215/kuchikomi/internal/config"
)

// Generator produces a JSON document from a prompt and a JSON input.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, input any) ([]byte, error)
}

// GeminiClient is a thin wrapper around the genai client. Rate limiting,
// timeouts and circuit breaking are applied by Client.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a Gemini API client for cfg.Model.
func NewGeminiClient(ctx context.Context, cfg *config.OracleConfig) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{cli: cli, model: cfg.Model, temperature: cfg.Temperature}, nil
}

// Name returns the provider and model for logging.
func (g *GeminiClient) Name() string { return "gemini:" + g.model }

// GenerateJSON appends input to prompt, requests application/json and
// returns the first candidate's text parts.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) ([]byte, error) {
	in, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode oracle input: %w", err)
	}
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)

	temperature := g.temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temperature,
		},
	)
	if err != nil {
		return nil, err
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate. Thought parts
// and empty responses yield a ParseError.
func responseText(resp *genai.GenerateContentResponse) ([]byte, error) {
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, &ParseError{Reason: "empty candidate text"}
	}
	return []byte(text), nil
}
