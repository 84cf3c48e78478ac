// Package quizgen produces multiple-choice quiz questions for a topic
// using an LLM provider. The provider abstraction is single-turn: quiz
// generation never needs conversation history.
package quizgen

import (
	"context"
	"encoding/json"
)

// Provider is the LLM abstraction quiz generation runs on.
type Provider interface {
	// Generate sends one prompt and returns structured JSON. When the
	// request carries a Schema the provider uses its native structured
	// output mechanism and the response content is the validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is a single-turn generation request.
type Request struct {
	// System sets the LLM's role and constraints.
	System string

	// Prompt is the user message.
	Prompt string

	// Schema, when set, is the JSON Schema the response must conform to.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0. Zero means deterministic.
	Temperature float64
}

// Schema names a JSON Schema definition for structured output.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated JSON (validated when a Schema was set).
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string
}

// Usage tracks token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
