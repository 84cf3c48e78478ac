package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/topiq/internal/profile"
)

// Question is one generated multiple-choice question.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// Generator produces quiz questions for a topic. Callers gate display
// timing themselves; the generator only guarantees structural validity.
type Generator struct {
	provider Provider
	config   GeneratorConfig
}

// GeneratorConfig bounds a generation request.
type GeneratorConfig struct {
	MaxTokens   int
	Temperature float64

	// StructuralAttempts is how many times a structurally invalid batch
	// is regenerated before giving up. Schema-invalid responses are
	// already retried inside the provider.
	StructuralAttempts int
}

// DefaultGeneratorConfig returns the standard generation bounds.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxTokens:          2048,
		Temperature:        0.7,
		StructuralAttempts: 2,
	}
}

// NewGenerator creates a Generator on top of the given provider.
func NewGenerator(p Provider, cfg GeneratorConfig) *Generator {
	if cfg.StructuralAttempts < 1 {
		cfg.StructuralAttempts = 1
	}
	return &Generator{provider: p, config: cfg}
}

// Generate produces questionCount questions about topic, each with
// optionCount options. The topic is normalized before use.
func (g *Generator) Generate(ctx context.Context, topic string, questionCount, optionCount int) ([]Question, error) {
	topic = profile.NormalizeTopic(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is empty")
	}
	if questionCount < 1 {
		return nil, fmt.Errorf("question count %d out of range", questionCount)
	}
	if optionCount < 2 {
		return nil, fmt.Errorf("option count %d out of range", optionCount)
	}

	req := Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(topic, questionCount, optionCount),
		Schema:      quizSchema(questionCount, optionCount),
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	var lastErr error
	for attempt := 0; attempt < g.config.StructuralAttempts; attempt++ {
		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("generate quiz for %q: %w", topic, err)
		}

		questions, err := parseQuestions(resp.Content, questionCount, optionCount)
		if err == nil {
			return questions, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("generate quiz for %q: %w", topic, lastErr)
}

const systemPrompt = "You are a quiz author. You write clear, factual " +
	"multiple-choice questions with exactly one correct answer. Wrong " +
	"options must be plausible but unambiguously incorrect."

func buildPrompt(topic string, questionCount, optionCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d multiple-choice questions about %q.\n", questionCount, topic)
	fmt.Fprintf(&b, "Each question has exactly %d options and one correct option.\n", optionCount)
	b.WriteString("Questions must not repeat each other. Options within a question must be distinct.\n")
	b.WriteString("correctOption is the zero-based index of the right answer.")
	return b.String()
}

// quizSchema is the JSON Schema the batch must conform to. The counts
// are part of the name: compiled schemas are cached by name, and each
// count pair is a distinct definition.
func quizSchema(questionCount, optionCount int) *Schema {
	return &Schema{
		Name:        fmt.Sprintf("quiz-questions-%dx%d", questionCount, optionCount),
		Description: "A batch of multiple-choice quiz questions",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"questions"},
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"minItems": questionCount,
					"maxItems": questionCount,
					"items": map[string]any{
						"type":     "object",
						"required": []any{"question", "options", "correctOption"},
						"properties": map[string]any{
							"question": map[string]any{
								"type":      "string",
								"minLength": 1,
							},
							"options": map[string]any{
								"type":     "array",
								"minItems": optionCount,
								"maxItems": optionCount,
								"items": map[string]any{
									"type":      "string",
									"minLength": 1,
								},
							},
							"correctOption": map[string]any{
								"type":    "integer",
								"minimum": 0,
							},
						},
					},
				},
			},
		},
	}
}

// parseQuestions decodes and structurally validates a generated batch.
// The schema already constrains shape; this enforces what JSON Schema
// cannot express cheaply: index bounds, distinct options, unique texts.
func parseQuestions(raw json.RawMessage, questionCount, optionCount int) ([]Question, error) {
	var batch struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode batch: %w", err)}
	}

	if len(batch.Questions) != questionCount {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("got %d questions, want %d", len(batch.Questions), questionCount),
		}
	}

	seen := make(map[string]bool, len(batch.Questions))
	for i, q := range batch.Questions {
		if len(q.Options) != optionCount {
			return nil, &ErrInvalidResponse{
				Content: raw,
				Err:     fmt.Errorf("question %d has %d options, want %d", i, len(q.Options), optionCount),
			}
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return nil, &ErrInvalidResponse{
				Content: raw,
				Err:     fmt.Errorf("question %d correct index %d out of range", i, q.CorrectOption),
			}
		}
		key := strings.ToLower(strings.TrimSpace(q.Text))
		if seen[key] {
			return nil, &ErrInvalidResponse{
				Content: raw,
				Err:     fmt.Errorf("duplicate question %q", q.Text),
			}
		}
		seen[key] = true

		opts := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			optKey := strings.ToLower(strings.TrimSpace(opt))
			if opts[optKey] {
				return nil, &ErrInvalidResponse{
					Content: raw,
					Err:     fmt.Errorf("question %d has duplicate option %q", i, opt),
				}
			}
			opts[optKey] = true
		}
	}

	return batch.Questions, nil
}
