package quizgen

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name: "validate-test",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
		},
	}
}

func TestValidateResponseOK(t *testing.T) {
	err := validateResponse(testSchema(), json.RawMessage(`{"name": "alice"}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateResponseMissingField(t *testing.T) {
	err := validateResponse(testSchema(), json.RawMessage(`{}`))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("err = %v, want *ErrInvalidResponse", err)
	}
}

func TestValidateResponseMalformedJSON(t *testing.T) {
	err := validateResponse(testSchema(), json.RawMessage(`{not json`))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("err = %v, want *ErrInvalidResponse", err)
	}
}

func TestValidateResponseQuizSchemaPerCounts(t *testing.T) {
	one := json.RawMessage(`{"questions": [
		{"question": "q1", "options": ["a", "b"], "correctOption": 0}
	]}`)
	two := json.RawMessage(`{"questions": [
		{"question": "q1", "options": ["a", "b"], "correctOption": 0},
		{"question": "q2", "options": ["c", "d"], "correctOption": 1}
	]}`)

	// Compile the one-question schema first so a later two-question
	// request cannot be checked against a cached one-question definition.
	if err := validateResponse(quizSchema(1, 2), one); err != nil {
		t.Fatalf("one-question batch: %v", err)
	}
	if err := validateResponse(quizSchema(2, 2), two); err != nil {
		t.Fatalf("two-question batch: %v", err)
	}
	if err := validateResponse(quizSchema(2, 2), one); err == nil {
		t.Fatal("one-question batch passed the two-question schema")
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`whatever`)); err != nil {
		t.Fatalf("nil schema should not validate: %v", err)
	}
}
