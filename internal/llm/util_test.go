package llm

import (
	"testing"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"Skills\": [\"Go\"]}\n```",
			expected: `{"Skills": ["Go"]}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"Skills\": [\"Go\"]}\n```",
			expected: `{"Skills": ["Go"]}`,
		},
		{
			name:     "code block without trailing newline",
			input:    "```json\n{\"Goals\": []}```",
			expected: `{"Goals": []}`,
		},
		{
			name:     "plain JSON",
			input:    `{"Education": ["Bachelors"]}`,
			expected: `{"Education": ["Bachelors"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanJSONBlock_PreambleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "Here is the extraction:\n{\"Skills\": [\"Python\"]}",
			expected: `{"Skills": ["Python"]}`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"Values\": [\"Integrity\"]}\n\nLet me know if you need anything else!",
			expected: `{"Values": ["Integrity"]}`,
		},
		{
			name:     "braces inside strings",
			input:    "Result: {\"Goals\": [\"Ship {v2}\"]}",
			expected: `{"Goals": ["Ship {v2}"]}`,
		},
		{
			name:     "escaped quotes",
			input:    "Result: {\"Strengths\": [\"Says \\\"yes\\\"\"]}",
			expected: `{"Strengths": ["Says \"yes\""]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanJSONBlock_Unrecoverable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no object", "  I cannot answer that.  ", "I cannot answer that."},
		{"unbalanced", "Sure: {\"Skills\": [", "Sure: {\"Skills\": ["},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple object", `{"key": "value"}`, `{"key": "value"}`},
		{"nested objects", `{"a": {"b": 1}} tail`, `{"a": {"b": 1}}`},
		{"not starting with brace", "not json", ""},
		{"never closes", `{"a": {"b": 1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSONObject(tt.input)
			if result != tt.expected {
				t.Errorf("extractJSONObject() = %q, want %q", result, tt.expected)
			}
		})
	}
}
