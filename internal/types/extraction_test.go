package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		scalar   bool
		expected []string
	}{
		{"list", `["Go", "SQL"]`, false, []string{"Go", "SQL"}},
		{"empty list", `[]`, false, []string{}},
		{"scalar", `"MBA"`, true, []string{"MBA"}},
		{"null", `null`, false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.scalar, v.IsScalar())
			assert.Equal(t, tt.expected, v.Items())
		})
	}
}

func TestValue_UnmarshalJSON_Rejects(t *testing.T) {
	for _, input := range []string{`42`, `true`, `{"a": "b"}`, `["Go", 1]`, `["Go", null]`} {
		var v Value
		assert.Error(t, json.Unmarshal([]byte(input), &v), input)
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(ScalarValue("MBA"))
	require.NoError(t, err)
	assert.Equal(t, `"MBA"`, string(data))

	data, err = json.Marshal(ListValue())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestExtraction_UnmarshalJSONKeepsDocumentOrder(t *testing.T) {
	input := `{"Values": ["Honesty"], "Education": "Bachelors", "Skills": []}`

	var e Extraction
	require.NoError(t, json.Unmarshal([]byte(input), &e))

	assert.Equal(t, []string{"Values", "Education", "Skills"}, e.Labels())
	edu, ok := e.Get("Education")
	require.True(t, ok)
	assert.True(t, edu.IsScalar())
	assert.Equal(t, "Bachelors", edu.Scalar)
}

func TestExtraction_DuplicateKeyLastValueWins(t *testing.T) {
	var e Extraction
	require.NoError(t, json.Unmarshal([]byte(`{"Skills": ["Go"], "Goals": [], "Skills": ["Rust"]}`), &e))

	assert.Equal(t, []string{"Skills", "Goals"}, e.Labels())
	skills, _ := e.Get("Skills")
	assert.Equal(t, []string{"Rust"}, skills.Items())
}

func TestExtraction_MarshalJSON(t *testing.T) {
	e := Extraction{
		{Label: "Skills", Value: ListValue("Go")},
		{Label: "Education", Value: ScalarValue("MBA")},
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"Skills":["Go"],"Education":"MBA"}`, string(data))
}

func TestTranscriptEntry_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(TranscriptEntry{Question: "Q", Answer: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user1": "Q", "user2": "A"}`, string(data))

	data, err = json.Marshal(ExtractionRecord{Question: "Q", Answer: "A", RawExtraction: "{}"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question": "Q", "response": "A", "processed_response": "{}"}`, string(data))
}
