package persona

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/persona-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, js string) *types.PersonaRecord {
	t.Helper()
	r := types.NewPersonaRecord()
	require.NoError(t, json.Unmarshal([]byte(js), r))
	return r
}

func extraction(t *testing.T, js string) types.Extraction {
	t.Helper()
	var e types.Extraction
	require.NoError(t, json.Unmarshal([]byte(js), &e))
	return e
}

func asJSON(t *testing.T, r *types.PersonaRecord) string {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return string(data)
}

func TestMerge_BachelorsMBAScenario(t *testing.T) {
	existing := record(t, `{"Education": ["Bachelors"], "Skills": []}`)
	incoming := extraction(t, `{"Education": ["Bachelors", "MBA"], "Skills": ["Python"]}`)

	result := Merge(existing, incoming)

	assert.Equal(t, `{"Education":["Bachelors","MBA"],"Skills":["Python"]}`, asJSON(t, result))
}

func TestMerge_Idempotent(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		incoming string
	}{
		{"empty into empty", `{}`, `{}`},
		{"new categories", `{}`, `{"Skills": ["Go", "SQL"], "Goals": "Lead"}`},
		{"overlap", `{"Skills": ["Go"]}`, `{"Skills": ["SQL", "Go", "Rust"]}`},
		{"scalar into list", `{"Education": ["BSc"]}`, `{"Education": "MBA"}`},
		{"duplicates inside incoming", `{}`, `{"Values": ["Honesty", "Honesty"]}`},
		{"unknown category", `{"Skills": []}`, `{"Hobbies": ["Chess"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incoming := extraction(t, tt.incoming)
			once := Merge(record(t, tt.existing), incoming)
			snapshot := once.Clone()

			twice := Merge(once, incoming)
			assert.True(t, snapshot.Equal(twice), "second merge changed %s into %s", asJSON(t, snapshot), asJSON(t, twice))
		})
	}
}

func TestMerge_DuplicateDoesNotGrowList(t *testing.T) {
	existing := record(t, `{"Skills": ["Go", "Python"]}`)

	Merge(existing, extraction(t, `{"Skills": ["Python"]}`))
	assert.Len(t, existing.Items("Skills"), 2)

	Merge(existing, extraction(t, `{"Skills": "Go"}`))
	assert.Len(t, existing.Items("Skills"), 2)
}

func TestMerge_FirstSeenOrderPreserved(t *testing.T) {
	existing := types.NewPersonaRecord()
	Merge(existing, extraction(t, `{"Skills": ["Go", "SQL"]}`))
	Merge(existing, extraction(t, `{"Skills": ["Rust", "Go"]}`))
	Merge(existing, extraction(t, `{"Skills": ["SQL", "Rust", "Go", "Kafka"]}`))
	Merge(existing, extraction(t, `{"Skills": ["Go"]}`))

	assert.Equal(t, []string{"Go", "SQL", "Rust", "Kafka"}, existing.Items("Skills"))
}

func TestMerge_ScalarNormalizedOnInsert(t *testing.T) {
	existing := Merge(nil, extraction(t, `{"Education": "MBA"}`))
	assert.Equal(t, []string{"MBA"}, existing.Items("Education"))

	// a later list merges into the normalized list without double-wrapping
	Merge(existing, extraction(t, `{"Education": ["MBA", "PhD"]}`))
	assert.Equal(t, []string{"MBA", "PhD"}, existing.Items("Education"))
}

func TestMerge_NullBecomesEmptyList(t *testing.T) {
	existing := Merge(nil, extraction(t, `{"Goals": null}`))
	assert.True(t, existing.Has("Goals"))
	assert.Equal(t, `{"Goals":[]}`, asJSON(t, existing))
}

func TestMerge_DoesNotInventCategories(t *testing.T) {
	existing := Merge(nil, extraction(t, `{"Skills": ["Go"]}`))
	assert.Equal(t, []string{"Skills"}, existing.Categories())
}

func TestMerge_NewCategoriesAppendedInIncomingOrder(t *testing.T) {
	existing := record(t, `{"Skills": ["Go"]}`)
	Merge(existing, extraction(t, `{"Values": [], "Education": ["BSc"], "Skills": ["SQL"]}`))

	assert.Equal(t, []string{"Skills", "Values", "Education"}, existing.Categories())
}

func TestMerge_SameSetDifferentSequence(t *testing.T) {
	a := extraction(t, `{"Skills": ["Go", "SQL"]}`)
	b := extraction(t, `{"Skills": ["Rust", "SQL"]}`)

	ab := Merge(Merge(nil, a), b)
	ba := Merge(Merge(nil, b), a)

	assert.ElementsMatch(t, ab.Items("Skills"), ba.Items("Skills"))
	assert.Equal(t, []string{"Go", "SQL", "Rust"}, ab.Items("Skills"))
	assert.Equal(t, []string{"Rust", "SQL", "Go"}, ba.Items("Skills"))
}

func TestMerge_ExactMatchOnly(t *testing.T) {
	existing := Merge(nil, extraction(t, `{"Skills": ["python"]}`))
	Merge(existing, extraction(t, `{"Skills": ["Python", "python "]}`))

	assert.Equal(t, []string{"python", "Python", "python "}, existing.Items("Skills"))
}
