package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/persona-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePersona() *types.PersonaRecord {
	r := types.NewPersonaRecord()
	r.Set("Education", []string{"Bachelors", "MBA"})
	r.Set("Skills", []string{"Python", "SQL", "Go", "Kafka", "dbt", "Spark", "Airflow"})
	r.Set("Goals", []string{})
	return r
}

func TestPrintPersonaJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	require.NoError(t, p.PrintPersonaJSON("Final merged data", samplePersona()))
	output := buf.String()

	assert.True(t, strings.HasPrefix(output, "Final merged data:\n"))
	assert.Contains(t, output, `    "Education": [`)
	assert.Contains(t, output, `"Goals": []`)
	assert.Less(t, strings.Index(output, "Education"), strings.Index(output, "Skills"))
	assert.Less(t, strings.Index(output, "Skills"), strings.Index(output, "Goals"))
}

func TestPrintPersonaJSON_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).PrintPersonaJSON("", nil))
	assert.Equal(t, "{}\n", buf.String())
}

func TestPrintPersonaSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPersonaSummary(samplePersona())
	output := buf.String()

	assert.Contains(t, output, "MERGED PERSONA")
	assert.Contains(t, output, "Categories: 3  Items: 9")
	assert.Contains(t, output, "Skills (7)")
	assert.Contains(t, output, "Kafka")
	assert.NotContains(t, output, "Airflow")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintPersonaSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPersonaSummary(nil)
	p.PrintPersonaSummary(types.NewPersonaRecord())

	assert.Empty(t, buf.String())
}

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	persona := types.NewPersonaRecord()
	persona.Set("Skills", []string{"Go", "Painting"})
	persona.Set("Goals", []string{})
	persona.Set("Values", []string{"Honesty"})

	p.PrintRanking(&types.RankedPersona{
		Target:  "Backend Engineer",
		Persona: persona,
		Scores: map[string][]types.ScoredItem{
			"Skills": {{Item: "Go", Score: 0.91}, {Item: "Painting", Score: 0.12}},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "RANKED PERSONA")
	assert.Contains(t, output, "Target: Backend Engineer")
	assert.Contains(t, output, "#1  0.910  Go")
	assert.Contains(t, output, "#2  0.120  Painting")
	assert.Contains(t, output, "(empty)")
	assert.Contains(t, output, "#1  Honesty")
}

func TestPrintRanking_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRanking(nil)
	p.PrintRanking(&types.RankedPersona{Target: "x"})

	assert.Empty(t, buf.String())
}

func TestPrintSkipped(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSkipped([]types.SkippedExtraction{
		{Index: 1, Question: "What are your goals?", Reason: "response is not a category mapping"},
	})
	output := buf.String()

	assert.Contains(t, output, "SKIPPED EXTRACTIONS")
	assert.Contains(t, output, "Skipped 1 malformed extraction(s)")
	assert.Contains(t, output, "#2  What are your goals?")
}

func TestPrintSkipped_None(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkipped(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
