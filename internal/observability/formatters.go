// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/persona-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintPersonaJSON writes the record as indented JSON, keys in category order.
func (p *Printer) PrintPersonaJSON(title string, record *types.PersonaRecord) error {
	if record == nil {
		record = types.NewPersonaRecord()
	}
	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format persona: %w", err)
	}
	if title != "" {
		if _, err := fmt.Fprintf(p.out, "%s:\n", title); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(p.out, "%s\n", data)
	return err
}

// PrintPersonaSummary outputs item counts and the first few items per category.
func (p *Printer) PrintPersonaSummary(record *types.PersonaRecord) {
	if record == nil || record.Len() == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Categories: %d  Items: %d\n", record.Len(), record.ItemCount()))

	for _, label := range record.Categories() {
		items := record.Items(label)
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", label, len(items)))
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}

	p.printBox("MERGED PERSONA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRanking outputs the reranked items with their similarity scores.
func (p *Printer) PrintRanking(ranked *types.RankedPersona) {
	if ranked == nil || ranked.Persona == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target: %s\n", ranked.Target))

	for _, label := range ranked.Persona.Categories() {
		sb.WriteString(fmt.Sprintf("\n%s\n", label))
		scores := ranked.Scores[label]
		if len(scores) == 0 {
			items := ranked.Persona.Items(label)
			if len(items) == 0 {
				sb.WriteString("  (empty)\n")
			}
			for i, item := range items {
				sb.WriteString(fmt.Sprintf("  #%d  %s\n", i+1, item))
			}
			continue
		}
		count := min(len(scores), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  #%d  %.3f  %s\n", i+1, scores[i].Score, scores[i].Item))
		}
		if len(scores) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(scores)-maxItemsToShow))
		}
	}

	p.printBox("RANKED PERSONA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkipped outputs the entries whose extraction was not merged.
func (p *Printer) PrintSkipped(skipped []types.SkippedExtraction) {
	if len(skipped) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skipped %d malformed extraction(s):\n", len(skipped)))
	for _, s := range skipped {
		sb.WriteString(fmt.Sprintf("\n#%d  %s\n", s.Index+1, s.Question))
		sb.WriteString(fmt.Sprintf("    %s\n", s.Reason))
	}

	p.printBox("SKIPPED EXTRACTIONS", strings.TrimSuffix(sb.String(), "\n"))
}
