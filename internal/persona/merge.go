// Package persona folds validated extractions into a cumulative persona record.
package persona

import (
	"github.com/jonathan/persona-builder/internal/types"
)

// Merge folds incoming into existing and returns existing. For each label:
// an absent label is inserted with its value normalized to a list; a present
// label gets every item not already stored appended, in incoming order.
// Items are compared by exact string equality, which makes Merge idempotent.
// A nil existing record is allocated.
func Merge(existing *types.PersonaRecord, incoming types.Extraction) *types.PersonaRecord {
	if existing == nil {
		existing = types.NewPersonaRecord()
	}

	for _, field := range incoming {
		if !existing.Has(field.Label) {
			existing.Set(field.Label, nil)
		}
		for _, item := range field.Value.Items() {
			if !existing.Contains(field.Label, item) {
				existing.Append(field.Label, item)
			}
		}
	}
	return existing
}
