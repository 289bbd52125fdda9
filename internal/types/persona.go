// Package types provides type definitions for structured data used throughout the persona builder.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category is a persona attribute category.
type Category string

// Persona categories requested from the extractor.
const (
	CategoryEducation  Category = "Education"
	CategoryExperience Category = "Experience"
	CategorySkills     Category = "Skills"
	CategoryStrengths  Category = "Strengths"
	CategoryGoals      Category = "Goals"
	CategoryValues     Category = "Values"
)

// AllCategories returns the fixed category set in canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryEducation,
		CategoryExperience,
		CategorySkills,
		CategoryStrengths,
		CategoryGoals,
		CategoryValues,
	}
}

// IsKnownCategory reports whether label names one of the fixed categories.
// Unknown labels are still accepted by the merger; this is informational.
func IsKnownCategory(label string) bool {
	for _, c := range AllCategories() {
		if string(c) == label {
			return true
		}
	}
	return false
}

// PersonaRecord maps category labels to ordered, duplicate-free item lists.
// Category order is first-seen order and is preserved through JSON round trips.
type PersonaRecord struct {
	order []string
	items map[string][]string
}

// NewPersonaRecord returns an empty record.
func NewPersonaRecord() *PersonaRecord {
	return &PersonaRecord{items: make(map[string][]string)}
}

// Categories returns the category labels in insertion order.
func (r *PersonaRecord) Categories() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Has reports whether the record contains label.
func (r *PersonaRecord) Has(label string) bool {
	_, ok := r.items[label]
	return ok
}

// Items returns a copy of the items stored under label (nil when absent).
func (r *PersonaRecord) Items(label string) []string {
	items, ok := r.items[label]
	if !ok {
		return nil
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// Len returns the number of categories.
func (r *PersonaRecord) Len() int {
	return len(r.order)
}

// Set stores items under label. A new label is appended to the category
// order; an existing label keeps its position.
func (r *PersonaRecord) Set(label string, items []string) {
	if r.items == nil {
		r.items = make(map[string][]string)
	}
	if _, ok := r.items[label]; !ok {
		r.order = append(r.order, label)
	}
	stored := make([]string, len(items))
	copy(stored, items)
	r.items[label] = stored
}

// Contains reports whether item is already stored under label (exact match).
func (r *PersonaRecord) Contains(label, item string) bool {
	for _, existing := range r.items[label] {
		if existing == item {
			return true
		}
	}
	return false
}

// Append adds item to the end of label's list. The caller is responsible for dedup.
func (r *PersonaRecord) Append(label, item string) {
	if _, ok := r.items[label]; !ok {
		r.Set(label, nil)
	}
	r.items[label] = append(r.items[label], item)
}

// Clone returns a deep copy.
func (r *PersonaRecord) Clone() *PersonaRecord {
	clone := NewPersonaRecord()
	for _, label := range r.order {
		clone.Set(label, r.items[label])
	}
	return clone
}

// Equal reports whether both records hold the same categories, in the same
// order, with the same item sequences.
func (r *PersonaRecord) Equal(other *PersonaRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.order) != len(other.order) {
		return false
	}
	for i, label := range r.order {
		if other.order[i] != label {
			return false
		}
		a, b := r.items[label], other.items[label]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// ItemCount returns the total number of items across all categories.
func (r *PersonaRecord) ItemCount() int {
	total := 0
	for _, items := range r.items {
		total += len(items)
	}
	return total
}

// MarshalJSON writes the record as a JSON object in category order.
// Empty categories are written as [] rather than null.
func (r *PersonaRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		items := r.items[label]
		if items == nil {
			items = []string{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping document key order. Values may
// be string lists, bare strings or null, and are normalized to lists.
func (r *PersonaRecord) UnmarshalJSON(data []byte) error {
	*r = PersonaRecord{items: make(map[string][]string)}
	return decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		r.Set(key, v.Items())
		return nil
	})
}

// ScoredItem pairs a category item with its similarity to the rerank target.
type ScoredItem struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

// RankedPersona is the reranker's output. Persona carries the reordered
// record; Scores is kept for display and is not part of the persisted output.
type RankedPersona struct {
	Target  string                  `json:"target"`
	Persona *PersonaRecord          `json:"persona"`
	Scores  map[string][]ScoredItem `json:"-"`
}
