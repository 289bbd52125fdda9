// Package extraction turns question/answer exchanges into persona attribute
// extractions using the completion service, and validates the raw output.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/persona-builder/internal/llm"
	"github.com/jonathan/persona-builder/internal/prompts"
	"github.com/jonathan/persona-builder/internal/types"
)

// Extractor requests a categorical decomposition of one transcript entry.
type Extractor struct {
	client llm.Completer
	tier   llm.ModelTier
}

// NewExtractor creates an Extractor. Extraction is structured output, so it
// runs on the standard tier.
func NewExtractor(client llm.Completer) *Extractor {
	return &Extractor{client: client, tier: llm.TierStandard}
}

// WithTier returns a copy of the extractor using a different model tier.
func (e *Extractor) WithTier(tier llm.ModelTier) *Extractor {
	return &Extractor{client: e.client, tier: tier}
}

// Extract makes one completion call for entry and returns the raw output.
// The output is not parsed here; see Validate. Service failures are returned
// as *APICallError and are not retried.
func (e *Extractor) Extract(ctx context.Context, entry types.TranscriptEntry) (string, error) {
	messages, err := BuildMessages(entry)
	if err != nil {
		return "", err
	}

	raw, err := e.client.Complete(ctx, messages, e.tier)
	if err != nil {
		return "", &APICallError{
			Message: "failed to extract persona attributes",
			Cause:   err,
		}
	}
	return raw, nil
}

// BuildMessages builds the instruction message and the serialized exchange.
// The exchange is encoded with the same user1/user2 shape as the worked
// example in the instruction; free text is never interpreted.
func BuildMessages(entry types.TranscriptEntry) ([]llm.Message, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entry); err != nil {
		return nil, fmt.Errorf("failed to encode transcript entry: %w", err)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.MustGet(prompts.PersonaFile, prompts.ExtractSystem)},
		{Role: llm.RoleUser, Content: strings.TrimSuffix(buf.String(), "\n")},
	}, nil
}
