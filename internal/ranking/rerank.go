// Package ranking reorders persona items by semantic similarity to a target
// such as a desired job title.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/persona-builder/internal/llm"
	"github.com/jonathan/persona-builder/internal/types"
)

// Reranker scores category items against a target with an embedding service.
type Reranker struct {
	embedder    llm.Embedder
	concurrency int
}

// NewReranker creates a Reranker that embeds one category at a time.
func NewReranker(embedder llm.Embedder) *Reranker {
	return &Reranker{embedder: embedder, concurrency: 1}
}

// WithConcurrency returns a copy that embeds up to n categories at once.
// Values below 1 are treated as 1.
func (r *Reranker) WithConcurrency(n int) *Reranker {
	if n < 1 {
		n = 1
	}
	return &Reranker{embedder: r.embedder, concurrency: n}
}

// Rerank returns a new record with the same categories, each list sorted by
// descending cosine similarity to target. Equal scores keep their original
// relative order. Empty categories are copied without an embedding call, and
// a record with no items at all makes no calls. Any embedding failure fails
// the whole operation.
func (r *Reranker) Rerank(ctx context.Context, record *types.PersonaRecord, target string) (*types.RankedPersona, error) {
	if record == nil {
		return nil, fmt.Errorf("persona record is nil")
	}
	if strings.TrimSpace(target) == "" {
		return nil, ErrEmptyTarget
	}

	categories := record.Categories()
	ranked := &types.RankedPersona{
		Target:  target,
		Persona: types.NewPersonaRecord(),
		Scores:  make(map[string][]types.ScoredItem),
	}
	if record.ItemCount() == 0 {
		ranked.Persona = record.Clone()
		return ranked, nil
	}

	targetVec, err := r.embedTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	scored := make([][]types.ScoredItem, len(categories))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, label := range categories {
		items := record.Items(label)
		if len(items) == 0 {
			continue
		}
		g.Go(func() error {
			s, err := r.scoreCategory(gCtx, label, items, targetVec)
			if err != nil {
				return err
			}
			scored[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, label := range categories {
		if scored[i] == nil {
			ranked.Persona.Set(label, record.Items(label))
			continue
		}
		SortByScore(scored[i])
		items := make([]string, len(scored[i]))
		for j, s := range scored[i] {
			items[j] = s.Item
		}
		ranked.Persona.Set(label, items)
		ranked.Scores[label] = scored[i]
	}
	return ranked, nil
}

// RerankOrFallback reranks, or on failure returns the record unchanged
// alongside the error so the caller can report that no reranking happened.
func (r *Reranker) RerankOrFallback(ctx context.Context, record *types.PersonaRecord, target string) (*types.RankedPersona, error) {
	ranked, err := r.Rerank(ctx, record, target)
	if err == nil {
		return ranked, nil
	}

	fallback := &types.RankedPersona{Target: target, Persona: types.NewPersonaRecord()}
	if record != nil {
		fallback.Persona = record.Clone()
	}
	return fallback, err
}

// SortByScore orders items by descending score. The sort is stable, so
// equal scores keep their input order.
func SortByScore(items []types.ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

func (r *Reranker) embedTarget(ctx context.Context, target string) ([]float32, error) {
	vectors, err := r.embedder.Embed(ctx, []string{target})
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to embed target", Cause: err}
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, &EmbeddingError{Message: fmt.Sprintf("expected 1 vector, got %d", len(vectors))}
	}
	return vectors[0], nil
}

func (r *Reranker) scoreCategory(ctx context.Context, label string, items []string, targetVec []float32) ([]types.ScoredItem, error) {
	vectors, err := r.embedder.Embed(ctx, items)
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to embed items", Category: label, Cause: err}
	}
	if len(vectors) != len(items) {
		return nil, &EmbeddingError{
			Message:  fmt.Sprintf("expected %d vectors, got %d", len(items), len(vectors)),
			Category: label,
		}
	}

	scored := make([]types.ScoredItem, len(items))
	for i, item := range items {
		score, err := llm.CosineSimilarity(targetVec, vectors[i])
		if err != nil {
			return nil, &EmbeddingError{Message: fmt.Sprintf("failed to score %q", item), Category: label, Cause: err}
		}
		if math.IsNaN(score) {
			return nil, &EmbeddingError{Message: fmt.Sprintf("similarity for %q is NaN", item), Category: label}
		}
		scored[i] = types.ScoredItem{Item: item, Score: score}
	}
	return scored, nil
}
