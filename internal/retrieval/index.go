// Package retrieval implements semantic search over the event corpus.
package retrieval

import (
	"context"
	"fmt"
	"log"
	"strings"

	"etkinlik-bot/internal/embedding"
	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/vectorindex"
)

const DefaultBatchSize = 16

// Result is a retrieved event with a similarity score in (0, 1].
type Result struct {
	Event events.Event `json:"event"`
	Score float64      `json:"score"`
}

// Index is an immutable snapshot of the corpus embedded with one model.
// events[i] corresponds to vector i of the flat index.
type Index struct {
	model  embedding.Embedder
	events []events.Event
	flat   *vectorindex.FlatL2
}

// Build embeds evs in batches and indexes the normalized vectors.
func Build(ctx context.Context, model embedding.Embedder, evs []events.Event, batchSize int) (*Index, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	ix := &Index{
		model:  model,
		events: append([]events.Event(nil), evs...),
		flat:   vectorindex.NewFlatL2(model.Dimensions()),
	}
	for start := 0; start < len(evs); start += batchSize {
		end := start + batchSize
		if end > len(evs) {
			end = len(evs)
		}
		texts := make([]string, 0, end-start)
		for _, ev := range evs[start:end] {
			texts = append(texts, ev.SearchableText())
		}
		vecs, err := model.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(vecs))
		}
		for _, v := range vecs {
			vectorindex.Normalize(v)
		}
		if err := ix.flat.Add(vecs...); err != nil {
			return nil, fmt.Errorf("index batch %d-%d: %w", start, end, err)
		}
	}
	return ix, nil
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.events)
}

// Retrieve returns at most k events closest to query whose city equals
// cityFilter (case-insensitive; empty disables the filter). It looks at the
// 2k nearest neighbours only, so fewer than k results may come back when the
// filter drops some. Any failure is logged and yields an empty result.
func (ix *Index) Retrieve(ctx context.Context, query string, k int, cityFilter string) (results []Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Semantic search panicked: %v", r)
			results = nil
		}
	}()
	if ix.Len() == 0 || k <= 0 {
		return nil
	}
	q, err := ix.model.Embed(ctx, query)
	if err != nil {
		log.Printf("❌ Failed to embed query: %v", err)
		return nil
	}
	vectorindex.Normalize(q)

	fetch := 2 * k
	if fetch > ix.Len() {
		fetch = ix.Len()
	}
	hits, err := ix.flat.Search(q, fetch)
	if err != nil {
		log.Printf("❌ Semantic search failed: %v", err)
		return nil
	}
	for _, h := range hits {
		ev := ix.events[h.ID]
		if cityFilter != "" && !strings.EqualFold(ev.City, cityFilter) {
			continue
		}
		results = append(results, Result{Event: ev, Score: 1 / (1 + float64(h.Distance))})
		if len(results) >= k {
			break
		}
	}
	return results
}
