package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"etkinlik-bot/internal/embedding"
	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/metrics"
)

// ErrUnavailable means the semantic tier cannot answer right now and the
// caller should fall back.
var ErrUnavailable = errors.New("semantic retrieval unavailable")

var errEmptyCorpus = errors.New("no events to index")

type Options struct {
	ModelID      string
	City         string
	BatchSize    int
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
}

// Orchestrator owns the semantic index for one city. The index is built
// lazily on the first request and rebuilt whenever the store's total event
// count differs from the count seen at the last build.
type Orchestrator struct {
	store  events.Store
	models *embedding.Cache
	opts   Options

	mu         sync.RWMutex
	index      *Index
	builtCount int64
	builtAt    time.Time
}

func NewOrchestrator(store events.Store, models *embedding.Cache, opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Orchestrator{store: store, models: models, opts: opts}
}

// Retrieve runs semantic search for text. It returns ErrUnavailable (wrapping
// the cause) when the store or the model cannot be used or the corpus is
// empty. An empty slice with a nil error means nothing matched.
func (o *Orchestrator) Retrieve(ctx context.Context, text string, k int) ([]Result, error) {
	ix, err := o.ensureIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ix.Retrieve(ctx, text, k, o.opts.City), nil
}

// Refresh brings the index up to date with the store without answering a
// query. Used by the scheduled warm-up.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	if _, err := o.ensureIndex(ctx); err != nil {
		if errors.Is(err, errEmptyCorpus) {
			return nil
		}
		return err
	}
	return nil
}

func (o *Orchestrator) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.opts.StoreTimeout > 0 {
		return context.WithTimeout(ctx, o.opts.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) ensureIndex(ctx context.Context) (*Index, error) {
	sctx, cancel := o.storeCtx(ctx)
	count, err := o.store.Count(sctx, events.Filter{})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	o.mu.RLock()
	ix, built := o.index, o.builtCount
	o.mu.RUnlock()
	if ix != nil && built == count {
		return ix, nil
	}
	// Concurrent callers may both see a stale index and rebuild; the last
	// swap wins and both snapshots are equivalent.
	return o.rebuild(ctx, count)
}

func (o *Orchestrator) rebuild(ctx context.Context, count int64) (*Index, error) {
	model, err := o.models.Get(ctx, o.opts.ModelID)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	sctx, cancel := o.storeCtx(ctx)
	evs, err := o.store.Find(sctx, events.Filter{City: o.opts.City})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(evs) == 0 {
		o.mu.Lock()
		o.index, o.builtCount = nil, 0
		o.mu.Unlock()
		return nil, errEmptyCorpus
	}

	start := time.Now()
	ix, err := Build(ctx, model, evs, o.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	o.mu.Lock()
	o.index, o.builtCount, o.builtAt = ix, count, time.Now()
	o.mu.Unlock()

	o.opts.Metrics.IndexRebuilt(ix.Len())
	log.Printf("🔎 Semantic index built: %d events, model %s, took %s", ix.Len(), model.ModelID(), time.Since(start).Round(time.Millisecond))
	return ix, nil
}

type Stats struct {
	Built      bool      `json:"built"`
	Indexed    int       `json:"indexed"`
	StoreCount int64     `json:"store_count"`
	ModelID    string    `json:"model_id"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
}

func (o *Orchestrator) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Stats{
		Built:      o.index != nil,
		Indexed:    o.index.Len(),
		StoreCount: o.builtCount,
		ModelID:    o.opts.ModelID,
		BuiltAt:    o.builtAt,
	}
}
