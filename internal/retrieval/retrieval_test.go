package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etkinlik-bot/internal/embedding"
	"etkinlik-bot/internal/events"
)

// tableEmbedder maps a text to the vector of the first key it starts with.
type tableEmbedder struct {
	table   map[string][]float32
	batches atomic.Int32
	panics  bool
}

func (e *tableEmbedder) vec(text string) []float32 {
	if e.panics {
		panic("boom")
	}
	for k, v := range e.table {
		if strings.HasPrefix(text, k) {
			return append([]float32(nil), v...)
		}
	}
	return []float32{0, 0}
}

func (e *tableEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vec(text), nil
}

func (e *tableEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, e.vec(t))
	}
	return out, nil
}

func (e *tableEmbedder) Dimensions() int { return 2 }
func (e *tableEmbedder) ModelID() string { return "table:2" }

func fourEvents() ([]events.Event, *tableEmbedder) {
	evs := []events.Event{
		{ID: "a", Title: "A", City: "izmir"},
		{ID: "b", Title: "B", City: "izmir"},
		{ID: "c", Title: "C", City: "Antalya"},
		{ID: "d", Title: "D", City: "antalya"},
	}
	emb := &tableEmbedder{table: map[string][]float32{
		"A": {1, 0},
		"B": {0.9, 0.1},
		"C": {0.8, 0.2},
		"D": {0, 1},
		"q": {1, 0},
	}}
	return evs, emb
}

func TestIndex_OverFetchWindowAndCityFilter(t *testing.T) {
	evs, emb := fourEvents()
	ix, err := Build(context.Background(), emb, evs, 3)
	require.NoError(t, err)
	require.Equal(t, 4, ix.Len())
	assert.Equal(t, int32(2), emb.batches.Load(), "4 events in batches of 3")

	// k=1 looks at the 2 nearest only, both in izmir; no re-query.
	assert.Empty(t, ix.Retrieve(context.Background(), "q", 1, "antalya"))

	got := ix.Retrieve(context.Background(), "q", 2, "ANTALYA")
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Event.ID)
	assert.Equal(t, "d", got[1].Event.ID)
	assert.Greater(t, got[0].Score, got[1].Score)

	for _, r := range got {
		assert.True(t, strings.EqualFold(r.Event.City, "antalya"))
		assert.True(t, r.Score > 0 && r.Score <= 1)
	}

	all := ix.Retrieve(context.Background(), "q", 10, "")
	require.Len(t, all, 4)
	assert.Equal(t, "a", all[0].Event.ID)
	assert.InDelta(t, 1.0, all[0].Score, 1e-6)
}

func TestIndex_EmptyAndPanics(t *testing.T) {
	var nilIx *Index
	assert.Empty(t, nilIx.Retrieve(context.Background(), "q", 3, ""))

	evs, emb := fourEvents()
	ix, err := Build(context.Background(), emb, evs, 16)
	require.NoError(t, err)
	emb.panics = true
	assert.Empty(t, ix.Retrieve(context.Background(), "q", 3, ""))
}

func TestIndex_Deterministic(t *testing.T) {
	h, _ := embedding.NewHashing(256)
	evs := events.SampleEvents("antalya", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	ix, err := Build(context.Background(), h, evs, 4)
	require.NoError(t, err)

	first := ix.Retrieve(context.Background(), "bu hafta sonu konser", 3, "antalya")
	require.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ix.Retrieve(context.Background(), "bu hafta sonu konser", 3, "antalya"))
	}
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
}

type failingEmbedder struct{ *tableEmbedder }

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model crashed")
}

func TestBuild_EmbedError(t *testing.T) {
	evs, _ := fourEvents()
	_, err := Build(context.Background(), failingEmbedder{&tableEmbedder{}}, evs, 2)
	assert.Error(t, err)
}

func newOrchestrator(store events.Store, emb embedding.Embedder, loads *atomic.Int32) *Orchestrator {
	cache := embedding.NewCache(func(ctx context.Context, id string) (embedding.Embedder, error) {
		if loads != nil {
			loads.Add(1)
		}
		if emb == nil {
			return nil, errors.New("no such model")
		}
		return emb, nil
	})
	return NewOrchestrator(store, cache, Options{ModelID: "table:2", City: "antalya", BatchSize: 16})
}

func TestOrchestrator_LazyBuildAndRebuildOnCountChange(t *testing.T) {
	evs, emb := fourEvents()
	evs[2].City, evs[3].City = "antalya", "antalya"
	store := events.NewMemoryStore(evs...)
	var loads atomic.Int32
	o := newOrchestrator(store, emb, &loads)

	assert.False(t, o.Stats().Built)

	got, err := o.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	st := o.Stats()
	assert.True(t, st.Built)
	assert.Equal(t, 2, st.Indexed, "only the configured city is indexed")
	assert.Equal(t, int64(4), st.StoreCount, "staleness uses the total count")
	assert.Equal(t, int32(1), emb.batches.Load())

	// Unchanged count: no rebuild.
	_, err = o.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), emb.batches.Load())

	// An edit that keeps the count is not observed.
	require.NoError(t, store.Update(context.Background(), events.Event{ID: "d", Title: "A renamed", City: "antalya"}))
	_, _ = o.Retrieve(context.Background(), "q", 2)
	assert.Equal(t, int32(1), emb.batches.Load())

	// A new document changes the count and triggers a rebuild.
	require.NoError(t, store.InsertMany(context.Background(), []events.Event{{Title: "A new", City: "antalya"}}))
	got, err = o.Retrieve(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), emb.batches.Load())
	assert.Equal(t, 3, o.Stats().Indexed)
	assert.Len(t, got, 3)
	assert.Equal(t, int32(1), loads.Load(), "model is loaded once")
}

func TestOrchestrator_Unavailable(t *testing.T) {
	_, emb := fourEvents()

	// empty corpus
	o := newOrchestrator(events.NewMemoryStore(), emb, nil)
	_, err := o.Retrieve(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, o.Stats().Built)
	assert.NoError(t, o.Refresh(context.Background()), "empty corpus is not a refresh failure")

	// corpus without the configured city
	o = newOrchestrator(events.NewMemoryStore(events.Event{Title: "A", City: "izmir"}), emb, nil)
	_, err = o.Retrieve(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrUnavailable)

	// store down
	o = newOrchestrator(events.Unavailable{}, emb, nil)
	_, err = o.Retrieve(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Error(t, o.Refresh(context.Background()))

	// model cannot load
	o = newOrchestrator(events.NewMemoryStore(events.Event{Title: "A", City: "antalya"}), nil, nil)
	_, err = o.Retrieve(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOrchestrator_Refresh(t *testing.T) {
	evs, emb := fourEvents()
	o := newOrchestrator(events.NewMemoryStore(evs...), emb, nil)
	require.NoError(t, o.Refresh(context.Background()))
	assert.True(t, o.Stats().Built)
	assert.Equal(t, "table:2", o.Stats().ModelID)
}
