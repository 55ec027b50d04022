package assistant

import (
	"context"
	"errors"
	"log"
	"time"

	"etkinlik-bot/internal/answer"
	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/query"
	"etkinlik-bot/internal/retrieval"
)

// Strategy is one fallback tier. Answer reports false when the tier could
// not produce a reply and the next one should be tried.
type Strategy interface {
	Name() string
	Answer(ctx context.Context, text string, topK int) (Reply, bool)
}

// Retriever is the semantic search dependency of the semantic tier.
type Retriever interface {
	Retrieve(ctx context.Context, text string, k int) ([]retrieval.Result, error)
}

// Semantic answers from the embedding index, composing with the generator
// when one is configured.
type Semantic struct {
	Retriever Retriever
	Composer  *answer.Composer
}

func (s *Semantic) Name() string { return "semantic" }

func (s *Semantic) Answer(ctx context.Context, text string, topK int) (Reply, bool) {
	results, err := s.Retriever.Retrieve(ctx, text, topK)
	if err != nil {
		if errors.Is(err, retrieval.ErrUnavailable) {
			log.Printf("⚠️ Semantic tier unavailable: %v", err)
		} else {
			log.Printf("❌ Semantic tier failed: %v", err)
		}
		return Reply{}, false
	}
	if len(results) == 0 {
		return Reply{}, false
	}
	evs := make([]events.Event, 0, len(results))
	for _, r := range results {
		evs = append(evs, r.Event)
	}
	body, generated := s.Composer.Compose(ctx, text, evs)
	tier := TierSemantic
	if generated {
		tier = TierSemanticGenerative
	}
	return Reply{Text: body, Sources: evs, Tier: tier}, true
}

// DefaultKeywordLimit caps the keyword tier's result list.
const DefaultKeywordLimit = 20

// Keyword parses the question into constraints and queries the store
// directly. It succeeds with the no-results message when nothing matches.
type Keyword struct {
	Store    events.Store
	Parser   *query.Parser
	CityName string
	Limit    int
	Timeout  time.Duration
}

func (k *Keyword) Name() string { return "keyword" }

func (k *Keyword) Answer(ctx context.Context, text string, _ int) (Reply, bool) {
	limit := k.Limit
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}
	c := k.Parser.Parse(text)
	if k.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.Timeout)
		defer cancel()
	}
	evs, err := k.Store.Find(ctx, c.Filter(limit))
	if err != nil {
		log.Printf("❌ Keyword search failed: %v", err)
		return Reply{}, false
	}
	log.Printf("🔍 Keyword search city=%s category=%s dates=%s..%s found=%d",
		c.City, c.Category, c.DateStart.Format(events.DateLayout), c.DateEnd.Format(events.DateLayout), len(evs))
	return Reply{Text: answer.RenderEvents(k.CityName, evs), Sources: evs, Tier: TierKeyword}, true
}
