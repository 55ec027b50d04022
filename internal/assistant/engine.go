// Package assistant answers event questions through an ordered chain of
// retrieval tiers.
package assistant

import (
	"context"
	"log"
	"time"

	"etkinlik-bot/internal/answer"
	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/metrics"
	"etkinlik-bot/internal/query"
)

const (
	TierSemanticGenerative = "semantic+generative"
	TierSemantic           = "semantic"
	TierKeyword            = "keyword"
	TierNone               = "none"
)

// DefaultTopK is the number of events the semantic tier asks for.
const DefaultTopK = 5

// Reply is what the user sees plus the events it was built from.
type Reply struct {
	Text    string         `json:"answer"`
	Sources []events.Event `json:"sources"`
	Tier    string         `json:"tier"`
}

// Engine is shared by every transport.
type Engine struct {
	parser     *query.Parser
	strategies []Strategy
	metrics    *metrics.Metrics
}

func NewEngine(parser *query.Parser, m *metrics.Metrics, strategies ...Strategy) *Engine {
	return &Engine{parser: parser, strategies: strategies, metrics: m}
}

// ResolveQuery exposes the structured constraints derived from text.
func (e *Engine) ResolveQuery(text string) query.Constraints {
	return e.parser.Parse(text)
}

// Retrieve tries each strategy in order and returns the first reply. When
// all of them fail the fixed apology is returned; it never returns an error.
func (e *Engine) Retrieve(ctx context.Context, text string, topK int) Reply {
	if topK <= 0 {
		topK = DefaultTopK
	}
	start := time.Now()
	for _, s := range e.strategies {
		if r, ok := e.try(ctx, s, text, topK); ok {
			e.metrics.ObserveAnswer(r.Tier, time.Since(start))
			return r
		}
	}
	e.metrics.ObserveAnswer(TierNone, time.Since(start))
	return Reply{Text: answer.Apology, Tier: TierNone}
}

func (e *Engine) try(ctx context.Context, s Strategy, text string, topK int) (r Reply, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("❌ Strategy %s panicked: %v", s.Name(), p)
			r, ok = Reply{}, false
		}
	}()
	return s.Answer(ctx, text, topK)
}
