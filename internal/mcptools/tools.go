// Package mcptools exposes the assistant as Model Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"etkinlik-bot/internal/assistant"
	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/query"
	"etkinlik-bot/internal/storage"
)

// SearchEventsParams are the arguments of search_events.
type SearchEventsParams struct {
	Question string `json:"question" mcp:"Question in natural language, e.g. 'Bu hafta sonu konser var mı?'"`
	TopK     int    `json:"top_k,omitempty" mcp:"Maximum number of events used for the answer"`
}

// ResolveQueryParams are the arguments of resolve_query.
type ResolveQueryParams struct {
	Text string `json:"text" mcp:"Question to turn into city, category and date range"`
}

// ListEventsParams are the arguments of list_events.
type ListEventsParams struct {
	City      string `json:"city,omitempty" mcp:"City, lower case"`
	Category  string `json:"category,omitempty" mcp:"music, theater, exhibition, workshop, sports, cinema or all"`
	StartDate string `json:"start_date,omitempty" mcp:"Inclusive start date YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty" mcp:"Inclusive end date YYYY-MM-DD"`
	Limit     int    `json:"limit,omitempty" mcp:"Maximum number of events (default 50)"`
}

// Engine is the part of assistant.Engine the tools need.
type Engine interface {
	Retrieve(ctx context.Context, text string, topK int) assistant.Reply
	ResolveQuery(text string) query.Constraints
}

type Tools struct {
	engine       Engine
	store        events.Store
	recorder     storage.Recorder
	topK         int
	storeTimeout time.Duration
}

func New(engine Engine, store events.Store, recorder storage.Recorder, topK int, storeTimeout time.Duration) *Tools {
	if topK <= 0 {
		topK = assistant.DefaultTopK
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Tools{engine: engine, store: store, recorder: recorder, topK: topK, storeTimeout: storeTimeout}
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_events",
		Description: "Answers a Turkish question about upcoming events with a ready-to-show message",
	}, t.SearchEvents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_query",
		Description: "Extracts city, category and date range from a Turkish question",
	}, t.ResolveQuery)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_events",
		Description: "Lists stored events filtered by city, category and date range as JSON",
	}, t.ListEvents)

	log.Printf("📋 Registered MCP tools: search_events, resolve_query, list_events")
}

func (t *Tools) SearchEvents(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SearchEventsParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	question := strings.TrimSpace(args.Question)
	if question == "" {
		return errorResult("❌ question is required"), nil
	}
	k := args.TopK
	if k <= 0 {
		k = t.topK
	}

	log.Printf("🔍 MCP search_events: %q", question)
	reply := t.engine.Retrieve(ctx, question, k)

	if t.recorder != nil {
		if err := t.recorder.AppendInteraction(storage.Interaction{
			Timestamp:         time.Now().UTC(),
			Channel:           storage.ChannelMCP,
			UserMessage:       question,
			AssistantResponse: reply.Text,
			Tier:              reply.Tier,
			SourceCount:       len(reply.Sources),
		}); err != nil {
			log.Printf("⚠️ Failed to record interaction: %v", err)
		}
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: reply.Text}},
	}, nil
}

func (t *Tools) ResolveQuery(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ResolveQueryParams]) (*mcp.CallToolResultFor[any], error) {
	c := t.engine.ResolveQuery(params.Arguments.Text)
	return jsonResult(c)
}

func (t *Tools) ListEvents(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ListEventsParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	f := events.Filter{
		City:     strings.ToLower(args.City),
		Category: strings.ToLower(args.Category),
		DateFrom: args.StartDate,
		DateTo:   args.EndDate,
		Limit:    args.Limit,
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}

	ctx, cancel := context.WithTimeout(ctx, t.storeTimeout)
	defer cancel()
	evs, err := t.store.Find(ctx, f)
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Event store error: %v", err)), nil
	}
	if evs == nil {
		evs = []events.Event{}
	}
	return jsonResult(map[string]any{"count": len(evs), "events": evs})
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Failed to encode result: %v", err)), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
