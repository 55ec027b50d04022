// Package app wires configuration into the long-lived objects shared by the
// transports.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"etkinlik-bot/internal/answer"
	"etkinlik-bot/internal/assistant"
	"etkinlik-bot/internal/config"
	"etkinlik-bot/internal/embedding"
	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/events/mongostore"
	"etkinlik-bot/internal/events/sqlitestore"
	"etkinlik-bot/internal/llm"
	"etkinlik-bot/internal/metrics"
	"etkinlik-bot/internal/query"
	"etkinlik-bot/internal/retrieval"
	"etkinlik-bot/internal/storage"
)

// App holds everything built once per process.
type App struct {
	Config       *config.Config
	Store        events.Store
	Models       *embedding.Cache
	Orchestrator *retrieval.Orchestrator
	Parser       *query.Parser
	Engine       *assistant.Engine
	Recorder     storage.Recorder
	Metrics      *metrics.Metrics

	closeStore func(ctx context.Context) error
}

// New builds the application. An unreachable event store is not fatal: the
// app keeps running on a store that reports itself unavailable.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Metrics: metrics.New()}
	loc := cfg.Location()

	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		log.Printf("⚠️ Event store unavailable, continuing without it: %v", err)
		store = events.Unavailable{Err: err}
		closeStore = nil
	}
	if mem, ok := store.(*events.MemoryStore); ok {
		if err := mem.InsertMany(ctx, events.SampleEvents(cfg.City, time.Now().In(loc))); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		log.Println("🧪 Memory store seeded with sample events")
	}
	a.Store = store
	a.closeStore = closeStore

	loader := embedding.Loader{APIKey: cfg.EmbeddingAPIKey, BaseURL: cfg.EmbeddingBaseURL}
	if loader.APIKey == "" {
		loader.APIKey = cfg.OpenAIAPIKey
	}
	a.Models = embedding.NewCache(loader.Load)
	a.Orchestrator = retrieval.NewOrchestrator(store, a.Models, retrieval.Options{
		ModelID:      cfg.EmbeddingModel,
		City:         cfg.City,
		BatchSize:    cfg.EmbeddingBatchSize,
		StoreTimeout: cfg.StoreTimeout,
		Metrics:      a.Metrics,
	})

	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	composer := answer.NewComposer(gen, cfg.CityDisplayName, a.Metrics)

	a.Parser = query.NewParser(cfg.City, query.NewResolver(loc, nil))
	a.Engine = assistant.NewEngine(a.Parser, a.Metrics,
		&assistant.Semantic{Retriever: a.Orchestrator, Composer: composer},
		&assistant.Keyword{Store: store, Parser: a.Parser, CityName: cfg.CityDisplayName, Timeout: cfg.StoreTimeout},
	)

	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			a.Recorder = fr
		}
	}
	return a, nil
}

// OpenStore connects to the configured event store. The returned close
// function may be nil.
func OpenStore(ctx context.Context, cfg *config.Config) (events.Store, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreMongo:
		s, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		log.Printf("✅ Connected to MongoDB %s/%s", cfg.MongoDatabase, cfg.MongoCollection)
		return s, s.Close, nil
	case config.StoreSQLite:
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		log.Printf("✅ Opened SQLite event store at %s", cfg.SQLitePath)
		return s, func(context.Context) error { return s.Close() }, nil
	case config.StoreMemory:
		return events.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newGenerator(cfg *config.Config) (answer.Generator, error) {
	client, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if errors.Is(err, llm.ErrUnknownProvider) {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	if err != nil {
		// Missing credentials or an auth failure only cost the generated wording.
		log.Printf("⚠️ Generation provider %s unavailable, answers use the template: %v", cfg.LLMProvider, err)
		return nil, nil
	}
	if client == nil {
		log.Println("ℹ️ No generation provider configured, answers use the template")
		return nil, nil
	}
	return llm.NewPromptGenerator(client, readSystemPrompt(cfg.SystemPromptPath), cfg.GenerationTimeout), nil
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Close releases the event store connection.
func (a *App) Close(ctx context.Context) error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore(ctx)
}
