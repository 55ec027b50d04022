package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
	ProviderNone   LLMProvider = "none"
)

type StoreDriver string

const (
	StoreMongo  StoreDriver = "mongo"
	StoreSQLite StoreDriver = "sqlite"
	StoreMemory StoreDriver = "memory"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// LLM settings
	LLMProvider       LLMProvider   `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	OpenAIModel       string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken  string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID    string        `env:"YANDEX_FOLDER_ID"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"20s"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH"`

	// Embeddings. The hashing:<dim> default only matches shared word forms;
	// openai:<model> or ollama:<model> give real semantic similarity.
	EmbeddingModel     string `env:"EMBEDDING_MODEL" envDefault:"hashing:384"`
	EmbeddingAPIKey    string `env:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL   string `env:"EMBEDDING_BASE_URL"`
	EmbeddingBatchSize int    `env:"EMBEDDING_BATCH_SIZE" envDefault:"16"`

	// Event store
	StoreDriver     StoreDriver   `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI        string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string        `env:"MONGO_DATABASE" envDefault:"etkinlik_db"`
	MongoCollection string        `env:"MONGO_COLLECTION" envDefault:"events"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"data/events.db"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Assistant
	City            string `env:"CITY" envDefault:"antalya"`
	CityDisplayName string `env:"CITY_DISPLAY_NAME" envDefault:"Antalya"`
	Timezone        string `env:"TIMEZONE" envDefault:"Europe/Istanbul"`
	TopK            int    `env:"TOP_K" envDefault:"5"`

	// HTTP API
	APIHost        string  `env:"API_HOST" envDefault:"0.0.0.0"`
	APIPort        int     `env:"API_PORT" envDefault:"5000"`
	ChatRatePerSec float64 `env:"CHAT_RATE_PER_SEC" envDefault:"1"`
	ChatRateBurst  int     `env:"CHAT_RATE_BURST" envDefault:"5"`

	// TRUST_PROXY takes the client address from X-Forwarded-For. Enable only
	// behind a reverse proxy that overwrites the header.
	TrustProxy       bool          `env:"TRUST_PROXY" envDefault:"false"`
	ChatRateIdle     time.Duration `env:"CHAT_RATE_IDLE" envDefault:"10m"`
	LimiterSweepSpec string        `env:"LIMITER_SWEEP_SPEC" envDefault:"@every 5m"`

	// Storage
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/log.jsonl"`

	// Scheduler
	IndexRefreshSpec string `env:"INDEX_REFRESH_SPEC" envDefault:"@every 15m"`
	ReportSpec       string `env:"REPORT_SPEC" envDefault:"0 21 * * *"`

	// Formatting
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"Markdown"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	switch cfg.StoreDriver {
	case StoreMongo, StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K must be positive, got %d", cfg.TopK)
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Location loads the configured time zone, falling back to UTC+3 when the
// zone database is missing.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("⚠️ Unknown timezone %q, using UTC+3: %v", c.Timezone, err)
		return time.FixedZone("TRT", 3*60*60)
	}
	return loc
}

// APIAddr is the listen address of the HTTP API.
func (c *Config) APIAddr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}
