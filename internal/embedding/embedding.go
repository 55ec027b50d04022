// Package embedding provides text embedders and a process-wide model cache.
package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Embedder turns text into fixed-dimension vectors. Implementations are
// immutable after construction and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelID() string
}

const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
)

const DefaultOllamaHost = "http://localhost:11434"

// ParseModelID splits "provider:model". The model part may itself contain
// colons, e.g. "ollama:nomic-embed-text:latest".
func ParseModelID(id string) (provider, model string, err error) {
	provider, model, ok := strings.Cut(strings.TrimSpace(id), ":")
	if !ok || provider == "" {
		return "", "", fmt.Errorf("invalid embedding model id %q, want provider:model", id)
	}
	return strings.ToLower(provider), model, nil
}

// Loader creates embedders from model identifiers.
type Loader struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Load builds the embedder named by id. Remote providers are probed once to
// learn their output dimension.
func (l Loader) Load(ctx context.Context, id string) (Embedder, error) {
	provider, model, err := ParseModelID(id)
	if err != nil {
		return nil, err
	}
	switch provider {
	case ProviderHashing:
		return NewHashingFromModel(model)
	case ProviderOpenAI:
		if model == "" {
			return nil, fmt.Errorf("openai embedder: empty model name")
		}
		return NewOpenAI(ctx, l.APIKey, l.BaseURL, model, l.HTTPClient)
	case ProviderOllama:
		if model == "" {
			return nil, fmt.Errorf("ollama embedder: empty model name")
		}
		host := l.BaseURL
		if host == "" {
			host = DefaultOllamaHost
		}
		return NewOllama(ctx, host, model, l.HTTPClient)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
