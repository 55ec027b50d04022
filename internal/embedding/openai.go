package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAI embeds through an OpenAI-compatible /embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAI creates the client and probes the model once for its dimension.
func NewOpenAI(ctx context.Context, apiKey, baseURL, model string, httpClient *http.Client) (*OpenAI, error) {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	e := &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
	probe, err := e.Embed(ctx, "boyut")
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", model, err)
	}
	e.dim = len(probe)
	return e, nil
}

func (e *OpenAI) Dimensions() int { return e.dim }

func (e *OpenAI) ModelID() string { return ProviderOpenAI + ":" + e.model }

func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(texts) {
			idx = i
		}
		vectors[idx] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty embedding at position %d", i)
		}
	}
	return vectors, nil
}
