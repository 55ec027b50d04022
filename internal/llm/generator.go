package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrEmptyResponse = errors.New("llm returned empty response")

// PromptGenerator adapts a chat Client to single-prompt generation with a
// bounded timeout. An optional system prompt is sent first.
type PromptGenerator struct {
	client  Client
	system  string
	timeout time.Duration
}

func NewPromptGenerator(client Client, system string, timeout time.Duration) *PromptGenerator {
	return &PromptGenerator{client: client, system: strings.TrimSpace(system), timeout: timeout}
}

func (g *PromptGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	var msgs []Message
	if g.system != "" {
		msgs = append(msgs, Message{Role: "system", Content: g.system})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt})

	resp, err := g.client.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
