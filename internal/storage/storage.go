package storage

import "time"

// Interaction is one answered question.
// Interactions are expected to be appended in chronological order.
type Interaction struct {
	Timestamp         time.Time `json:"timestamp"`
	UserID            int64     `json:"user_id"`
	Channel           string    `json:"channel"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Tier              string    `json:"tier"`
	SourceCount       int       `json:"source_count"`
}

const (
	ChannelTelegram = "telegram"
	ChannelHTTP     = "http"
	ChannelMCP      = "mcp"
)

// Recorder abstracts persistence of interactions.
// LoadInteractions should return interactions in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(it Interaction) error
	LoadInteractions() ([]Interaction, error)
}
