package internal

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the live ModelClient over the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	maxTokens int64
}

// NewAnthropicClient builds a client authenticated with the given key.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		maxTokens: 4096,
	}
}

// Stream runs one streaming completion, emitting text deltas as they arrive
// and returning the accumulated final text.
func (c *AnthropicClient) Stream(ctx context.Context, req ModelRequest, emit func(delta string) error) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, turn := range req.History {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Actor == "user" {
			messages = append(messages, anthropic.NewUserMessage(block))
		} else {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))

	stream := c.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.Instruction}},
		Messages:  messages,
	})

	var full strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text == "" {
					continue
				}
				full.WriteString(delta.Text)
				if err := emit(delta.Text); err != nil {
					return "", err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", err
	}

	return full.String(), nil
}
