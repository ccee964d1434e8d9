package rag

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultChatModel = "gpt-4"

	// Temperature zero keeps answers about the CV reproducible.
	Temperature = 0
	MaxTokens   = 500
)

// Generator produces the assistant turn for a system prompt and a user
// message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// OpenAIGenerator calls the chat completions endpoint.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(client openai.Client, model string) *OpenAIGenerator {
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAIGenerator{client: client, model: model}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(Temperature),
		MaxTokens:   openai.Int(MaxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// NewOpenAIClient builds the client shared by the embedder and the
// generator. Retries are disabled: a failed call is reported to the caller
// straight away.
func NewOpenAIClient(apiKey, baseURL string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(opts...)
}
