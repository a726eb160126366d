package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"ArticleEvaluator/internal/config"
	"ArticleEvaluator/internal/ports"
)

// ChatGPTClient implements ports.ChatModel backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	client openai.Client
	apiKey string
}

var _ ports.ChatModel = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. SDK retries are
// disabled; a failed call is reported once to the caller.
func NewChatGPTClient(cfg config.OpenAIConfig, opts ...option.RequestOption) *ChatGPTClient {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}

	return &ChatGPTClient{
		client: openai.NewClient(append(base, opts...)...),
		apiKey: cfg.APIKey,
	}
}

// Configured reports whether an API credential is present.
func (c *ChatGPTClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Complete sends the system and user prompts and returns the first choice text.
func (c *ChatGPTClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if c == nil {
		return "", errors.New("chatgpt client is nil")
	}
	if c.apiKey == "" {
		return "", errors.New("chatgpt client misconfigured: api key is empty")
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.JSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
