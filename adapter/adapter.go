// Package adapter turns caller-constructed LLM clients into the summarize
// callback the engine consumes. The engine itself never builds API clients;
// a model-routing collaborator creates the client and hands the wrapper in.
package adapter

import (
	"context"
	"errors"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/tokenfit/tokenfit/summarize"
)

// Default models for each provider.
const (
	DefaultAnthropicModel = "claude-sonnet-4-6"
	DefaultOpenAIModel    = "gpt-4o"
)

// Anthropic wraps an Anthropic client into an AI-summarize callback. An
// empty model uses DefaultAnthropicModel.
func Anthropic(client *anthropic.Client, model string) summarize.AIFunc {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		if maxTokens <= 0 {
			maxTokens = 1024
		}
		resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
			Model: anthropic.Model(model),
			Messages: []anthropic.Message{
				{
					Role:    anthropic.RoleUser,
					Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
				},
			},
			MaxTokens: maxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("anthropic summarize: %w", err)
		}
		if len(resp.Content) == 0 {
			return "", errors.New("anthropic summarize: empty response")
		}
		return resp.Content[0].GetText(), nil
	}
}

// OpenAI wraps an OpenAI client into an AI-summarize callback. An empty
// model uses DefaultOpenAIModel.
func OpenAI(client *openai.Client, model string) summarize.AIFunc {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		if maxTokens <= 0 {
			maxTokens = 1024
		}
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     model,
			MaxTokens: maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return "", fmt.Errorf("openai summarize: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai summarize: empty response")
		}
		return resp.Choices[0].Message.Content, nil
	}
}
