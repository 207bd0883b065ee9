package titles

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// GenerateTitles asks the model for candidates in two passes: a sampled,
// higher-temperature pass for variety and a conservative pass for a safe
// pick. Results are returned in generation order, unfiltered.
func (p *OpenAIProvider) GenerateTitles(ctx context.Context, content string, n int) ([]string, error) {
	creative := n - 1
	if creative < 1 {
		creative = 1
	}

	var titles []string

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.9,
		TopP:        0.95,
		N:           creative,
		MaxTokens:   30,
		Messages:    titleMessages(content),
	})
	if err != nil {
		return nil, fmt.Errorf("openai titles: %w", err)
	}
	for _, choice := range resp.Choices {
		titles = append(titles, cleanTitle(choice.Message.Content))
	}

	resp, err = p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.7,
		MaxTokens:   30,
		Messages:    titleMessages(content),
	})
	if err != nil {
		return nil, fmt.Errorf("openai titles: %w", err)
	}
	if len(resp.Choices) > 0 {
		titles = append(titles, cleanTitle(resp.Choices[0].Message.Content))
	}

	return titles, nil
}

func titleMessages(content string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You suggest a single concise blog post title. Reply with the title only, no quotes.",
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: "Suggest a title for this blog post:\n\n" + content,
		},
	}
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return capitalize(s)
}
