package titles

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = "claude-3-haiku-20240307"
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// GenerateTitles asks for n titles in one message, one per line.
func (p *AnthropicProvider) GenerateTitles(ctx context.Context, content string, n int) ([]string, error) {
	prompt := fmt.Sprintf("Suggest %d concise blog post titles for the content below. Reply with one title per line, no numbering, no quotes.\n\n%s", n, content)

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   256,
		Temperature: anthropic.Float(0.9),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic titles: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	var titles []string
	for _, line := range strings.Split(text, "\n") {
		if t := cleanTitle(line); t != "" {
			titles = append(titles, t)
		}
	}
	if len(titles) > n {
		titles = titles[:n]
	}
	return titles, nil
}
