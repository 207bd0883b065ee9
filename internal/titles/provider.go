// Package titles generates blog-title suggestions from post content.
package titles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mediascribe/mediascribe/internal/config"
)

// Provider is a model-backed title source. Implementations return up to n
// candidate titles for the given content.
type Provider interface {
	GenerateTitles(ctx context.Context, content string, n int) ([]string, error)
	Name() string
}

// gateway routes title generation to the configured default provider and
// retries once on the fallback provider.
type gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	fallbackProvider string
}

func newGateway(cfg config.TitlesConfig) *gateway {
	g := &gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  cfg.DefaultProvider,
		fallbackProvider: cfg.FallbackProvider,
	}
	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicModel)
	}
	return g
}

func (g *gateway) GenerateTitles(ctx context.Context, content string, n int) ([]string, error) {
	p, ok := g.providers[g.defaultProvider]
	if !ok {
		return nil, fmt.Errorf("title provider %q not configured", g.defaultProvider)
	}

	titles, err := p.GenerateTitles(ctx, content, n)
	if err == nil {
		return titles, nil
	}

	fb, ok := g.providers[g.fallbackProvider]
	if !ok || g.fallbackProvider == g.defaultProvider {
		return nil, err
	}
	slog.Warn("primary title provider failed, trying fallback",
		"primary", g.defaultProvider,
		"fallback", g.fallbackProvider,
		"error", err,
	)
	return fb.GenerateTitles(ctx, content, n)
}

func (g *gateway) Name() string { return "gateway" }
