package titles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerStub struct {
	fn func(ctx context.Context, content string, n int) ([]string, error)
}

func (s providerStub) GenerateTitles(ctx context.Context, content string, n int) ([]string, error) {
	return s.fn(ctx, content, n)
}

func (s providerStub) Name() string { return "stub" }

const sampleContent = "Kubernetes networking is complicated for newcomers. " +
	"Service meshes add yet another layer of indirection. " +
	"This post walks through the basics step by step."

func TestSuggestPrefersModelTitles(t *testing.T) {
	g := newGenerator(providerStub{fn: func(_ context.Context, _ string, n int) ([]string, error) {
		return []string{"Kubernetes Networking Demystified", "A Field Guide to Service Meshes", "Packets All the Way Down"}, nil
	}})

	got := g.Suggest(context.Background(), sampleContent, 3)
	assert.Equal(t, []string{
		"Kubernetes Networking Demystified",
		"A Field Guide to Service Meshes",
		"Packets All the Way Down",
	}, got)
}

func TestSuggestFallsBackToRuleBasedOnProviderError(t *testing.T) {
	g := newGenerator(providerStub{fn: func(context.Context, string, int) ([]string, error) {
		return nil, errors.New("provider down")
	}})

	got := g.Suggest(context.Background(), sampleContent, 3)
	require.Len(t, got, 3)
	for _, title := range got {
		assert.NotContains(t, staticFallback, title)
	}
	// Keyword-driven templates should surface a word from the first sentence.
	joined := strings.Join(got, " | ")
	assert.Contains(t, joined, "Kubernetes")
}

func TestSuggestStaticFallbackWhenEverythingFails(t *testing.T) {
	g := newGenerator(providerStub{fn: func(context.Context, string, int) ([]string, error) {
		return nil, errors.New("provider down")
	}})

	// Content with no usable keywords and no title-sized first sentence.
	got := g.Suggest(context.Background(), "of the to", 3)
	assert.Equal(t, staticFallback, got)
}

func TestSuggestDeduplicatesPreservingOrder(t *testing.T) {
	g := newGenerator(providerStub{fn: func(context.Context, string, int) ([]string, error) {
		return []string{"Same Title", "Same Title", "Other Title"}, nil
	}})

	got := g.Suggest(context.Background(), sampleContent, 3)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "Same Title", got[0])
	assert.Equal(t, "Other Title", got[1])
}

func TestSuggestDefaultsCount(t *testing.T) {
	g := newGenerator(providerStub{fn: func(context.Context, string, int) ([]string, error) {
		return []string{"One", "Two", "Three", "Four", "Five"}, nil
	}})

	got := g.Suggest(context.Background(), sampleContent, 0)
	assert.Len(t, got, 3)
}

func TestExtractKeywordsFiltersStopwordsAndShortWords(t *testing.T) {
	got := extractKeywords("The quick deployment of the container platform was flawless. Second sentence here.", 5)

	assert.NotContains(t, got, "the")
	assert.NotContains(t, got, "was")
	for _, w := range got {
		assert.Greater(t, len(w), 3)
	}
	assert.Contains(t, got, "deployment")
	assert.Contains(t, got, "container")
}

func TestExtractKeywordsFrequencyWins(t *testing.T) {
	got := extractKeywords("Observability observability metrics observability metrics tracing", 3)

	require.NotEmpty(t, got)
	assert.Equal(t, "observability", got[0])
	assert.Equal(t, "metrics", got[1])
}

func TestPreprocessCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "hello world again", preprocess("hello   world\t\nagain"))
}

func TestPreprocessLongContentPicksParagraphs(t *testing.T) {
	first := strings.Repeat("first paragraph sentence. ", 20)
	middle := strings.Repeat("middle paragraph sentence. ", 20)
	last := strings.Repeat("closing paragraph sentence. ", 20)
	content := first + "\n\n" + middle + "\n\n" + last

	got := preprocess(content)
	assert.Contains(t, got, "first paragraph")
	assert.Contains(t, got, "closing paragraph")
}

func TestPreprocessLongContentWithoutParagraphsTruncates(t *testing.T) {
	content := strings.Repeat("word ", 600)

	got := preprocess(content)
	assert.Less(t, len(got), len(content))
	assert.Contains(t, got, " ... ")
}

func TestRuleBasedTitlesUseFirstSentenceWhenTitleSized(t *testing.T) {
	got := ruleBasedTitles("Go generics finally landed in the standard library. More text follows here.", []string{"generics"})

	require.NotEmpty(t, got)
	assert.Equal(t, "Go generics finally landed in the standard library", got[0])
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Hello", capitalize("hello"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Über", capitalize("über"))
}
