package titles

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/mediascribe/mediascribe/internal/config"
)

const (
	maxContentLen      = 1024
	defaultSuggestions = 3
	keywordCount       = 5
)

// staticFallback is returned when every generation strategy fails.
var staticFallback = []string{"My Blog Post", "New Article", "Interesting Insights"}

var ruleTemplates = []string{
	"The Ultimate Guide to %s",
	"How to Master %s in Simple Steps",
	"%s: A Comprehensive Analysis",
	"Understanding %s: Key Insights and Strategies",
	"The Essential Guide to %s and %s",
	"Why %s Matters in Today's World",
	"%s: Trends and Future Perspectives",
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true, "about": true,
	"of": true,
}

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	wordRe     = regexp.MustCompile(`\b\w+\b`)
	sentenceRe = regexp.MustCompile(`[.!?]`)
)

// Generator produces title suggestions, preferring the model provider and
// degrading to keyword templates, then to static defaults. It never
// returns an error to the caller.
type Generator struct {
	provider Provider
}

func NewGenerator(cfg config.TitlesConfig) *Generator {
	return &Generator{provider: newGateway(cfg)}
}

func newGenerator(p Provider) *Generator {
	return &Generator{provider: p}
}

// Suggest returns up to n unique titles for the given content.
func (g *Generator) Suggest(ctx context.Context, content string, n int) []string {
	if n <= 0 {
		n = defaultSuggestions
	}

	processed := preprocess(content)
	keywords := extractKeywords(processed, keywordCount)

	var all []string

	modelTitles, err := g.provider.GenerateTitles(ctx, processed, n)
	if err != nil {
		slog.Error("model title generation failed, using rule-based titles", "error", err)
	} else {
		all = append(all, modelTitles...)
	}

	all = append(all, ruleBasedTitles(processed, keywords)...)

	unique := dedupe(all)
	if len(unique) == 0 {
		return append([]string(nil), staticFallback...)
	}
	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

// preprocess collapses whitespace and shrinks long content to its most
// title-relevant parts: first, middle and last paragraphs when there are
// enough, otherwise the head and tail halves.
func preprocess(content string) string {
	paragraphs := splitParagraphs(content)
	for i, p := range paragraphs {
		paragraphs[i] = strings.TrimSpace(spaceRe.ReplaceAllString(p, " "))
	}
	content = strings.Join(paragraphs, "\n\n")

	if len(content) <= maxContentLen {
		return strings.ReplaceAll(content, "\n\n", " ")
	}

	if len(paragraphs) >= 3 {
		selected := []string{
			paragraphs[0],
			paragraphs[len(paragraphs)/2],
			paragraphs[len(paragraphs)-1],
		}
		return strings.Join(selected, " ")
	}

	flat := strings.ReplaceAll(content, "\n\n", " ")
	half := maxContentLen / 2
	return flat[:half] + " ... " + flat[len(flat)-half:]
}

func splitParagraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractKeywords takes the most frequent non-stopword words of the first
// sentence, longest-standing occurrence first on frequency ties.
func extractKeywords(content string, n int) []string {
	sentences := sentenceRe.Split(content, -1)
	first := ""
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			first = strings.TrimSpace(s)
			break
		}
	}
	if first == "" {
		return nil
	}

	freq := make(map[string]int)
	var order []string
	for _, w := range wordRe.FindAllString(first, -1) {
		w = strings.ToLower(w)
		if stopwords[w] || len(w) <= 3 {
			continue
		}
		if _, seen := freq[w]; !seen {
			order = append(order, w)
		}
		freq[w]++
	}

	keywords := append([]string(nil), order...)
	// Stable selection sort: frequency descending, first-seen on ties.
	for i := 0; i < len(keywords); i++ {
		best := i
		for j := i + 1; j < len(keywords); j++ {
			if freq[keywords[j]] > freq[keywords[best]] {
				best = j
			}
		}
		if best != i {
			picked := keywords[best]
			copy(keywords[i+1:best+1], keywords[i:best])
			keywords[i] = picked
		}
	}

	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// ruleBasedTitles builds template titles from the extracted keywords, plus
// the first sentence itself when it is title-sized.
func ruleBasedTitles(content string, keywords []string) []string {
	var titles []string

	firstSentence := strings.TrimSpace(strings.SplitN(content, ".", 2)[0])
	if len(firstSentence) > 10 && len(firstSentence) < 70 {
		titles = append(titles, firstSentence)
	}

	for _, tmpl := range ruleTemplates {
		twoSlots := strings.Count(tmpl, "%s") == 2
		switch {
		case twoSlots && len(keywords) >= 2:
			titles = append(titles, formatTemplate(tmpl, capitalize(keywords[0]), capitalize(keywords[1])))
		case !twoSlots && len(keywords) >= 1:
			titles = append(titles, formatTemplate(tmpl, capitalize(keywords[0])))
		}
	}

	if len(titles) > 5 {
		titles = titles[:5]
	}
	return titles
}

func formatTemplate(tmpl string, args ...string) string {
	out := tmpl
	for _, a := range args {
		out = strings.Replace(out, "%s", a, 1)
	}
	return out
}

func dedupe(titles []string) []string {
	seen := make(map[string]bool, len(titles))
	var out []string
	for _, t := range titles {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
