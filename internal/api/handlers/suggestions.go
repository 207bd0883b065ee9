package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const minSuggestionContentLen = 50

// SuggestionCache memoizes generated suggestions across requests.
type SuggestionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type SuggestionHandler struct {
	store     BlogStore
	suggester TitleSuggester
	cache     SuggestionCache
	cacheTTL  time.Duration
}

func NewSuggestionHandler(store BlogStore, suggester TitleSuggester, c SuggestionCache, cacheTTL time.Duration) *SuggestionHandler {
	return &SuggestionHandler{
		store:     store,
		suggester: suggester,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

type suggestionRequest struct {
	Content        string `json:"content"`
	NumSuggestions int    `json:"num_suggestions"`
}

// Suggest generates title suggestions for draft content, without creating
// a blog post. Identical content is served from cache.
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(strings.TrimSpace(req.Content)) < minSuggestionContentLen {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("please provide blog content with at least %d characters", minSuggestionContentLen),
		})
		return
	}

	key := suggestionCacheKey(req.Content, req.NumSuggestions)
	if h.cache != nil {
		var cached []string
		if err := h.cache.Get(r.Context(), key, &cached); err == nil && len(cached) > 0 {
			writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": cached, "cached": true})
			return
		}
	}

	suggestions := h.suggester.Suggest(r.Context(), req.Content, req.NumSuggestions)

	if _, err := h.store.SaveSuggestions(r.Context(), nil, req.Content, suggestions); err != nil {
		slog.Error("failed to save title suggestions", "error", err)
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), key, suggestions, h.cacheTTL); err != nil {
			slog.Warn("failed to cache title suggestions", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions, "cached": false})
}

func suggestionCacheKey(content string, n int) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("titles:%s:%d", hex.EncodeToString(sum[:]), n)
}
