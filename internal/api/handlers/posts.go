package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mediascribe/mediascribe/internal/models"
)

const postPreviewLen = 200

// BlogStore persists blog posts and their title suggestions.
type BlogStore interface {
	CreatePost(ctx context.Context, title, content string) (*models.BlogPost, error)
	GetPost(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	ListPosts(ctx context.Context, limit int) ([]models.BlogPost, error)
	UpdatePost(ctx context.Context, id uuid.UUID, title, content string) (*models.BlogPost, error)
	SaveSuggestions(ctx context.Context, postID *uuid.UUID, content string, suggestions []string) (*models.TitleSuggestion, error)
	LatestSuggestions(ctx context.Context, postID uuid.UUID) ([]string, error)
}

// TitleSuggester produces title candidates for blog content.
type TitleSuggester interface {
	Suggest(ctx context.Context, content string, n int) []string
}

type PostHandler struct {
	store     BlogStore
	suggester TitleSuggester
	notifier  Notifier
}

func NewPostHandler(store BlogStore, suggester TitleSuggester, notifier Notifier) *PostHandler {
	return &PostHandler{store: store, suggester: suggester, notifier: notifier}
}

type createPostRequest struct {
	Title               string `json:"title"`
	Content             string `json:"content"`
	GenerateSuggestions bool   `json:"generate_suggestions"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and content required"})
		return
	}

	post, err := h.store.CreatePost(r.Context(), req.Title, req.Content)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]interface{}{
		"id":              post.ID,
		"title":           post.Title,
		"content_preview": preview(post.Content, postPreviewLen),
		"created_at":      post.CreatedAt,
	}

	if req.GenerateSuggestions {
		suggestions := h.suggester.Suggest(r.Context(), req.Content, 0)
		if _, err := h.store.SaveSuggestions(r.Context(), &post.ID, req.Content, suggestions); err != nil {
			slog.Error("failed to save title suggestions", "post_id", post.ID, "error", err)
		}
		resp["title_suggestions"] = suggestions
	}

	if h.notifier != nil {
		if err := h.notifier.Dispatch(r.Context(), models.EventPostCreated, map[string]interface{}{
			"post_id": post.ID,
			"title":   post.Title,
		}); err != nil {
			slog.Error("webhook dispatch failed", "event", models.EventPostCreated, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context(), listLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	items := make([]map[string]interface{}, 0, len(posts))
	for _, p := range posts {
		items = append(items, map[string]interface{}{
			"id":              p.ID,
			"title":           p.Title,
			"content_preview": preview(p.Content, postPreviewLen),
			"created_at":      p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid post ID"})
		return
	}

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	suggestions, err := h.store.LatestSuggestions(r.Context(), post.ID)
	if err != nil {
		slog.Error("failed to load title suggestions", "post_id", post.ID, "error", err)
		suggestions = nil
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":                post.ID,
		"title":             post.Title,
		"content":           post.Content,
		"created_at":        post.CreatedAt,
		"updated_at":        post.UpdatedAt,
		"title_suggestions": suggestions,
	})
}

type updatePostRequest struct {
	Title               string `json:"title"`
	Content             string `json:"content"`
	GenerateSuggestions bool   `json:"generate_suggestions"`
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid post ID"})
		return
	}

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	post, err := h.store.UpdatePost(r.Context(), id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]interface{}{
		"id":              post.ID,
		"title":           post.Title,
		"content_preview": preview(post.Content, postPreviewLen),
		"updated_at":      post.UpdatedAt,
	}

	if req.GenerateSuggestions && req.Content != "" {
		suggestions := h.suggester.Suggest(r.Context(), req.Content, 0)
		if _, err := h.store.SaveSuggestions(r.Context(), &post.ID, req.Content, suggestions); err != nil {
			slog.Error("failed to save title suggestions", "post_id", post.ID, "error", err)
		}
		resp["title_suggestions"] = suggestions
	}

	writeJSON(w, http.StatusOK, resp)
}
