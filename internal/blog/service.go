// Package blog persists blog posts and their title suggestions.
package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediascribe/mediascribe/internal/models"
)

// suggestionContentLimit caps how much source content is stored alongside
// generated suggestions.
const suggestionContentLimit = 1000

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) CreatePost(ctx context.Context, title, content string) (*models.BlogPost, error) {
	var p models.BlogPost
	err := s.db.QueryRow(ctx,
		`INSERT INTO blog_posts (id, title, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, content, created_at, updated_at`,
		uuid.New(), title, content,
	).Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert blog post: %w", err)
	}
	return &p, nil
}

func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var p models.BlogPost
	err := s.db.QueryRow(ctx,
		`SELECT id, title, content, created_at, updated_at FROM blog_posts WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get blog post: %w", err)
	}
	return &p, nil
}

func (s *Service) ListPosts(ctx context.Context, limit int) ([]models.BlogPost, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, content, created_at, updated_at
		 FROM blog_posts ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	var posts []models.BlogPost
	for rows.Next() {
		var p models.BlogPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// UpdatePost overwrites title and/or content; empty values leave the
// stored field untouched.
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, title, content string) (*models.BlogPost, error) {
	var p models.BlogPost
	err := s.db.QueryRow(ctx,
		`UPDATE blog_posts
		 SET title = COALESCE(NULLIF($2, ''), title),
		     content = COALESCE(NULLIF($3, ''), content),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING id, title, content, created_at, updated_at`,
		id, title, content,
	).Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update blog post: %w", err)
	}
	return &p, nil
}

// SaveSuggestions records generated titles, optionally attached to a post.
func (s *Service) SaveSuggestions(ctx context.Context, postID *uuid.UUID, content string, suggestions []string) (*models.TitleSuggestion, error) {
	if len(content) > suggestionContentLimit {
		content = content[:suggestionContentLimit]
	}
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return nil, fmt.Errorf("marshal suggestions: %w", err)
	}

	var ts models.TitleSuggestion
	err = s.db.QueryRow(ctx,
		`INSERT INTO title_suggestions (id, blog_post_id, content, suggestions)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, blog_post_id, content, suggestions, created_at`,
		uuid.New(), postID, content, payload,
	).Scan(&ts.ID, &ts.BlogPostID, &ts.Content, &ts.Suggestions, &ts.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert title suggestions: %w", err)
	}
	return &ts, nil
}

// LatestSuggestions returns the most recent suggestion set for a post, or
// nil when none exist.
func (s *Service) LatestSuggestions(ctx context.Context, postID uuid.UUID) ([]string, error) {
	var payload json.RawMessage
	err := s.db.QueryRow(ctx,
		`SELECT suggestions FROM title_suggestions
		 WHERE blog_post_id = $1 ORDER BY created_at DESC LIMIT 1`,
		postID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get title suggestions: %w", err)
	}

	var suggestions []string
	if err := json.Unmarshal(payload, &suggestions); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	return suggestions, nil
}
