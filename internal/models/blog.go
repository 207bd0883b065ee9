package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BlogPost struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TitleSuggestion struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BlogPostID  *uuid.UUID      `json:"blog_post_id,omitempty" db:"blog_post_id"`
	Content     string          `json:"content" db:"content"`
	Suggestions json.RawMessage `json:"suggestions" db:"suggestions"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
