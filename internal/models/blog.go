package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Post publication statuses.
const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
)

// Limits applied to public post creation.
const (
	MaxPublicPostTags       = 5
	MaxPublicPostCategories = 3
)

// PostCategory groups blog posts.
type PostCategory struct {
	BaseModel
	Name string `gorm:"uniqueIndex" json:"name"`
}

// Post is a blog entry authored by a user.
type Post struct {
	BaseModel
	AuthorID      uuid.UUID      `gorm:"type:uuid;index" json:"author_id"`
	Author        *User          `json:"author,omitempty"`
	Title         string         `json:"title"`
	Slug          string         `gorm:"index" json:"slug"`
	CoverImage    string         `json:"cover_image"`
	Excerpt       string         `json:"excerpt"`
	Content       string         `json:"content"`
	Format        string         `json:"format"`
	Status        string         `gorm:"default:DRAFT" json:"status"`
	Visibility    string         `json:"visibility"`
	ReadTime      int            `json:"read_time"`
	Views         int            `json:"views"`
	AllowComments bool           `gorm:"default:true" json:"allow_comments"`
	PublishedAt   *time.Time     `json:"published_at"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	Categories    []PostCategory `gorm:"many2many:post_post_categories;" json:"categories,omitempty"`
}
