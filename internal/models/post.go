package models

import (
	"time"
)

// Field names a free-text post field that goes through moderation.
type Field string

const (
	FieldContent Field = "content"
	FieldTitle   Field = "title"
)

// ModeratedFields is the fixed, ordered list of fields scanned on creation.
var ModeratedFields = []Field{FieldContent, FieldTitle}

// Post represents a user-authored post stored in the document store
type Post struct {
	ID         string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	UserID     string    `json:"userId" bson:"userId" firestore:"userId"` // Firebase UID of the author
	Title      string    `json:"title" bson:"title" firestore:"title"`
	Content    string    `json:"content" bson:"content" firestore:"content"`
	LikesCount int64     `json:"likesCount" bson:"likesCount" firestore:"likesCount"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`

	// Written once by moderation, never by the author.
	IsModerated      bool       `json:"is_moderated,omitempty" bson:"is_moderated,omitempty" firestore:"is_moderated,omitempty"`
	ContentModerated bool       `json:"content_moderated,omitempty" bson:"content_moderated,omitempty" firestore:"content_moderated,omitempty"`
	TitleModerated   bool       `json:"title_moderated,omitempty" bson:"title_moderated,omitempty" firestore:"title_moderated,omitempty"`
	ModerationCount  int        `json:"moderation_count,omitempty" bson:"moderation_count,omitempty" firestore:"moderation_count,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty" bson:"moderated_at,omitempty" firestore:"moderated_at,omitempty"`

	ModerationError        bool       `json:"moderation_error,omitempty" bson:"moderation_error,omitempty" firestore:"moderation_error,omitempty"`
	ModerationErrorMessage string     `json:"moderation_error_message,omitempty" bson:"moderation_error_message,omitempty" firestore:"moderation_error_message,omitempty"`
	ModerationErrorAt      *time.Time `json:"moderation_error_at,omitempty" bson:"moderation_error_at,omitempty" firestore:"moderation_error_at,omitempty"`
}

// FieldValue returns the current text of a moderated field.
func (p *Post) FieldValue(f Field) string {
	switch f {
	case FieldContent:
		return p.Content
	case FieldTitle:
		return p.Title
	}
	return ""
}

// SetModeratedField replaces the text of f and raises its per-field flag.
func (p *Post) SetModeratedField(f Field, text string) {
	switch f {
	case FieldContent:
		p.Content = text
		p.ContentModerated = true
	case FieldTitle:
		p.Title = text
		p.TitleModerated = true
	}
}

// FlagName is the document key of the per-field "was moderated" flag.
func (f Field) FlagName() string {
	return string(f) + "_moderated"
}

// FeedPost is a post annotated with the caller's like state
type FeedPost struct {
	Post
	Liked bool `json:"liked"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=120"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// PostCreatedEvent is delivered by the platform once a post document exists
type PostCreatedEvent struct {
	PostID string `json:"postId" validate:"required"`
	Post   *Post  `json:"post"`
}
