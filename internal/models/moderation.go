package models

import "time"

// ModerationUpdate is the staged outcome of moderating one post.
type ModerationUpdate struct {
	Fields      []Field          // in scan order
	Redacted    map[Field]string // redacted text per moderated field
	ModeratedAt time.Time
}

// ModerationLogEntry is the append-only audit record of one moderation event
type ModerationLogEntry struct {
	ID              string            `json:"id" bson:"_id,omitempty" firestore:"-"`
	PostID          string            `json:"post_id" bson:"post_id" firestore:"post_id"`
	ModeratedFields []string          `json:"moderated_fields" bson:"moderated_fields" firestore:"moderated_fields"`
	FieldCount      int               `json:"field_count" bson:"field_count" firestore:"field_count"`
	OriginalContent map[string]string `json:"original_content" bson:"original_content" firestore:"original_content"`
	RedactedContent map[string]string `json:"redacted_content" bson:"redacted_content" firestore:"redacted_content"`
	UserID          string            `json:"user_id,omitempty" bson:"user_id,omitempty" firestore:"user_id,omitempty"`
	Timestamp       time.Time         `json:"timestamp" bson:"timestamp" firestore:"timestamp"`
}
