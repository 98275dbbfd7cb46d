package models

import "time"

const (
	NotificationTypeLike          = "like"
	NotificationTypePostModerated = "post_moderated"
)

// Notification represents an in-app inbox entry (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // like, post_moderated
	RecipientID string    `json:"recipient_id" gorm:"size:128;index"`
	ActorID     string    `json:"actor_id,omitempty" gorm:"size:128"`
	PostID      string    `json:"post_id,omitempty" gorm:"size:128"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// DeviceToken is the FCM registration token of one user's device
type DeviceToken struct {
	UserID    string    `json:"userId" bson:"_id" firestore:"-"`
	Token     string    `json:"token" bson:"token" firestore:"token"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty" firestore:"email,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

// SaveTokenRequest defines the request body for registering a device token
type SaveTokenRequest struct {
	Token string `json:"token" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// BulkNotificationRequest defines the request body for a broadcast push
type BulkNotificationRequest struct {
	Title    string            `json:"title" validate:"required"`
	Message  string            `json:"message" validate:"required"`
	SenderID string            `json:"senderId,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// BulkNotificationResult reports delivery counts of a broadcast push
type BulkNotificationResult struct {
	Success  bool   `json:"success"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
	Total    int    `json:"total"`
	Excluded string `json:"excluded,omitempty"`
}
