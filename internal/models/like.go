package models

// LikeSet holds the posts one user currently likes.
// Stored as a map of post id to true; unliking deletes the key.
type LikeSet struct {
	UserID     string          `json:"userId" bson:"_id" firestore:"-"`
	LikedPosts map[string]bool `json:"likedPosts" bson:"likedPosts" firestore:"likedPosts"`
}

// Has reports whether postID is in the set. A nil set is empty.
func (s *LikeSet) Has(postID string) bool {
	if s == nil || s.LikedPosts == nil {
		return false
	}
	return s.LikedPosts[postID]
}

// ToggleLikeRequest defines the request body for toggling a like
type ToggleLikeRequest struct {
	PostID string `json:"postId"`
}

// ToggleLikeResponse is returned by the like toggle
type ToggleLikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}
