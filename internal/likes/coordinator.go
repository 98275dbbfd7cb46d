package likes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/repositories"
)

// Notifier tells a post's author that someone liked it.
type Notifier interface {
	NotifyLike(ctx context.Context, authorID, likerID, postID string) error
}

// Result is the like state after a toggle.
type Result struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// Coordinator flips a user's like on a post and keeps the post's counter in
// step with the user's like-set.
type Coordinator struct {
	likes    repositories.LikeRepository
	notifier Notifier
	logger   *slog.Logger
}

// NewCoordinator creates a Coordinator. notifier may be nil.
func NewCoordinator(likes repositories.LikeRepository, notifier Notifier, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		likes:    likes,
		notifier: notifier,
		logger:   logger.With("component", "likes"),
	}
}

// ToggleLike likes the post if userID does not like it yet and unlikes it
// otherwise. Both reads and both writes run in one store transaction; the
// store re-runs the transaction on conflict. The author is notified of a new
// like after the commit.
func (c *Coordinator) ToggleLike(ctx context.Context, userID, postID string) (*Result, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	if postID == "" {
		return nil, fmt.Errorf("%w: postId is required", models.ErrInvalidArgument)
	}

	var (
		result   Result
		authorID string
	)
	err := c.likes.RunTransaction(ctx, func(ctx context.Context, tx repositories.LikeTx) error {
		post, err := tx.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		set, err := tx.GetLikeSet(ctx, userID)
		if err != nil {
			return err
		}

		authorID = post.UserID
		count := post.LikesCount
		if count < 0 {
			count = 0
		}

		if set.Has(postID) {
			result = Result{Liked: false, LikesCount: max(0, count-1)}
		} else {
			result = Result{Liked: true, LikesCount: count + 1}
		}

		if err := tx.SetLikesCount(ctx, postID, result.LikesCount); err != nil {
			return err
		}
		return tx.SetLiked(ctx, userID, postID, result.Liked)
	})
	if err != nil {
		toggleErrors.Inc()
		return nil, fmt.Errorf("toggle like on post %s: %w", postID, err)
	}

	if result.Liked {
		togglesTotal.WithLabelValues("like").Inc()
	} else {
		togglesTotal.WithLabelValues("unlike").Inc()
	}
	c.logger.Info("like toggled", "post", postID, "user", userID, "liked", result.Liked, "likesCount", result.LikesCount)

	if result.Liked && authorID != userID {
		c.notify(ctx, authorID, userID, postID)
	}
	return &result, nil
}

// notify makes one attempt at telling the author; failures are only logged.
func (c *Coordinator) notify(ctx context.Context, authorID, likerID, postID string) {
	if c.notifier == nil || authorID == "" {
		return
	}
	if err := c.notifier.NotifyLike(ctx, authorID, likerID, postID); err != nil {
		notifyErrors.Inc()
		c.logger.Error("failed to send like notification", "post", postID, "author", authorID, "err", err)
	}
}
