package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler lists posts with the caller's like state
type FeedHandler struct {
	postRepository repositories.PostRepository
	likeRepository repositories.LikeRepository
	logger         *slog.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, likeRepo repositories.LikeRepository, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{
		postRepository: postRepo,
		likeRepository: likeRepo,
		logger:         logger.With("component", "feed"),
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
}

// GetPosts returns every post, newest first. For an authenticated caller each
// post is flagged with whether the caller likes it; anonymous callers see
// liked=false everywhere.
func (h *FeedHandler) GetPosts(c echo.Context) error {
	ctx := c.Request().Context()
	uid := getUserIDFromContext(c)

	posts, err := h.postRepository.GetAllPosts(ctx)
	if err != nil {
		return httpError(err)
	}

	liked := map[string]bool{}
	if uid != "" {
		liked, err = h.likeRepository.GetLikedPosts(ctx, uid)
		if err != nil {
			return httpError(err)
		}
	}

	feed := make([]models.FeedPost, len(posts))
	for i, p := range posts {
		feed[i] = models.FeedPost{Post: p, Liked: liked[p.ID]}
	}

	user := uid
	if user == "" {
		user = "anonymous"
	}
	h.logger.Info("retrieved posts", "count", len(feed), "user", user)

	return c.JSON(http.StatusOK, echo.Map{"posts": feed})
}
