package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// Moderator moderates a freshly created post.
type Moderator interface {
	ModeratePost(ctx context.Context, postID string, post *models.Post) error
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	moderator      Moderator
	inline         bool
	logger         *slog.Logger
}

// NewPostHandler creates a new PostHandler. With inline set, a created post is
// moderated before the response is written; otherwise moderation is left to
// the post-created trigger.
func NewPostHandler(postRepo repositories.PostRepository, moderator Moderator, inline bool, logger *slog.Logger) *PostHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostHandler{
		postRepository: postRepo,
		moderator:      moderator,
		inline:         inline,
		logger:         logger.With("component", "posts"),
	}
}

// RegisterPostRoutes registers routes that need an authenticated caller
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
}

// RegisterPublicPostRoutes registers routes open to anonymous callers
func (h *PostHandler) RegisterPublicPostRoutes(g *echo.Group) {
	g.GET("/posts/:id", h.GetPost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	uid := getUserIDFromContext(c)
	if uid == "" {
		return httpError(models.ErrUnauthenticated)
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	now := time.Now()
	post := &models.Post{
		UserID:    uid,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return httpError(err)
	}

	if h.inline && h.moderator != nil {
		snapshot := *post
		if err := h.moderator.ModeratePost(ctx, post.ID, &snapshot); err != nil {
			// the post exists and carries moderation_error
			h.logger.Error("inline moderation failed", "post", post.ID, "err", err)
		}
		if fresh, err := h.postRepository.GetPostByID(ctx, post.ID); err == nil {
			post = fresh
		}
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}
