package handlers

import (
	"net/http"

	"github.com/anonto42/post-app/backend/internal/likes"
	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	coordinator *likes.Coordinator
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(coordinator *likes.Coordinator) *LikeHandler {
	return &LikeHandler{coordinator: coordinator}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes/toggle", h.ToggleLike)
}

// ToggleLike likes or unlikes a post for the current user
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	res, err := h.coordinator.ToggleLike(c.Request().Context(), getUserIDFromContext(c), req.PostID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, models.ToggleLikeResponse{
		Liked:      res.Liked,
		LikesCount: res.LikesCount,
	})
}
