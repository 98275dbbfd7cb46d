package handlers

import (
	"net/http"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// TriggerHandler receives document events from the data platform
type TriggerHandler struct {
	moderator Moderator
}

// NewTriggerHandler creates a new TriggerHandler
func NewTriggerHandler(moderator Moderator) *TriggerHandler {
	return &TriggerHandler{moderator: moderator}
}

// RegisterTriggerRoutes registers trigger routes
func (h *TriggerHandler) RegisterTriggerRoutes(g *echo.Group) {
	g.POST("/triggers/post-created", h.PostCreated)
}

// PostCreated moderates the post named by the event. A failed post update is
// answered with 500 so the sender redelivers; redelivery is harmless because
// moderation skips posts that are already moderated.
func (h *TriggerHandler) PostCreated(c echo.Context) error {
	var ev models.PostCreatedEvent
	if err := bindAndValidate(c, &ev); err != nil {
		return err
	}

	if err := h.moderator.ModeratePost(c.Request().Context(), ev.PostID, ev.Post); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
