package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anonto42/post-app/backend/internal/middleware"
	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memInbox struct {
	mu    sync.Mutex
	items []models.Notification
}

func (m *memInbox) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = uint(len(m.items) + 1)
	m.items = append(m.items, *n)
	return nil
}

func (m *memInbox) GetByRecipientID(_ context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []models.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].RecipientID == recipientID {
			mine = append(mine, m.items[i])
		}
	}
	total := int64(len(mine))
	start := min((page-1)*limit, len(mine))
	end := min(start+limit, len(mine))
	return mine[start:end], total, nil
}

func (m *memInbox) GetUnreadCount(_ context.Context, recipientID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, it := range m.items {
		if it.RecipientID == recipientID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memInbox) MarkAsRead(_ context.Context, recipientID string, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].RecipientID == recipientID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memInbox) MarkAllAsRead(_ context.Context, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].RecipientID == recipientID {
			m.items[i].IsRead = true
		}
	}
	return nil
}

// asUser stands in for the auth middleware.
func asUser(uid string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid != "" {
				c.Set(middleware.UserIDKey, uid)
			}
			return next(c)
		}
	}
}

func serveInbox(t *testing.T, inbox *memInbox, uid, method, path string) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	NewNotificationHandler(nil, inbox).RegisterNotificationRoutes(e.Group("/api/v1", asUser(uid)))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestInboxRoutes(t *testing.T) {
	ctx := context.Background()
	inbox := &memInbox{}
	for i := 0; i < 3; i++ {
		require.NoError(t, inbox.CreateNotification(ctx, &models.Notification{
			Type:        models.NotificationTypeLike,
			RecipientID: "A",
			Title:       "New Like! ❤️",
			Message:     fmt.Sprintf("like %d", i),
		}))
	}
	require.NoError(t, inbox.CreateNotification(ctx, &models.Notification{RecipientID: "B", Message: "other"}))

	code, body := serveInbox(t, inbox, "A", http.MethodGet, "/api/v1/notifications?page=1&limit=2")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["notifications"], 2)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(3), meta["totalItems"])
	assert.Equal(t, float64(2), meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])

	code, body = serveInbox(t, inbox, "A", http.MethodGet, "/api/v1/notifications/unread-count")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["data"].(map[string]any)["count"])

	code, _ = serveInbox(t, inbox, "A", http.MethodPut, "/api/v1/notifications/1/read")
	assert.Equal(t, http.StatusOK, code)

	// B's notification is not A's to mark
	code, _ = serveInbox(t, inbox, "A", http.MethodPut, "/api/v1/notifications/4/read")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = serveInbox(t, inbox, "A", http.MethodPut, "/api/v1/notifications/abc/read")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = serveInbox(t, inbox, "A", http.MethodPut, "/api/v1/notifications/read-all")
	assert.Equal(t, http.StatusOK, code)
	unread, err := inbox.GetUnreadCount(ctx, "A")
	require.NoError(t, err)
	assert.Zero(t, unread)
	unread, err = inbox.GetUnreadCount(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	code, _ = serveInbox(t, inbox, "", http.MethodGet, "/api/v1/notifications")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHTTPError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("%w: postId is required", models.ErrInvalidArgument), http.StatusBadRequest},
		{models.ErrNoRecipients, http.StatusBadRequest},
		{fmt.Errorf("toggle like on post x: %w", models.ErrPostNotFound), http.StatusNotFound},
		{fmt.Errorf("toggle: %w", models.ErrTransactionConflict), http.StatusInternalServerError},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var he *echo.HTTPError
		require.ErrorAs(t, httpError(tc.err), &he)
		assert.Equal(t, tc.code, he.Code, tc.err.Error())
	}

	var he *echo.HTTPError
	require.ErrorAs(t, httpError(errors.New("pq: secret detail")), &he)
	assert.Equal(t, "Internal server error", he.Message)
}
