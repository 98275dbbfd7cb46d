package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moderationCall struct {
	authorID, postID string
	fields           []models.Field
}

type fakeAuthorNotifier struct {
	mu    sync.Mutex
	calls []moderationCall
	err   error
}

func (f *fakeAuthorNotifier) NotifyModeration(_ context.Context, authorID, postID string, fields []models.Field) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, moderationCall{authorID, postID, fields})
	return f.err
}

// failingPosts rejects every moderation write.
type failingPosts struct {
	*repositories.MemoryStore
}

func (f failingPosts) ApplyModeration(context.Context, string, *models.ModerationUpdate) error {
	return errors.New("write rejected")
}

type failingLogs struct{}

func (failingLogs) CreateModerationLog(context.Context, *models.ModerationLogEntry) error {
	return errors.New("log store down")
}

var moderatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestEngine(posts repositories.PostRepository, logs repositories.ModerationLogRepository, notifier AuthorNotifier) *Engine {
	e := NewEngine(NewMatcher(DefaultTerms()), posts, logs, notifier, nil)
	e.now = func() time.Time { return moderatedAt }
	return e
}

func createPost(t *testing.T, store *repositories.MemoryStore, post models.Post) *models.Post {
	t.Helper()
	require.NoError(t, store.CreatePost(context.Background(), &post))
	return &post
}

func TestModeratePost_RedactsContent(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	notifier := &fakeAuthorNotifier{}
	engine := newTestEngine(store, store, notifier)

	snapshot := createPost(t, store, models.Post{ID: "P", UserID: "A", Title: "Hello", Content: "eres un pendejo"})
	require.NoError(t, engine.ModeratePost(ctx, "P", snapshot))

	post, err := store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, "eres un [redacted]", post.Content)
	assert.Equal(t, "Hello", post.Title)
	assert.True(t, post.IsModerated)
	assert.True(t, post.ContentModerated)
	assert.False(t, post.TitleModerated)
	assert.Equal(t, 1, post.ModerationCount)
	require.NotNil(t, post.ModeratedAt)
	assert.True(t, post.ModeratedAt.Equal(moderatedAt))

	logs := store.ModerationLogs()
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "P", entry.PostID)
	assert.Equal(t, []string{"content"}, entry.ModeratedFields)
	assert.Equal(t, 1, entry.FieldCount)
	assert.Equal(t, map[string]string{"content": "eres un pendejo"}, entry.OriginalContent)
	assert.Equal(t, map[string]string{"content": "eres un [redacted]"}, entry.RedactedContent)
	assert.Equal(t, "A", entry.UserID)

	assert.Equal(t, []moderationCall{{"A", "P", []models.Field{models.FieldContent}}}, notifier.calls)
}

func TestModeratePost_BothFields(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	engine := newTestEngine(store, store, nil)

	snapshot := createPost(t, store, models.Post{ID: "P", UserID: "A", Title: "pura mierda", Content: "que idiota"})
	require.NoError(t, engine.ModeratePost(ctx, "P", snapshot))

	post, err := store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, "que [redacted]", post.Content)
	assert.Equal(t, "pura [redacted]", post.Title)
	assert.Equal(t, 2, post.ModerationCount)

	logs := store.ModerationLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, []string{"content", "title"}, logs[0].ModeratedFields)
}

func TestModeratePost_CleanPostIsUntouched(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	notifier := &fakeAuthorNotifier{}
	engine := newTestEngine(store, store, notifier)

	snapshot := createPost(t, store, models.Post{ID: "P", UserID: "A", Title: "Hello", Content: "Buenos días a todos"})
	require.NoError(t, engine.ModeratePost(ctx, "P", snapshot))

	post, err := store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.False(t, post.IsModerated)
	assert.Nil(t, post.ModeratedAt)
	assert.Empty(t, store.ModerationLogs())
	assert.Empty(t, notifier.calls)
}

func TestModeratePost_SecondDeliveryIsNoop(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	notifier := &fakeAuthorNotifier{}
	engine := newTestEngine(store, store, notifier)

	snapshot := createPost(t, store, models.Post{ID: "P", UserID: "A", Content: "eres un pendejo"})
	require.NoError(t, engine.ModeratePost(ctx, "P", snapshot))
	require.NoError(t, engine.ModeratePost(ctx, "P", snapshot))

	assert.Len(t, store.ModerationLogs(), 1)
	assert.Len(t, notifier.calls, 1)
}

func TestModeratePost_MissingDataOrPost(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	engine := newTestEngine(store, store, nil)

	assert.NoError(t, engine.ModeratePost(ctx, "P", nil))
	assert.NoError(t, engine.ModeratePost(ctx, "gone", &models.Post{Content: "eres un pendejo"}))
	assert.Empty(t, store.ModerationLogs())
}

func TestModeratePost_WriteFailureFlagsPost(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	notifier := &fakeAuthorNotifier{}
	engine := newTestEngine(failingPosts{store}, store, notifier)

	snapshot := createPost(t, store, models.Post{ID: "P", UserID: "A", Content: "eres un pendejo"})
	err := engine.ModeratePost(ctx, "P", snapshot)
	require.ErrorIs(t, err, models.ErrModerationWrite)

	post, err := store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.True(t, post.ModerationError)
	assert.Equal(t, "write rejected", post.ModerationErrorMessage)
	assert.NotNil(t, post.ModerationErrorAt)
	assert.False(t, post.IsModerated)
	assert.Equal(t, "eres un pendejo", post.Content)

	assert.Empty(t, store.ModerationLogs())
	assert.Empty(t, notifier.calls)
}

func TestModeratePost_AuditAndNotifyFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	notifier := &fakeAuthorNotifier{err: errors.New("push unavailable")}
	engine := newTestEngine(store, failingLogs{}, notifier)

	snapshot := createPost(t, store, models.Post{ID: "P", UserID: "A", Content: "eres un pendejo"})
	require.NoError(t, engine.ModeratePost(ctx, "P", snapshot))

	post, err := store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.True(t, post.IsModerated)
	assert.Equal(t, "eres un [redacted]", post.Content)
	assert.Len(t, notifier.calls, 1)
}
