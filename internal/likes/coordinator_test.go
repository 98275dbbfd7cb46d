package likes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type likeCall struct {
	authorID, likerID, postID string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []likeCall
	err   error
}

func (f *fakeNotifier) NotifyLike(_ context.Context, authorID, likerID, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, likeCall{authorID, likerID, postID})
	return f.err
}

func (f *fakeNotifier) Calls() []likeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]likeCall(nil), f.calls...)
}

func newTestCoordinator(t *testing.T, posts ...*models.Post) (*Coordinator, *repositories.MemoryStore, *fakeNotifier) {
	t.Helper()
	store := repositories.NewMemoryStore()
	for _, p := range posts {
		require.NoError(t, store.CreatePost(context.Background(), p))
	}
	notifier := &fakeNotifier{}
	return NewCoordinator(store, notifier, nil), store, notifier
}

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	ctx := context.Background()
	c, store, notifier := newTestCoordinator(t, &models.Post{ID: "P", UserID: "A", LikesCount: 0})

	res, err := c.ToggleLike(ctx, "U", "P")
	require.NoError(t, err)
	assert.Equal(t, &Result{Liked: true, LikesCount: 1}, res)

	post, err := store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.LikesCount)
	liked, err := store.GetLikedPosts(ctx, "U")
	require.NoError(t, err)
	assert.True(t, liked["P"])
	assert.Equal(t, []likeCall{{"A", "U", "P"}}, notifier.Calls())

	res, err = c.ToggleLike(ctx, "U", "P")
	require.NoError(t, err)
	assert.Equal(t, &Result{Liked: false, LikesCount: 0}, res)

	post, err = store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, int64(0), post.LikesCount)
	liked, err = store.GetLikedPosts(ctx, "U")
	require.NoError(t, err)
	assert.NotContains(t, liked, "P")

	// unliking does not notify
	assert.Len(t, notifier.Calls(), 1)
}

func TestToggleLike_MissingPost(t *testing.T) {
	ctx := context.Background()
	c, store, notifier := newTestCoordinator(t)

	res, err := c.ToggleLike(ctx, "U", "missing")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, models.ErrPostNotFound)

	liked, err := store.GetLikedPosts(ctx, "U")
	require.NoError(t, err)
	assert.Empty(t, liked)
	assert.Empty(t, notifier.Calls())
}

func TestToggleLike_ArgumentErrors(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &models.Post{ID: "P", UserID: "A"})

	_, err := c.ToggleLike(context.Background(), "", "P")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = c.ToggleLike(context.Background(), "U", "")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestToggleLike_CountNeverNegative(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCoordinator(t, &models.Post{ID: "P", UserID: "A", LikesCount: 0})

	// like-set says liked while the counter already reads zero
	require.NoError(t, store.RunTransaction(ctx, func(ctx context.Context, tx repositories.LikeTx) error {
		return tx.SetLiked(ctx, "U", "P", true)
	}))

	res, err := c.ToggleLike(ctx, "U", "P")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), res.LikesCount)
}

func TestToggleLike_TwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCoordinator(t, &models.Post{ID: "P", UserID: "A", LikesCount: 7})

	for _, user := range []string{"U1", "U2", "U3"} {
		_, err := c.ToggleLike(ctx, user, "P")
		require.NoError(t, err)
		_, err = c.ToggleLike(ctx, user, "P")
		require.NoError(t, err)

		post, err := store.GetPostByID(ctx, "P")
		require.NoError(t, err)
		assert.Equal(t, int64(7), post.LikesCount)
		liked, err := store.GetLikedPosts(ctx, user)
		require.NoError(t, err)
		assert.False(t, liked["P"])
	}
}

func TestToggleLike_SelfLikeDoesNotNotify(t *testing.T) {
	c, _, notifier := newTestCoordinator(t, &models.Post{ID: "P", UserID: "A"})

	res, err := c.ToggleLike(context.Background(), "A", "P")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Empty(t, notifier.Calls())
}

func TestToggleLike_NotificationFailureIsIgnored(t *testing.T) {
	c, _, notifier := newTestCoordinator(t, &models.Post{ID: "P", UserID: "A"})
	notifier.err = errors.New("push unavailable")

	res, err := c.ToggleLike(context.Background(), "U", "P")
	require.NoError(t, err)
	assert.Equal(t, &Result{Liked: true, LikesCount: 1}, res)
	assert.Len(t, notifier.Calls(), 1)
}

func TestToggleLike_ConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	c, store, notifier := newTestCoordinator(t, &models.Post{ID: "P", UserID: "A"})

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			if _, err := c.ToggleLike(ctx, user, "P"); err != nil {
				errs <- err
			}
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("toggle failed: %v", err)
	}

	post, err := store.GetPostByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, int64(n), post.LikesCount)
	for i := 0; i < n; i++ {
		liked, err := store.GetLikedPosts(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		assert.True(t, liked["P"])
	}
	assert.Len(t, notifier.Calls(), n)
}

func TestToggleLike_ConflictExhaustion(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore().WithMaxAttempts(2)
	require.NoError(t, store.CreatePost(ctx, &models.Post{ID: "P", UserID: "A"}))

	// a competing writer commits between every read and commit
	racing := &racingLikes{MemoryStore: store}
	c := NewCoordinator(racing, nil, nil)

	_, err := c.ToggleLike(ctx, "U", "P")
	assert.ErrorIs(t, err, models.ErrTransactionConflict)

	liked, err := store.GetLikedPosts(ctx, "U")
	require.NoError(t, err)
	assert.Empty(t, liked)
}

type racingLikes struct {
	*repositories.MemoryStore
}

func (r *racingLikes) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.LikeTx) error) error {
	return r.MemoryStore.RunTransaction(ctx, func(ctx context.Context, tx repositories.LikeTx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return r.MemoryStore.ApplyModeration(ctx, "P", &models.ModerationUpdate{})
	})
}
