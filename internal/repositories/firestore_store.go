package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/post-app/backend/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements the document-store repositories on Cloud
// Firestore. Transactions use Firestore's optimistic concurrency, which
// re-runs the transaction function when a read document changed before
// commit.
type FirestoreStore struct {
	client      *firestore.Client
	maxAttempts int
}

var (
	_ PostRepository          = (*FirestoreStore)(nil)
	_ LikeRepository          = (*FirestoreStore)(nil)
	_ ModerationLogRepository = (*FirestoreStore)(nil)
	_ TokenRepository         = (*FirestoreStore)(nil)
)

// NewFirestoreStore creates a new FirestoreStore. maxAttempts <= 0 keeps the
// client library default.
func NewFirestoreStore(client *firestore.Client, maxAttempts int) *FirestoreStore {
	return &FirestoreStore{client: client, maxAttempts: maxAttempts}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *FirestoreStore) posts() *firestore.CollectionRef {
	return s.client.Collection(PostsCollection)
}

func (s *FirestoreStore) likes() *firestore.CollectionRef {
	return s.client.Collection(UserLikesCollection)
}

// CreatePost creates a new post document with a store-assigned id
func (s *FirestoreStore) CreatePost(ctx context.Context, post *models.Post) error {
	ref := s.posts().NewDoc()
	post.ID = ref.ID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := ref.Create(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID
func (s *FirestoreStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	snap, err := s.posts().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return decodePost(snap)
}

// GetAllPosts retrieves all posts, newest first
func (s *FirestoreStore) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	snaps, err := s.posts().OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(snaps))
	for _, snap := range snaps {
		post, err := decodePost(snap)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func decodePost(snap *firestore.DocumentSnapshot) (*models.Post, error) {
	var post models.Post
	if err := snap.DataTo(&post); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", snap.Ref.ID, err)
	}
	post.ID = snap.Ref.ID
	return &post, nil
}

// ApplyModeration writes the moderation outcome onto the post
func (s *FirestoreStore) ApplyModeration(ctx context.Context, id string, update *models.ModerationUpdate) error {
	updates := []firestore.Update{
		{Path: "is_moderated", Value: true},
		{Path: "moderation_count", Value: len(update.Fields)},
		{Path: "moderated_at", Value: firestore.ServerTimestamp},
	}
	for _, f := range update.Fields {
		updates = append(updates,
			firestore.Update{Path: string(f), Value: update.Redacted[f]},
			firestore.Update{Path: f.FlagName(), Value: true},
		)
	}
	_, err := s.posts().Doc(id).Update(ctx, updates)
	if isNotFound(err) {
		return models.ErrPostNotFound
	}
	return err
}

// MarkModerationFailed flags the post with the error that stopped moderation
func (s *FirestoreStore) MarkModerationFailed(ctx context.Context, id string, message string) error {
	_, err := s.posts().Doc(id).Update(ctx, []firestore.Update{
		{Path: "moderation_error", Value: true},
		{Path: "moderation_error_message", Value: message},
		{Path: "moderation_error_at", Value: firestore.ServerTimestamp},
	})
	if isNotFound(err) {
		return models.ErrPostNotFound
	}
	return err
}

// RunTransaction runs fn in a Firestore transaction
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx LikeTx) error) error {
	var opts []firestore.TransactionOption
	if s.maxAttempts > 0 {
		opts = append(opts, firestore.MaxAttempts(s.maxAttempts))
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreLikeTx{store: s, tx: tx})
	}, opts...)
	if status.Code(err) == codes.Aborted {
		return fmt.Errorf("%w: %v", models.ErrTransactionConflict, err)
	}
	return err
}

// GetLikedPosts returns the set of posts the user currently likes
func (s *FirestoreStore) GetLikedPosts(ctx context.Context, userID string) (map[string]bool, error) {
	snap, err := s.likes().Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	set, err := decodeLikeSet(snap, userID)
	if err != nil {
		return nil, err
	}
	return set.LikedPosts, nil
}

func decodeLikeSet(snap *firestore.DocumentSnapshot, userID string) (*models.LikeSet, error) {
	set := &models.LikeSet{UserID: userID}
	if snap != nil && snap.Exists() {
		if err := snap.DataTo(set); err != nil {
			return nil, fmt.Errorf("decode like set %s: %w", userID, err)
		}
	}
	if set.LikedPosts == nil {
		set.LikedPosts = map[string]bool{}
	}
	return set, nil
}

type firestoreLikeTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreLikeTx) GetPost(_ context.Context, postID string) (*models.Post, error) {
	snap, err := t.tx.Get(t.store.posts().Doc(postID))
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return decodePost(snap)
}

func (t *firestoreLikeTx) GetLikeSet(_ context.Context, userID string) (*models.LikeSet, error) {
	snap, err := t.tx.Get(t.store.likes().Doc(userID))
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	return decodeLikeSet(snap, userID)
}

func (t *firestoreLikeTx) SetLikesCount(_ context.Context, postID string, count int64) error {
	return t.tx.Update(t.store.posts().Doc(postID), []firestore.Update{
		{Path: "likesCount", Value: count},
	})
}

func (t *firestoreLikeTx) SetLiked(_ context.Context, userID, postID string, liked bool) error {
	ref := t.store.likes().Doc(userID)
	if liked {
		return t.tx.Set(ref, map[string]interface{}{
			"likedPosts": map[string]interface{}{postID: true},
		}, firestore.MergeAll)
	}
	return t.tx.Update(ref, []firestore.Update{
		{FieldPath: firestore.FieldPath{"likedPosts", postID}, Value: firestore.Delete},
	})
}

// CreateModerationLog appends one audit record
func (s *FirestoreStore) CreateModerationLog(ctx context.Context, entry *models.ModerationLogEntry) error {
	ref, _, err := s.client.Collection(ModerationLogsCollection).Add(ctx, entry)
	if err != nil {
		return err
	}
	entry.ID = ref.ID
	return nil
}

// SaveToken upserts the user's token
func (s *FirestoreStore) SaveToken(ctx context.Context, token *models.DeviceToken) error {
	token.UpdatedAt = time.Now()
	_, err := s.client.Collection(TokensCollection).Doc(token.UserID).Set(ctx, token)
	return err
}

// GetToken retrieves the token of one user
func (s *FirestoreStore) GetToken(ctx context.Context, userID string) (*models.DeviceToken, error) {
	snap, err := s.client.Collection(TokensCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrTokenNotFound
		}
		return nil, err
	}
	var token models.DeviceToken
	if err := snap.DataTo(&token); err != nil {
		return nil, err
	}
	token.UserID = snap.Ref.ID
	if token.Token == "" {
		return nil, models.ErrTokenNotFound
	}
	return &token, nil
}

// GetAllTokens retrieves every registered token
func (s *FirestoreStore) GetAllTokens(ctx context.Context) ([]models.DeviceToken, error) {
	snaps, err := s.client.Collection(TokensCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	tokens := make([]models.DeviceToken, 0, len(snaps))
	for _, snap := range snaps {
		var token models.DeviceToken
		if err := snap.DataTo(&token); err != nil {
			return nil, fmt.Errorf("decode token %s: %w", snap.Ref.ID, err)
		}
		token.UserID = snap.Ref.ID
		tokens = append(tokens, token)
	}
	return tokens, nil
}
