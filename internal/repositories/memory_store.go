package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/google/uuid"
)

// DefaultMemoryTxAttempts bounds how often the memory store re-runs a
// transaction that lost a commit race.
const DefaultMemoryTxAttempts = 25

// MemoryStore is an in-process document store. Transactions are optimistic:
// every document carries a version, reads record the version they saw, and a
// commit is rejected and retried if any of those versions moved.
type MemoryStore struct {
	mu          sync.Mutex
	posts       map[string]*models.Post
	likes       map[string]*models.LikeSet
	versions    map[string]uint64
	logs        []models.ModerationLogEntry
	tokens      map[string]models.DeviceToken
	maxAttempts int
}

var (
	_ PostRepository          = (*MemoryStore)(nil)
	_ LikeRepository          = (*MemoryStore)(nil)
	_ ModerationLogRepository = (*MemoryStore)(nil)
	_ TokenRepository         = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:       make(map[string]*models.Post),
		likes:       make(map[string]*models.LikeSet),
		versions:    make(map[string]uint64),
		tokens:      make(map[string]models.DeviceToken),
		maxAttempts: DefaultMemoryTxAttempts,
	}
}

// WithMaxAttempts sets the transaction attempt budget.
func (s *MemoryStore) WithMaxAttempts(n int) *MemoryStore {
	s.maxAttempts = n
	return s
}

func postKey(id string) string { return PostsCollection + "/" + id }
func likeKey(userID string) string { return UserLikesCollection + "/" + userID }

func copyPost(p *models.Post) *models.Post {
	c := *p
	return &c
}

func copyLikeSet(s *models.LikeSet) *models.LikeSet {
	c := &models.LikeSet{UserID: s.UserID, LikedPosts: make(map[string]bool, len(s.LikedPosts))}
	for k, v := range s.LikedPosts {
		c.LikedPosts[k] = v
	}
	return c
}

// CreatePost stores a new post, assigning an id when none is set
func (s *MemoryStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if _, ok := s.posts[post.ID]; ok {
		return fmt.Errorf("post %s already exists", post.ID)
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	s.posts[post.ID] = copyPost(post)
	s.versions[postKey(post.ID)]++
	return nil
}

// GetPostByID retrieves a post by ID
func (s *MemoryStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, models.ErrPostNotFound
	}
	return copyPost(p), nil
}

// GetAllPosts retrieves all posts, newest first
func (s *MemoryStore) GetAllPosts(_ context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, *p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// ApplyModeration writes the moderation outcome onto the post
func (s *MemoryStore) ApplyModeration(_ context.Context, id string, update *models.ModerationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return models.ErrPostNotFound
	}
	p = copyPost(p)
	for _, f := range update.Fields {
		p.SetModeratedField(f, update.Redacted[f])
	}
	at := update.ModeratedAt
	p.IsModerated = true
	p.ModerationCount = len(update.Fields)
	p.ModeratedAt = &at
	p.UpdatedAt = at
	s.posts[id] = p
	s.versions[postKey(id)]++
	return nil
}

// MarkModerationFailed flags the post with the error that stopped moderation
func (s *MemoryStore) MarkModerationFailed(_ context.Context, id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return models.ErrPostNotFound
	}
	p = copyPost(p)
	now := time.Now()
	p.ModerationError = true
	p.ModerationErrorMessage = message
	p.ModerationErrorAt = &now
	s.posts[id] = p
	s.versions[postKey(id)]++
	return nil
}

// RunTransaction runs fn against a snapshot and commits its buffered writes
// only if nothing it read has changed; otherwise fn is run again.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx LikeTx) error) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memoryLikeTx{
			store:  s,
			reads:  make(map[string]uint64),
			counts: make(map[string]int64),
			liked:  make(map[string]map[string]bool),
		}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if s.commit(tx) {
			return nil
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts", models.ErrTransactionConflict, s.maxAttempts)
}

func (s *MemoryStore) commit(tx *memoryLikeTx) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range tx.reads {
		if s.versions[key] != seen {
			return false
		}
	}
	for postID, count := range tx.counts {
		p, ok := s.posts[postID]
		if !ok {
			continue
		}
		p = copyPost(p)
		p.LikesCount = count
		s.posts[postID] = p
		s.versions[postKey(postID)]++
	}
	for userID, changes := range tx.liked {
		set, ok := s.likes[userID]
		if ok {
			set = copyLikeSet(set)
		} else {
			set = &models.LikeSet{UserID: userID, LikedPosts: map[string]bool{}}
		}
		for postID, liked := range changes {
			if liked {
				set.LikedPosts[postID] = true
			} else {
				delete(set.LikedPosts, postID)
			}
		}
		s.likes[userID] = set
		s.versions[likeKey(userID)]++
	}
	return true
}

// GetLikedPosts returns the set of posts the user currently likes
func (s *MemoryStore) GetLikedPosts(_ context.Context, userID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.likes[userID]
	if !ok {
		return map[string]bool{}, nil
	}
	return copyLikeSet(set).LikedPosts, nil
}

type memoryLikeTx struct {
	store  *MemoryStore
	reads  map[string]uint64
	counts map[string]int64
	liked  map[string]map[string]bool
	wrote  bool
}

func (tx *memoryLikeTx) GetPost(_ context.Context, postID string) (*models.Post, error) {
	if tx.wrote {
		return nil, fmt.Errorf("read of post %s after write in transaction", postID)
	}
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := postKey(postID)
	tx.reads[key] = s.versions[key]
	p, ok := s.posts[postID]
	if !ok {
		return nil, models.ErrPostNotFound
	}
	return copyPost(p), nil
}

func (tx *memoryLikeTx) GetLikeSet(_ context.Context, userID string) (*models.LikeSet, error) {
	if tx.wrote {
		return nil, fmt.Errorf("read of like set %s after write in transaction", userID)
	}
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := likeKey(userID)
	tx.reads[key] = s.versions[key]
	set, ok := s.likes[userID]
	if !ok {
		return &models.LikeSet{UserID: userID, LikedPosts: map[string]bool{}}, nil
	}
	return copyLikeSet(set), nil
}

func (tx *memoryLikeTx) SetLikesCount(_ context.Context, postID string, count int64) error {
	tx.wrote = true
	tx.counts[postID] = count
	return nil
}

func (tx *memoryLikeTx) SetLiked(_ context.Context, userID, postID string, liked bool) error {
	tx.wrote = true
	if tx.liked[userID] == nil {
		tx.liked[userID] = make(map[string]bool)
	}
	tx.liked[userID][postID] = liked
	return nil
}

// CreateModerationLog appends one audit record
func (s *MemoryStore) CreateModerationLog(_ context.Context, entry *models.ModerationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.logs = append(s.logs, *entry)
	return nil
}

// ModerationLogs returns a copy of every audit record, oldest first
func (s *MemoryStore) ModerationLogs() []models.ModerationLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ModerationLogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// SaveToken upserts the user's token
func (s *MemoryStore) SaveToken(_ context.Context, token *models.DeviceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token.UpdatedAt = time.Now()
	s.tokens[token.UserID] = *token
	return nil
}

// GetToken retrieves the token of one user
func (s *MemoryStore) GetToken(_ context.Context, userID string) (*models.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[userID]
	if !ok || t.Token == "" {
		return nil, models.ErrTokenNotFound
	}
	return &t, nil
}

// GetAllTokens retrieves every registered token, ordered by user id
func (s *MemoryStore) GetAllTokens(_ context.Context) ([]models.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := make([]models.DeviceToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].UserID < tokens[j].UserID })
	return tokens, nil
}
