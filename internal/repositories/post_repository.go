package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/post-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the document-store backends.
const (
	PostsCollection          = "posts"
	UserLikesCollection      = "user_likes"
	ModerationLogsCollection = "moderation_logs"
	TokensCollection         = "user_fcm_tokens"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	// ApplyModeration writes redacted fields, per-field flags, is_moderated,
	// moderation_count and moderated_at in a single update.
	ApplyModeration(ctx context.Context, id string, update *models.ModerationUpdate) error
	MarkModerationFailed(ctx context.Context, id string, message string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(PostsCollection)}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = primitive.NewObjectID().Hex()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all posts from MongoDB, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ApplyModeration writes the moderation outcome onto the post
func (r *MongoPostRepository) ApplyModeration(ctx context.Context, id string, update *models.ModerationUpdate) error {
	set := bson.M{
		"is_moderated":     true,
		"moderation_count": len(update.Fields),
		"moderated_at":     update.ModeratedAt,
		"updatedAt":        update.ModeratedAt,
	}
	for _, f := range update.Fields {
		set[string(f)] = update.Redacted[f]
		set[f.FlagName()] = true
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrPostNotFound
	}
	return nil
}

// MarkModerationFailed flags the post with the error that stopped moderation
func (r *MongoPostRepository) MarkModerationFailed(ctx context.Context, id string, message string) error {
	update := bson.M{
		"$set": bson.M{
			"moderation_error":         true,
			"moderation_error_message": message,
			"moderation_error_at":      time.Now(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("mark moderation failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrPostNotFound
	}
	return nil
}
