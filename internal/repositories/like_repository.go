package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/post-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeTx is the view of the store inside one like transaction. All reads
// must happen before the first write.
type LikeTx interface {
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	// GetLikeSet returns an empty set when the user has never liked anything.
	GetLikeSet(ctx context.Context, userID string) (*models.LikeSet, error)
	SetLikesCount(ctx context.Context, postID string, count int64) error
	// SetLiked adds postID to the user's like-set, or deletes the key.
	SetLiked(ctx context.Context, userID, postID string, liked bool) error
}

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// RunTransaction runs fn atomically. The store re-runs fn on conflict;
	// fn must not have side effects outside tx.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx LikeTx) error) error
	GetLikedPosts(ctx context.Context, userID string) (map[string]bool, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	client *mongo.Client
	posts  *mongo.Collection
	likes  *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(client *mongo.Client, db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{
		client: client,
		posts:  db.Collection(PostsCollection),
		likes:  db.Collection(UserLikesCollection),
	}
}

// RunTransaction runs fn inside a MongoDB session transaction. The driver
// retries the whole callback on transient transaction errors.
func (r *MongoLikeRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx LikeTx) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoLikeTx{repo: r})
	})
	return err
}

// GetLikedPosts returns the set of posts the user currently likes
func (r *MongoLikeRepository) GetLikedPosts(ctx context.Context, userID string) (map[string]bool, error) {
	set, err := r.findLikeSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return set.LikedPosts, nil
}

func (r *MongoLikeRepository) findLikeSet(ctx context.Context, userID string) (*models.LikeSet, error) {
	var set models.LikeSet
	err := r.likes.FindOne(ctx, bson.M{"_id": userID}).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.LikeSet{UserID: userID, LikedPosts: map[string]bool{}}, nil
		}
		return nil, err
	}
	if set.LikedPosts == nil {
		set.LikedPosts = map[string]bool{}
	}
	return &set, nil
}

type mongoLikeTx struct {
	repo *MongoLikeRepository
}

func (tx *mongoLikeTx) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := tx.repo.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (tx *mongoLikeTx) GetLikeSet(ctx context.Context, userID string) (*models.LikeSet, error) {
	return tx.repo.findLikeSet(ctx, userID)
}

func (tx *mongoLikeTx) SetLikesCount(ctx context.Context, postID string, count int64) error {
	_, err := tx.repo.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$set": bson.M{"likesCount": count}})
	return err
}

func (tx *mongoLikeTx) SetLiked(ctx context.Context, userID, postID string, liked bool) error {
	key := "likedPosts." + postID
	var update bson.M
	if liked {
		update = bson.M{"$set": bson.M{key: true}}
	} else {
		update = bson.M{"$unset": bson.M{key: ""}}
	}
	_, err := tx.repo.likes.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(liked))
	return err
}
