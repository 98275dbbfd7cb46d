package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/post-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenRepository stores one FCM registration token per user
type TokenRepository interface {
	SaveToken(ctx context.Context, token *models.DeviceToken) error
	// GetToken returns models.ErrTokenNotFound when the user has no device.
	GetToken(ctx context.Context, userID string) (*models.DeviceToken, error)
	GetAllTokens(ctx context.Context) ([]models.DeviceToken, error)
}

// MongoTokenRepository implements TokenRepository for MongoDB
type MongoTokenRepository struct {
	collection *mongo.Collection
}

// NewMongoTokenRepository creates a new MongoTokenRepository
func NewMongoTokenRepository(db *mongo.Database) *MongoTokenRepository {
	return &MongoTokenRepository{collection: db.Collection(TokensCollection)}
}

// SaveToken upserts the user's token
func (r *MongoTokenRepository) SaveToken(ctx context.Context, token *models.DeviceToken) error {
	token.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": token.UserID}, token, options.Replace().SetUpsert(true))
	return err
}

// GetToken retrieves the token of one user
func (r *MongoTokenRepository) GetToken(ctx context.Context, userID string) (*models.DeviceToken, error) {
	var token models.DeviceToken
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrTokenNotFound
		}
		return nil, err
	}
	if token.Token == "" {
		return nil, models.ErrTokenNotFound
	}
	return &token, nil
}

// GetAllTokens retrieves every registered token
func (r *MongoTokenRepository) GetAllTokens(ctx context.Context) ([]models.DeviceToken, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tokens []models.DeviceToken
	if err = cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
