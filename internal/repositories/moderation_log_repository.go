package repositories

import (
	"context"

	"github.com/anonto42/post-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ModerationLogRepository appends moderation audit records. Entries are never
// updated or deleted.
type ModerationLogRepository interface {
	CreateModerationLog(ctx context.Context, entry *models.ModerationLogEntry) error
}

// MongoModerationLogRepository implements ModerationLogRepository for MongoDB
type MongoModerationLogRepository struct {
	collection *mongo.Collection
}

// NewMongoModerationLogRepository creates a new MongoModerationLogRepository
func NewMongoModerationLogRepository(db *mongo.Database) *MongoModerationLogRepository {
	return &MongoModerationLogRepository{collection: db.Collection(ModerationLogsCollection)}
}

// CreateModerationLog inserts one audit record
func (r *MongoModerationLogRepository) CreateModerationLog(ctx context.Context, entry *models.ModerationLogEntry) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}
