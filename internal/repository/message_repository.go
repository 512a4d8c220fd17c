package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sportrent/internal/models"
)

type MessageStore interface {
	Create(ctx context.Context, message models.Message) (models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MessageRepository struct {
	col *mongo.Collection
}

var _ MessageStore = (*MessageRepository)(nil)

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(messagesCollection)}
}

func (r *MessageRepository) Create(ctx context.Context, message models.Message) (models.Message, error) {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	if message.SentAt.IsZero() {
		message.SentAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, message); err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (r *MessageRepository) List(ctx context.Context) ([]models.Message, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"sentAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
