package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sportrent/internal/models"
)

type EquipmentStore interface {
	Create(ctx context.Context, equipment models.Equipment) (models.Equipment, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Equipment, error)
	List(ctx context.Context) ([]models.Equipment, error)
	Replace(ctx context.Context, equipment models.Equipment) (models.Equipment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type EquipmentRepository struct {
	col *mongo.Collection
}

var _ EquipmentStore = (*EquipmentRepository)(nil)

func NewEquipmentRepository(db *mongo.Database) *EquipmentRepository {
	return &EquipmentRepository{col: db.Collection(equipmentCollection)}
}

func (r *EquipmentRepository) Create(ctx context.Context, equipment models.Equipment) (models.Equipment, error) {
	if equipment.ID.IsZero() {
		equipment.ID = primitive.NewObjectID()
	}
	if equipment.Images == nil {
		equipment.Images = []string{}
	}
	if _, err := r.col.InsertOne(ctx, equipment); err != nil {
		return models.Equipment{}, err
	}
	return equipment, nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Equipment, error) {
	var equipment models.Equipment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&equipment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Equipment{}, ErrNotFound
		}
		return models.Equipment{}, err
	}
	return equipment, nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]models.Equipment, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.Equipment
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EquipmentRepository) Replace(ctx context.Context, equipment models.Equipment) (models.Equipment, error) {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": equipment.ID}, equipment)
	if err != nil {
		return models.Equipment{}, err
	}
	if result.MatchedCount == 0 {
		return models.Equipment{}, ErrNotFound
	}
	return equipment, nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
