package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sportrent/internal/models"
)

// ReservationUpdate carries the optional fields of a reservation update; nil
// fields are left untouched.
type ReservationUpdate struct {
	StartDate             *time.Time
	EndDate               *time.Time
	StartTime             *string
	EndTime               *string
	PickupPlace           *models.PickupPlace
	DeliveryAddressPickup *models.DeliveryAddress
	DeliveryAddressReturn *models.DeliveryAddress
	Price                 *float64
}

type ReservationStore interface {
	Create(ctx context.Context, reservation models.Reservation) (models.Reservation, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error)
	ListByEquipment(ctx context.Context, equipmentID primitive.ObjectID) ([]models.Reservation, error)
	List(ctx context.Context) ([]models.Reservation, error)
	// ExistsCovering reports whether any reservation for the equipment has a
	// date range containing the given instant.
	ExistsCovering(ctx context.Context, equipmentID primitive.ObjectID, at time.Time) (bool, error)
	// UpdateOwned matches by id AND owner, so callers can never touch another
	// user's reservation; a miss is ErrNotFound.
	UpdateOwned(ctx context.Context, id, userID primitive.ObjectID, update ReservationUpdate) (models.Reservation, error)
	DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteByEquipment(ctx context.Context, equipmentID primitive.ObjectID) (int64, error)
}

type ReservationRepository struct {
	col *mongo.Collection
}

var _ ReservationStore = (*ReservationRepository)(nil)

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(reservationsCollection)}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation models.Reservation) (models.Reservation, error) {
	if reservation.ID.IsZero() {
		reservation.ID = primitive.NewObjectID()
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, reservation); err != nil {
		return models.Reservation{}, err
	}
	return reservation, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	return r.list(ctx, bson.M{"user": userID})
}

func (r *ReservationRepository) ListByEquipment(ctx context.Context, equipmentID primitive.ObjectID) ([]models.Reservation, error) {
	return r.list(ctx, bson.M{"equipment": equipmentID})
}

func (r *ReservationRepository) List(ctx context.Context) ([]models.Reservation, error) {
	return r.list(ctx, bson.M{})
}

func (r *ReservationRepository) list(ctx context.Context, filter bson.M) ([]models.Reservation, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *ReservationRepository) ExistsCovering(ctx context.Context, equipmentID primitive.ObjectID, at time.Time) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"equipment": equipmentID,
		"startDate": bson.M{"$lte": at},
		"endDate":   bson.M{"$gte": at},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReservationRepository) UpdateOwned(ctx context.Context, id, userID primitive.ObjectID, update ReservationUpdate) (models.Reservation, error) {
	set := bson.M{}
	if update.StartDate != nil {
		set["startDate"] = *update.StartDate
	}
	if update.EndDate != nil {
		set["endDate"] = *update.EndDate
	}
	if update.StartTime != nil {
		set["startTime"] = *update.StartTime
	}
	if update.EndTime != nil {
		set["endTime"] = *update.EndTime
	}
	if update.PickupPlace != nil {
		set["pickupPlace"] = *update.PickupPlace
	}
	if update.DeliveryAddressPickup != nil {
		set["deliveryAddressPickup"] = *update.DeliveryAddressPickup
	}
	if update.DeliveryAddressReturn != nil {
		set["deliveryAddressReturn"] = *update.DeliveryAddressReturn
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}

	filter := bson.M{"_id": id, "user": userID}

	var reservation models.Reservation

	// An empty $set is rejected by the server; a no-op update degrades to a
	// plain ownership-checked read.
	if len(set) == 0 {
		if err := r.col.FindOne(ctx, filter).Decode(&reservation); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.Reservation{}, ErrNotFound
			}
			return models.Reservation{}, err
		}
		return reservation, nil
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	if err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&reservation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Reservation{}, ErrNotFound
		}
		return models.Reservation{}, err
	}
	return reservation, nil
}

func (r *ReservationRepository) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.deleteOne(ctx, bson.M{"_id": id, "user": userID})
}

func (r *ReservationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.deleteOne(ctx, bson.M{"_id": id})
}

func (r *ReservationRepository) deleteOne(ctx context.Context, filter bson.M) error {
	result, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.col.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *ReservationRepository) DeleteByEquipment(ctx context.Context, equipmentID primitive.ObjectID) (int64, error) {
	result, err := r.col.DeleteMany(ctx, bson.M{"equipment": equipmentID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
