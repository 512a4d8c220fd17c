package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PickupPlace string

const (
	PickupPlaceStore    PickupPlace = "store"
	PickupPlaceDelivery PickupPlace = "delivery"
)

type DeliveryAddress struct {
	City        string `bson:"city" json:"city"`
	Street      string `bson:"street" json:"street"`
	HouseNumber string `bson:"houseNumber" json:"houseNumber"`
}

// Reservation references its user and equipment by id. Both must resolve when
// the reservation is created; afterwards the references may dangle (the parent
// delete cascades, but nothing re-checks them) and read paths substitute
// placeholder labels.
type Reservation struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User                  primitive.ObjectID `bson:"user" json:"user"`
	Equipment             primitive.ObjectID `bson:"equipment" json:"equipment"`
	StartDate             time.Time          `bson:"startDate" json:"startDate"`
	EndDate               time.Time          `bson:"endDate" json:"endDate"`
	StartTime             string             `bson:"startTime" json:"startTime"`
	EndTime               string             `bson:"endTime" json:"endTime"`
	PickupPlace           PickupPlace        `bson:"pickupPlace" json:"pickupPlace"`
	DeliveryAddressPickup *DeliveryAddress   `bson:"deliveryAddressPickup,omitempty" json:"deliveryAddressPickup,omitempty"`
	DeliveryAddressReturn *DeliveryAddress   `bson:"deliveryAddressReturn,omitempty" json:"deliveryAddressReturn,omitempty"`
	Price                 float64            `bson:"price" json:"price"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
}

// CoversInstant reports whether the reservation's date range contains t.
// Equipment availability is derived from this, never stored.
func (r Reservation) CoversInstant(t time.Time) bool {
	return !r.StartDate.After(t) && !r.EndDate.Before(t)
}
