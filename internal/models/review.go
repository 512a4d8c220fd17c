package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is anonymous-capable: the author is a free-form name, not a user ref.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"fullName" json:"fullName"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
