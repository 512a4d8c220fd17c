package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Equipment images hold bare filenames relative to the upload directory;
// handlers rewrite them to absolute URLs before responding.
type Equipment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	PricePerDay float64            `bson:"pricePerDay" json:"pricePerDay"`
	Images      []string           `bson:"images" json:"images"`
}
