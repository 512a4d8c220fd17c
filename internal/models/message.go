package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a write-once contact-form entry, readable and deletable by admins.
type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
	Subject  string             `bson:"subject" json:"subject"`
	Content  string             `bson:"content" json:"content"`
	SentAt   time.Time          `bson:"sentAt" json:"sentAt"`
}
