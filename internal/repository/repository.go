// Package repository holds the per-entity persistence interfaces and their
// MongoDB implementations. Handlers and services depend on the interfaces so
// tests can run against in-memory fakes.
package repository

import "errors"

var ErrNotFound = errors.New("not found")

// Collection names.
const (
	usersCollection        = "users"
	equipmentCollection    = "equipment"
	reservationsCollection = "reservations"
	reviewsCollection      = "reviews"
	messagesCollection     = "messages"
)
