// Package domain contains the core data types for the ShareIt booking API.
// This package has no internal dependencies and is imported by every other
// internal package (repo, lifecycle, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered member who can own items and book items of others.
// Users are managed elsewhere; the booking engine only checks existence.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// Item is a shared physical object offered by its owner.
// Available is the owner's switch for accepting new bookings.
type Item struct {
	ID          uuid.UUID
	Name        string
	Description string
	Available   bool
	OwnerID     uuid.UUID
	CreatedAt   time.Time
}
