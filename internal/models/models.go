package models

import (
	"time"
)

// Account is a registered user's identity record. Password holds the bcrypt
// hash and is never serialized.
type Account struct {
	UserID         int        `json:"userId"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Email          string     `json:"email,omitempty"`
	Password       string     `json:"-"`
	DOB            *string    `json:"dob,omitempty"`
	ResetCode      *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
}

// Wardrobe is the per-user container of clothing items. Exists reports
// whether a record is stored at all: a user who never added an item has no
// record, which is a valid state and distinct from an empty item list.
type Wardrobe struct {
	UserID int            `json:"userId"`
	Items  []ClothingItem `json:"wardrobe"`
	Exists bool           `json:"-"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type CSRFToken struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
