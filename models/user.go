package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies how a user signs in
type AuthProvider string

const (
	ProviderPassword AuthProvider = "password"
	ProviderGoogle   AuthProvider = "google"
)

// User represents a user entity
type User struct {
	ID              uuid.UUID    `json:"id"`
	Email           string       `json:"email"`
	PasswordHash    string       `json:"-"` // Never serialize password hash
	Provider        AuthProvider `json:"provider"`
	ProviderSubject *string      `json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// UserProfile is the persisted preferences document of a user
type UserProfile struct {
	UID                   uuid.UUID `json:"uid"`
	Name                  *string   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	PhotoURL              *string   `json:"photoURL,omitempty" validate:"omitempty,url,max=500"`
	Bio                   *string   `json:"bio,omitempty" validate:"omitempty,max=500"`
	Religion              string    `json:"religion" validate:"required,religion"`
	Country               *string   `json:"country,omitempty" validate:"omitempty,max=100"`
	City                  *string   `json:"city,omitempty" validate:"omitempty,max=100"`
	PreferredLanguage     Locale    `json:"preferredLanguage" validate:"required,locale"`
	PreferredBibleVersion string    `json:"preferredBibleVersion" validate:"required,bibleversion"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the fields a caller wants to change. Nil fields keep
// their stored value.
type ProfileUpdate struct {
	Name                  *string `json:"name"`
	PhotoURL              *string `json:"photoURL"`
	Bio                   *string `json:"bio"`
	Religion              *string `json:"religion"`
	Country               *string `json:"country"`
	City                  *string `json:"city"`
	PreferredLanguage     *Locale `json:"preferredLanguage"`
	PreferredBibleVersion *string `json:"preferredBibleVersion"`
}
