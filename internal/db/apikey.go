package db

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
)

// APIKey is a merchant secret. Only the bcrypt hash is stored; the plain
// key is shown to the merchant once when issued.
type APIKey struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	MerchantID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Name is a merchant-facing label (e.g. "shopify-prod").
	Name string `gorm:"size:128;not null"`

	// KeyPrefix holds the first characters of the key for display only.
	KeyPrefix string `gorm:"size:16;not null"`

	KeyHash string `gorm:"size:255;not null"`

	// Active indicates whether this key is currently enabled.
	Active bool `gorm:"not null"`
}

const keyPrefixLen = 8

// HashAPIKey returns the bcrypt hash stored for key.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// DisplayPrefix returns the part of key kept in clear for display.
func DisplayPrefix(key string) string {
	if len(key) <= keyPrefixLen {
		return key
	}
	return key[:keyPrefixLen]
}
