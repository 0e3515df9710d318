package db

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is the API tenant that owns exchanges. Rows are managed by the
// back office; this service only reads them.
type Merchant struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Name  string `gorm:"size:255;not null"`
	Email string `gorm:"size:255"`

	// APIEnabled gates every API key of the merchant.
	APIEnabled bool `gorm:"column:api_enabled;not null"`

	APIKeys []APIKey `gorm:"foreignKey:MerchantID"`
}
