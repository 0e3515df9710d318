package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Exchange status values. Only StatusPending is written here; later
// transitions are made by the back-office tooling that shares the table.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// Payment types accepted for an exchange.
const (
	PaymentFree = "free"
	PaymentPaid = "paid"
)

// Exchange is a customer's request to swap a purchased product.
// Rows are always owned by exactly one merchant.
type Exchange struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// ExchangeCode is the human-shareable identifier, e.g. EXC-M3K9Z1A2-7QX.
	ExchangeCode string    `gorm:"uniqueIndex;size:40;not null"`
	MerchantID   uuid.UUID `gorm:"type:uuid;index;not null"`

	ClientName       string `gorm:"size:255;not null"`
	ClientPhone      string `gorm:"size:64;not null"`
	ClientAddress    string `gorm:"size:512;not null"`
	ClientCity       string `gorm:"size:128;not null"`
	ClientRegion     string `gorm:"size:64"`
	ClientDelegation string `gorm:"size:128"`
	ClientPostalCode string `gorm:"size:32"`
	ClientCountry    string `gorm:"size:64;not null"`

	ProductName     string          `gorm:"size:255;not null"`
	ProductSKU      string          `gorm:"column:product_sku;size:128"`
	ProductPrice    decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	ProductCategory string          `gorm:"size:128"`

	Reason        string          `gorm:"type:text;not null"`
	Description   string          `gorm:"type:text"`
	PaymentType   string          `gorm:"size:16;not null"`
	PaymentAmount decimal.Decimal `gorm:"type:numeric(12,3);not null"`

	// Video and VideoURL are kept independently; intake channels use either.
	Video    string                      `gorm:"type:text"`
	VideoURL string                      `gorm:"type:text"`
	Images   datatypes.JSONSlice[string] `gorm:"type:json"`

	// Metadata is stored verbatim. OrderID/OrderDate mirror the matching
	// metadata keys so back-office tooling can link orders without parsing JSON.
	Metadata  datatypes.JSONMap `gorm:"type:json"`
	OrderID   string            `gorm:"size:128;index"`
	OrderDate string            `gorm:"size:64"`

	Status     string `gorm:"size:32;not null;default:pending;index"`
	APICreated bool   `gorm:"column:api_created;not null"`
}

// BeforeCreate assigns the opaque row id.
func (e *Exchange) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ExchangeFilter narrows a merchant's exchange listing. Zero values are ignored.
type ExchangeFilter struct {
	Status string
	From   *time.Time
	// To is exclusive.
	To *time.Time
}
