package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CredentialStore reads merchants and their API keys for authentication.
type CredentialStore struct {
	db *gorm.DB
}

func NewCredentialStore(conn *gorm.DB) *CredentialStore {
	return &CredentialStore{db: conn}
}

func (s *CredentialStore) FindMerchant(ctx context.Context, id uuid.UUID) (*Merchant, error) {
	var m Merchant
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveKeys returns the merchant's enabled keys.
func (s *CredentialStore) ActiveKeys(ctx context.Context, merchantID uuid.UUID) ([]APIKey, error) {
	var keys []APIKey
	if err := s.db.WithContext(ctx).
		Where("merchant_id = ? AND active = ?", merchantID, true).
		Order("id").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
