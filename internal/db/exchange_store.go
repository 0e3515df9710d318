package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExchangeStore persists exchanges. Every read takes the owning merchant's
// id, so there is no way to load another merchant's rows through it.
type ExchangeStore struct {
	db *gorm.DB
}

func NewExchangeStore(conn *gorm.DB) *ExchangeStore {
	return &ExchangeStore{db: conn}
}

// Insert stores e. The unique index on exchange_code rejects duplicates.
func (s *ExchangeStore) Insert(ctx context.Context, e *Exchange) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *ExchangeStore) GetByCode(ctx context.Context, merchantID uuid.UUID, code string) (*Exchange, error) {
	var e Exchange
	err := s.db.WithContext(ctx).
		Where("merchant_id = ? AND exchange_code = ?", merchantID, code).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Query returns one page of the merchant's exchanges, newest first, and the
// total number of rows matching the filter.
func (s *ExchangeStore) Query(ctx context.Context, merchantID uuid.UUID, f ExchangeFilter, page, limit int) ([]Exchange, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.scoped(ctx, merchantID, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]Exchange, 0, limit)
	if total == 0 {
		return rows, 0, nil
	}
	if err := s.scoped(ctx, merchantID, f).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *ExchangeStore) scoped(ctx context.Context, merchantID uuid.UUID, f ExchangeFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&Exchange{}).Where("merchant_id = ?", merchantID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}
