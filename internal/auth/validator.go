package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"exchangeapi/internal/db"
)

// Failure kinds. Callers must not tell them apart in responses; they exist
// for logs and metrics.
var (
	ErrUnknownMerchant = errors.New("unknown merchant")
	ErrAPIDisabled     = errors.New("merchant API access disabled")
	ErrInvalidKey      = errors.New("invalid API key")
)

// CredentialStore loads merchants and their enabled keys.
type CredentialStore interface {
	FindMerchant(ctx context.Context, id uuid.UUID) (*db.Merchant, error)
	ActiveKeys(ctx context.Context, merchantID uuid.UUID) ([]db.APIKey, error)
}

// dummyHash is compared against when the merchant does not exist so that
// every failure path costs one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("exchangeapi-dummy-key"), bcrypt.DefaultCost)

type Validator struct {
	store CredentialStore
}

func NewValidator(store CredentialStore) *Validator {
	return &Validator{store: store}
}

// Validate resolves the merchant identified by merchantID and checks secret
// against its active keys. It returns one of ErrUnknownMerchant,
// ErrAPIDisabled or ErrInvalidKey on rejection; any other error comes from
// the store.
func (v *Validator) Validate(ctx context.Context, merchantID, secret string) (*db.Merchant, error) {
	id, err := uuid.Parse(merchantID)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return nil, ErrUnknownMerchant
	}

	m, err := v.store.FindMerchant(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return nil, ErrUnknownMerchant
	}
	if err != nil {
		return nil, fmt.Errorf("load merchant: %w", err)
	}
	if !m.APIEnabled {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return nil, ErrAPIDisabled
	}

	keys, err := v.store.ActiveKeys(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("load api keys: %w", err)
	}
	if len(keys) == 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return nil, ErrInvalidKey
	}
	for _, k := range keys {
		if bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(secret)) == nil {
			return m, nil
		}
	}
	return nil, ErrInvalidKey
}

// Reason is the metrics label for a rejection.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownMerchant):
		return "unknown_merchant"
	case errors.Is(err, ErrAPIDisabled):
		return "api_disabled"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	}
	return "error"
}

// IsRejection reports whether err is a credential rejection rather than a
// store failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrUnknownMerchant) || errors.Is(err, ErrAPIDisabled) || errors.Is(err, ErrInvalidKey)
}
