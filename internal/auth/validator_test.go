package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"exchangeapi/internal/db"
)

type fakeStore struct {
	merchants map[uuid.UUID]*db.Merchant
	keys      map[uuid.UUID][]db.APIKey
	err       error
}

func (f *fakeStore) FindMerchant(_ context.Context, id uuid.UUID) (*db.Merchant, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.merchants[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) ActiveKeys(_ context.Context, merchantID uuid.UUID) ([]db.APIKey, error) {
	return f.keys[merchantID], nil
}

func hash(t *testing.T, secret string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newFixture(t *testing.T) (*fakeStore, *db.Merchant, *db.Merchant) {
	t.Helper()
	enabled := &db.Merchant{ID: uuid.New(), Name: "Shop", APIEnabled: true}
	disabled := &db.Merchant{ID: uuid.New(), Name: "Closed", APIEnabled: false}
	store := &fakeStore{
		merchants: map[uuid.UUID]*db.Merchant{enabled.ID: enabled, disabled.ID: disabled},
		keys: map[uuid.UUID][]db.APIKey{
			enabled.ID: {
				{MerchantID: enabled.ID, Name: "old", KeyHash: hash(t, "exk_old"), Active: true},
				{MerchantID: enabled.ID, Name: "live", KeyHash: hash(t, "exk_live"), Active: true},
			},
			disabled.ID: {
				{MerchantID: disabled.ID, Name: "live", KeyHash: hash(t, "exk_closed"), Active: true},
			},
		},
	}
	return store, enabled, disabled
}

func TestValidateAcceptsAnyActiveKey(t *testing.T) {
	store, enabled, _ := newFixture(t)
	v := NewValidator(store)

	for _, secret := range []string{"exk_live", "exk_old"} {
		m, err := v.Validate(context.Background(), enabled.ID.String(), secret)
		require.NoError(t, err)
		assert.Equal(t, enabled.ID, m.ID)
	}
}

func TestValidateRejections(t *testing.T) {
	store, enabled, disabled := newFixture(t)
	v := NewValidator(store)

	cases := []struct {
		name       string
		merchantID string
		secret     string
		want       error
		reason     string
	}{
		{"wrong key", enabled.ID.String(), "exk_nope", ErrInvalidKey, "invalid_key"},
		{"unknown merchant", uuid.NewString(), "exk_live", ErrUnknownMerchant, "unknown_merchant"},
		{"malformed merchant id", "shop-42", "exk_live", ErrUnknownMerchant, "unknown_merchant"},
		{"disabled merchant", disabled.ID.String(), "exk_closed", ErrAPIDisabled, "api_disabled"},
		{"other merchant's key", enabled.ID.String(), "exk_closed", ErrInvalidKey, "invalid_key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := v.Validate(context.Background(), tc.merchantID, tc.secret)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsRejection(err))
			assert.Equal(t, tc.reason, Reason(err))
		})
	}
}

func TestValidateMerchantWithoutKeys(t *testing.T) {
	m := &db.Merchant{ID: uuid.New(), APIEnabled: true}
	v := NewValidator(&fakeStore{merchants: map[uuid.UUID]*db.Merchant{m.ID: m}})

	_, err := v.Validate(context.Background(), m.ID.String(), "anything")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestValidateStoreFailure(t *testing.T) {
	cause := errors.New("db down")
	v := NewValidator(&fakeStore{err: cause})

	_, err := v.Validate(context.Background(), uuid.NewString(), "exk_live")
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsRejection(err))
	assert.Equal(t, "error", Reason(err))
}
