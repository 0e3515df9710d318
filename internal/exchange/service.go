package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	"exchangeapi/internal/apperrors"
	"exchangeapi/internal/db"
	"exchangeapi/internal/pagination"
)

// Store is the persistence the service needs. Every read is scoped to the
// calling merchant.
type Store interface {
	Insert(ctx context.Context, e *db.Exchange) error
	GetByCode(ctx context.Context, merchantID uuid.UUID, code string) (*db.Exchange, error)
	Query(ctx context.Context, merchantID uuid.UUID, f db.ExchangeFilter, page, limit int) ([]db.Exchange, int64, error)
}

type Options struct {
	// BaseURL is the public site root, without a trailing slash.
	BaseURL string
	// QRCodeURL is the QR image endpoint; empty disables qr_code_url.
	QRCodeURL string
}

type Service struct {
	store Store
	codes *CodeGenerator
	opts  Options
}

func NewService(store Store, opts Options) *Service {
	return &Service{store: store, codes: NewCodeGenerator(), opts: opts}
}

type Created struct {
	ExchangeID   uuid.UUID `json:"exchange_id"`
	ExchangeCode string    `json:"exchange_code"`
	Status       string    `json:"status"`
	QRCodeURL    string    `json:"qr_code_url,omitempty"`
	TrackingURL  string    `json:"tracking_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type StatusView struct {
	ExchangeCode string    `json:"exchange_code"`
	Status       string    `json:"status"`
	ClientName   string    `json:"client_name"`
	ProductName  string    `json:"product_name"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListItem struct {
	ExchangeID    uuid.UUID   `json:"exchange_id"`
	ExchangeCode  string      `json:"exchange_code"`
	Status        string      `json:"status"`
	ClientName    string      `json:"client_name"`
	ClientPhone   string      `json:"client_phone"`
	ClientCity    string      `json:"client_city"`
	ProductName   string      `json:"product_name"`
	Reason        string      `json:"reason"`
	PaymentType   string      `json:"payment_type"`
	PaymentAmount json.Number `json:"payment_amount"`
	OrderID       string      `json:"order_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type ListResult struct {
	Exchanges  []ListItem      `json:"exchanges"`
	Pagination pagination.Meta `json:"pagination"`
}

// Create validates req, assigns a fresh code and stores the exchange as
// pending for merchantID.
func (s *Service) Create(ctx context.Context, merchantID uuid.UUID, req *CreateRequest) (*Created, error) {
	code := s.codes.Generate()
	e, err := Normalize(req, merchantID, code)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCreation, err, "Failed to create exchange")
	}

	tracking := s.TrackingURL(e.ExchangeCode)
	return &Created{
		ExchangeID:   e.ID,
		ExchangeCode: e.ExchangeCode,
		Status:       e.Status,
		QRCodeURL:    s.qrCodeURL(tracking),
		TrackingURL:  tracking,
		CreatedAt:    e.CreatedAt,
	}, nil
}

func (s *Service) Status(ctx context.Context, merchantID uuid.UUID, code string) (*StatusView, error) {
	e, err := s.store.GetByCode(ctx, merchantID, code)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "Exchange not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "load exchange")
	}
	return &StatusView{
		ExchangeCode: e.ExchangeCode,
		Status:       e.Status,
		ClientName:   e.ClientName,
		ProductName:  e.ProductName,
		Reason:       e.Reason,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}, nil
}

func (s *Service) List(ctx context.Context, merchantID uuid.UUID, q ListQuery) (*ListResult, error) {
	page := pagination.NormalizePage(q.Page)
	limit := pagination.NormalizeLimit(q.Limit)

	rows, total, err := s.store.Query(ctx, merchantID, q.filter(), page, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "list exchanges")
	}

	items := make([]ListItem, 0, len(rows))
	for _, e := range rows {
		items = append(items, ListItem{
			ExchangeID:    e.ID,
			ExchangeCode:  e.ExchangeCode,
			Status:        e.Status,
			ClientName:    e.ClientName,
			ClientPhone:   e.ClientPhone,
			ClientCity:    e.ClientCity,
			ProductName:   e.ProductName,
			Reason:        e.Reason,
			PaymentType:   e.PaymentType,
			PaymentAmount: json.Number(e.PaymentAmount.String()),
			OrderID:       e.OrderID,
			CreatedAt:     e.CreatedAt,
			UpdatedAt:     e.UpdatedAt,
		})
	}
	return &ListResult{
		Exchanges:  items,
		Pagination: pagination.NewMeta(page, limit, total),
	}, nil
}

// TrackingURL is the public page where the client follows the exchange.
func (s *Service) TrackingURL(code string) string {
	return s.opts.BaseURL + "/client/tracking/" + code
}

func (s *Service) qrCodeURL(tracking string) string {
	if s.opts.QRCodeURL == "" {
		return ""
	}
	return s.opts.QRCodeURL + "?size=200x200&data=" + url.QueryEscape(tracking)
}
