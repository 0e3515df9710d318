package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateRequest is the JSON body accepted by the create operation. It has
// no merchant, status or code fields: those are always set server-side.
type CreateRequest struct {
	Client   *ClientInput   `json:"client" validate:"required"`
	Product  *ProductInput  `json:"product" validate:"required"`
	Exchange *DetailsInput  `json:"exchange" validate:"required"`
	Media    *MediaInput    `json:"media"`
	Metadata map[string]any `json:"metadata"`
}

// DecodeCreateRequest parses a create body. Numbers inside metadata are
// kept as json.Number so large order ids survive intact.
func DecodeCreateRequest(body []byte) (*CreateRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var req CreateRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON body")
	}
	return &req, nil
}

type ClientInput struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region"`
	Delegation string `json:"delegation"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type ProductInput struct {
	Name     string           `json:"name" validate:"required"`
	SKU      string           `json:"sku"`
	Price    *decimal.Decimal `json:"price"`
	Category string           `json:"category"`
}

type DetailsInput struct {
	Reason        string           `json:"reason" validate:"required"`
	Description   string           `json:"description"`
	PaymentType   string           `json:"payment_type" validate:"required,oneof=free paid"`
	PaymentAmount *decimal.Decimal `json:"payment_amount" validate:"required"`
}

type MediaInput struct {
	Video    string   `json:"video"`
	VideoURL string   `json:"video_url"`
	Images   []string `json:"images"`
}

// trim strips surrounding whitespace so blank values count as missing.
func (r *CreateRequest) trim() {
	if c := r.Client; c != nil {
		for _, s := range []*string{&c.Name, &c.Phone, &c.Address, &c.City, &c.Region, &c.Delegation, &c.PostalCode, &c.Country} {
			*s = strings.TrimSpace(*s)
		}
	}
	if p := r.Product; p != nil {
		for _, s := range []*string{&p.Name, &p.SKU, &p.Category} {
			*s = strings.TrimSpace(*s)
		}
	}
	if e := r.Exchange; e != nil {
		e.Reason = strings.TrimSpace(e.Reason)
		e.Description = strings.TrimSpace(e.Description)
		e.PaymentType = strings.TrimSpace(e.PaymentType)
	}
	if m := r.Media; m != nil {
		m.Video = strings.TrimSpace(m.Video)
		m.VideoURL = strings.TrimSpace(m.VideoURL)
		images := m.Images[:0]
		for _, img := range m.Images {
			if img = strings.TrimSpace(img); img != "" {
				images = append(images, img)
			}
		}
		m.Images = images
	}
}
