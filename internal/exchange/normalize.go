package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
		"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"exchangeapi/internal/apperrors"
	"exchangeapi/internal/db"
)

// DefaultCountry is stored when the client payload carries no country.
const DefaultCountry = "Tunisia"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// Normalize validates req and maps it onto a pending exchange owned by
// merchantID. Fields that fail validation are all reported at once.
func Normalize(req *CreateRequest, merchantID uuid.UUID, code string) (*db.Exchange, error) {
	if req == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "Request body is required")
	}
	req.trim()

	fields := map[string]string{}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "Invalid request body")
		}
		for _, fe := range verrs {
			fields[fieldPath(fe)] = validationMessage(fe)
		}
	}
	if req.Product != nil && req.Product.Price != nil && req.Product.Price.IsNegative() {
		fields["product.price"] = "must not be negative"
	}
	if req.Exchange != nil && req.Exchange.PaymentAmount != nil && req.Exchange.PaymentAmount.IsNegative() {
		fields["exchange.payment_amount"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, validationError(fields)
	}

	c, p, d := req.Client, req.Product, req.Exchange
	e := &db.Exchange{
		ExchangeCode:     code,
		MerchantID:       merchantID,
		ClientName:       c.Name,
		ClientPhone:      c.Phone,
		ClientAddress:    c.Address,
		ClientCity:       c.City,
		ClientRegion:     c.Region,
		ClientDelegation: firstNonEmpty(c.Delegation, c.PostalCode),
		ClientPostalCode: c.PostalCode,
		ClientCountry:    firstNonEmpty(c.Country, DefaultCountry),
		ProductName:      p.Name,
		ProductSKU:       p.SKU,
		ProductPrice:     decimal.Zero,
		ProductCategory:  p.Category,
		Reason:           d.Reason,
		Description:      d.Description,
		PaymentType:      d.PaymentType,
		PaymentAmount:    *d.PaymentAmount,
		Status:           db.StatusPending,
		APICreated:       true,
	}
	if p.Price != nil {
		e.ProductPrice = *p.Price
	}
	if m := req.Media; m != nil {
		e.Video = m.Video
		e.VideoURL = m.VideoURL
		if len(m.Images) > 0 {
			e.Images = datatypes.JSONSlice[string](m.Images)
		}
	}
	if len(req.Metadata) > 0 {
		e.Metadata = datatypes.JSONMap(req.Metadata)
		e.OrderID, _ = scalarString(req.Metadata["order_id"])
		e.OrderDate, _ = scalarString(req.Metadata["order_date"])
	}
	return e, nil
}

func validationError(fields map[string]string) *apperrors.Error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msg := "Missing or invalid fields: " + strings.Join(names, ", ")
	return apperrors.New(apperrors.CodeValidation, msg).WithDetails(map[string]any{"fields": fields})
}

// fieldPath drops the root struct name from the validator namespace,
// leaving the JSON path, e.g. "client.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "is invalid"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// scalarString renders order linkage values. Numeric order ids are common
// in shop exports, so numbers are accepted alongside strings as long as
// they were decoded as json.Number.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}
