package ctx

import (
	"context"

	"github.com/valyala/fasthttp"

	dbpkg "exchangeapi/internal/db"
)

const (
	MerchantKey       = "merchant"
	RequestIDKey      = "requestID"
	RouteKey          = "route"
	RequestContextKey = "requestContext"
)

func SetMerchant(ctx *fasthttp.RequestCtx, m *dbpkg.Merchant) {
	ctx.SetUserValue(MerchantKey, m)
}

func MerchantFromCtx(ctx *fasthttp.RequestCtx) (*dbpkg.Merchant, bool) {
	v := ctx.UserValue(MerchantKey)
	if v == nil {
		return nil, false
	}
	m, ok := v.(*dbpkg.Merchant)
	return m, ok && m != nil
}

func SetRequestID(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(RequestIDKey, id)
}

func RequestIDFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(RequestIDKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SetRoute records the dispatch-table name of the matched operation.
func SetRoute(ctx *fasthttp.RequestCtx, name string) {
	ctx.SetUserValue(RouteKey, name)
}

// RouteFromCtx returns the matched operation name, or "unmatched".
func RouteFromCtx(ctx *fasthttp.RequestCtx) string {
	if s, ok := ctx.UserValue(RouteKey).(string); ok && s != "" {
		return s
	}
	return "unmatched"
}

// SetContext stores the request-scoped context.Context carrying log fields.
func SetContext(ctx *fasthttp.RequestCtx, c context.Context) {
	ctx.SetUserValue(RequestContextKey, c)
}

// Context returns the context stored by SetContext, falling back to the
// RequestCtx itself.
func Context(ctx *fasthttp.RequestCtx) context.Context {
	if c, ok := ctx.UserValue(RequestContextKey).(context.Context); ok && c != nil {
		return c
	}
	return ctx
}
