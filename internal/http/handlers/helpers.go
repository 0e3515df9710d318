package handlers

import (
	"github.com/valyala/fasthttp"

	"exchangeapi/internal/apperrors"
	dbpkg "exchangeapi/internal/db"
	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/http/responses"
)

// MustMerchant returns the authenticated merchant, or writes a 401
// envelope and returns (nil, false).
func MustMerchant(ctx *fasthttp.RequestCtx) (*dbpkg.Merchant, bool) {
	m, ok := httpctx.MerchantFromCtx(ctx)
	if !ok {
		responses.Error(ctx, apperrors.CodeUnauthorized, apperrors.PublicMessage(apperrors.CodeUnauthorized))
		return nil, false
	}
	return m, true
}
