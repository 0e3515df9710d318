package middleware

import (
	"bytes"
	"context"
	"strings"

	"github.com/valyala/fasthttp"

	"exchangeapi/internal/apperrors"
	"exchangeapi/internal/auth"
	dbpkg "exchangeapi/internal/db"
	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/http/responses"
	"exchangeapi/internal/logger"
	"exchangeapi/internal/metrics"
	"exchangeapi/internal/ratelimit"
)

const (
	MerchantIDHeader = "X-Merchant-ID"

	msgMissingCredentials = "Missing authentication credentials"
	msgInvalidCredentials = "Invalid credentials"
)

// CredentialValidator resolves a merchant from its id and API key.
type CredentialValidator interface {
	Validate(ctx context.Context, merchantID, secret string) (*dbpkg.Merchant, error)
}

// MerchantAuth requires a Bearer API key and an X-Merchant-ID header on
// every request and stores the authenticated merchant on the context.
// All rejections share one 401 body.
func MerchantAuth(v CredentialValidator, guard *ratelimit.Guard, m *metrics.Metrics, logg *logger.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := bearerToken(ctx.Request.Header.Peek("Authorization"))
			merchantID := strings.TrimSpace(string(ctx.Request.Header.Peek(MerchantIDHeader)))
			if token == "" || merchantID == "" {
				m.AuthFailure("missing_credentials")
				responses.Error(ctx, apperrors.CodeUnauthorized, msgMissingCredentials)
				return
			}

			reqCtx := httpctx.Context(ctx)
			clientIP := ctx.RemoteIP().String()
			if guard.Exceeded(reqCtx, clientIP, merchantID) {
				m.AuthFailure("throttled")
				logg.Warn(logg.WithField(reqCtx, "client_ip", clientIP), "auth.throttled", nil)
				responses.Error(ctx, apperrors.CodeUnauthorized, msgInvalidCredentials)
				return
			}

			merchant, err := v.Validate(reqCtx, merchantID, token)
			if err != nil {
				if !auth.IsRejection(err) {
					responses.WriteError(ctx, logg, apperrors.Wrap(apperrors.CodeInternal, err, "validate credentials"))
					return
				}
				guard.RecordFailure(reqCtx, clientIP, merchantID)
				m.AuthFailure(auth.Reason(err))
				logg.Warn(logg.WithFields(reqCtx, map[string]any{
					"client_ip": clientIP,
					"reason":    auth.Reason(err),
				}), "auth.rejected", nil)
				responses.Error(ctx, apperrors.CodeUnauthorized, msgInvalidCredentials)
				return
			}

			httpctx.SetMerchant(ctx, merchant)
			httpctx.SetContext(ctx, logg.WithMerchantID(reqCtx, merchant.ID.String()))
			next(ctx)
		}
	}
}

func bearerToken(header []byte) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !bytes.EqualFold(header[:len(prefix)], []byte(prefix)) {
		return ""
	}
	return strings.TrimSpace(string(header[len(prefix):]))
}
