package middleware

import (
	"fmt"

	"github.com/valyala/fasthttp"

	"exchangeapi/internal/apperrors"
	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/http/responses"
	"exchangeapi/internal/logger"
)

// Recover turns a panic in next into a 500 INTERNAL_ERROR envelope.
func Recover(logg *logger.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					logg.Error(logg.WithField(httpctx.Context(ctx), "panic", fmt.Sprint(rec)), "panic.recovered", err)
					ctx.ResetBody()
					responses.WriteError(ctx, nil, apperrors.Wrap(apperrors.CodeInternal, err, "panic"))
				}
			}()
			next(ctx)
		}
	}
}
