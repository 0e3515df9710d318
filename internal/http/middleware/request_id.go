package middleware

import (
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// RequestID honours an incoming X-Request-ID or generates one, echoes it on
// the response and attaches it to the request log context.
func RequestID(logg *logger.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			reqID := string(ctx.Request.Header.Peek(RequestIDHeader))
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}

			ctx.Response.Header.Set(RequestIDHeader, reqID)
			httpctx.SetRequestID(ctx, reqID)
			httpctx.SetContext(ctx, logg.WithRequestID(httpctx.Context(ctx), reqID))

			next(ctx)
		}
	}
}
