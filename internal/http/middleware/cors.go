package middleware

import (
	"github.com/valyala/fasthttp"
)

const allowedHeaders = "authorization, x-client-info, apikey, content-type, x-merchant-id"

// CORS opens the API to any origin and answers preflight requests itself,
// before authentication.
func CORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		ctx.Response.Header.Set("Access-Control-Allow-Headers", allowedHeaders)
		ctx.SetContentType("application/json")

		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.ResetBody()
			return
		}
		next(ctx)
	}
}
