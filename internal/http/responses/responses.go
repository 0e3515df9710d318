package responses

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"

	"exchangeapi/internal/apperrors"
	httpctx "exchangeapi/internal/http/ctx"
	"exchangeapi/internal/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// StatusFor maps an envelope outcome to its HTTP status.
func StatusFor(success bool, code apperrors.Code) int {
	if success {
		return fasthttp.StatusOK
	}
	switch code {
	case apperrors.CodeUnauthorized:
		return fasthttp.StatusUnauthorized
	case apperrors.CodeInternal:
		return fasthttp.StatusInternalServerError
	case apperrors.CodeNotFound:
		return fasthttp.StatusNotFound
	}
	return fasthttp.StatusBadRequest
}

func WriteSuccess(ctx *fasthttp.RequestCtx, data any, message string) {
	writeJSON(ctx, StatusFor(true, ""), Envelope{Success: true, Data: data, Message: message})
}

// WriteError renders err as a failure envelope. Untyped errors become
// INTERNAL_ERROR; internal causes are logged but never sent to the caller.
func WriteError(ctx *fasthttp.RequestCtx, logg *logger.Logger, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := apperrors.As(err)
	if typed == nil {
		typed = apperrors.Wrap(apperrors.CodeInternal, err, "unexpected error")
	}

	code := typed.Code()
	body := &ErrorBody{Code: string(code), Message: typed.Message()}
	if code == apperrors.CodeInternal || body.Message == "" {
		body.Message = apperrors.PublicMessage(code)
	}
	if code == apperrors.CodeValidation {
		body.Details = typed.Details()
	}

	if logg != nil {
		c := logg.WithField(httpctx.Context(ctx), "error_code", string(code))
		switch code {
		case apperrors.CodeInternal, apperrors.CodeCreation:
			logg.Error(c, "request.error", err)
		default:
			logg.Debug(c, "request.rejected: "+body.Message)
		}
	}

	writeJSON(ctx, StatusFor(false, code), Envelope{Success: false, Error: body})
}

// Error writes a failure envelope with an explicit code and message.
func Error(ctx *fasthttp.RequestCtx, code apperrors.Code, message string) {
	writeJSON(ctx, StatusFor(false, code), Envelope{
		Success: false,
		Error:   &ErrorBody{Code: string(code), Message: message},
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload Envelope) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = fasthttp.StatusInternalServerError
		body = []byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`)
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
