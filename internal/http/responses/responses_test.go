package responses

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"exchangeapi/internal/apperrors"
	"exchangeapi/internal/logger"
)

func newCtx() *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.SetRequestURI("/merchant-api/list")
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 200, StatusFor(true, ""))
	assert.Equal(t, 401, StatusFor(false, apperrors.CodeUnauthorized))
	assert.Equal(t, 500, StatusFor(false, apperrors.CodeInternal))
	assert.Equal(t, 404, StatusFor(false, apperrors.CodeNotFound))
	assert.Equal(t, 400, StatusFor(false, apperrors.CodeValidation))
	assert.Equal(t, 400, StatusFor(false, apperrors.CodeCreation))
	assert.Equal(t, 400, StatusFor(false, "SOMETHING_ELSE"))
}

func TestWriteSuccess(t *testing.T) {
	ctx := newCtx()
	WriteSuccess(ctx, map[string]string{"exchange_code": "EXC-A-BCD"}, "Exchange created successfully")

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	env := decode(t, ctx)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, "Exchange created successfully", env.Message)
	assert.JSONEq(t, `{"exchange_code":"EXC-A-BCD"}`, string(env.Data))
}

func TestWriteErrorTyped(t *testing.T) {
	ctx := newCtx()
	err := apperrors.New(apperrors.CodeValidation, "Missing or invalid fields: client.name").
		WithDetails(map[string]any{"fields": map[string]string{"client.name": "is required"}})
	WriteError(ctx, logger.Nop(), err)

	assert.Equal(t, 400, ctx.Response.StatusCode())
	env := decode(t, ctx)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "Missing or invalid fields: client.name", env.Error.Message)
	assert.Contains(t, env.Error.Details, "fields")
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	ctx := newCtx()
	WriteError(ctx, logger.Nop(), errors.New("pq: password authentication failed"))

	assert.Equal(t, 500, ctx.Response.StatusCode())
	env := decode(t, ctx)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.Equal(t, "Internal server error", env.Error.Message)
	assert.NotContains(t, string(ctx.Response.Body()), "pq:")

	ctx = newCtx()
	WriteError(ctx, nil, apperrors.Wrap(apperrors.CodeInternal, errors.New("boom"), "list exchanges"))
	env = decode(t, ctx)
	assert.Equal(t, "Internal server error", env.Error.Message)
}

func TestWriteErrorCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.New(apperrors.CodeNotFound, "Exchange not found"), 404, "NOT_FOUND"},
		{apperrors.New(apperrors.CodeUnauthorized, "Invalid credentials"), 401, "UNAUTHORIZED"},
		{apperrors.Wrap(apperrors.CodeCreation, errors.New("dup"), "Failed to create exchange"), 400, "CREATION_ERROR"},
	}
	for _, tc := range cases {
		ctx := newCtx()
		WriteError(ctx, logger.Nop(), tc.err)
		assert.Equal(t, tc.status, ctx.Response.StatusCode())
		env := decode(t, ctx)
		assert.Equal(t, tc.code, env.Error.Code)
		assert.Nil(t, env.Error.Details)
	}
}

func TestError(t *testing.T) {
	ctx := newCtx()
	Error(ctx, apperrors.CodeNotFound, "Endpoint not found")
	assert.Equal(t, 404, ctx.Response.StatusCode())
	env := decode(t, ctx)
	assert.Equal(t, "Endpoint not found", env.Error.Message)
}
