package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{ServiceName: "exchangeapi", Output: &buf})

	ctx := l.WithRequestID(context.Background(), "req-1")
	ctx = l.WithMerchantID(ctx, "m-1")
	l.Error(ctx, "exchange.create_failed", errors.New("boom"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "exchangeapi", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "m-1", line["merchant_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "exchange.create_failed", line["message"])
}

func TestFieldsDoNotLeakIntoParentContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	parent := context.Background()
	_ = l.WithField(parent, "k", "v")
	l.Info(parent, "plain")

	assert.NotContains(t, buf.String(), `"k"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}
