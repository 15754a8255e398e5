package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New()
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestNewFromConfig(t *testing.T) {
	t.Run("json with level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log, err := NewFromConfig(Config{Level: "WARN", Format: "json"}, buf)
		require.NoError(t, err)

		log.Info().Msg("hidden")
		log.Warn().Str("stage", "ai_extract").Msg("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "shown", entry["message"])
		assert.Equal(t, "ai_extract", entry["stage"])
	})

	t.Run("console default", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log, err := NewFromConfig(Config{}, buf)
		require.NoError(t, err)
		log.Info().Msg("hello")
		assert.Contains(t, buf.String(), "hello")
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := NewFromConfig(Config{Level: "loud"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := NewFromConfig(Config{Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	assert.Contains(t, buf.String(), "test message")
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	assert.NotZero(t, buf.Len())
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"run_id":   "123",
		"doc_type": "receipt",
	})

	log.Info().Msg("test message")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"123"`)
	assert.Contains(t, out, `"doc_type":"receipt"`)
}
