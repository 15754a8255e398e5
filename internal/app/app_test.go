package app

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-parser/internal/config"
	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/llm/openai"
)

func TestNewCompleter(t *testing.T) {
	ctx := context.Background()

	c, err := NewCompleter(ctx, config.LLMConfig{Provider: config.ProviderNone}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewCompleter(ctx, config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "k"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, c)

	_, err = NewCompleter(ctx, config.LLMConfig{Provider: "mystery"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestModelFor(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", modelFor(config.LLMConfig{Provider: config.ProviderGemini}))
	assert.Equal(t, openai.DefaultModel, modelFor(config.LLMConfig{Provider: config.ProviderOpenAI}))
	assert.Equal(t, "custom", modelFor(config.LLMConfig{Provider: config.ProviderOpenAI, Model: "custom"}))
}

func TestNewWithoutModel(t *testing.T) {
	a, err := New(context.Background(), config.Default(), zerolog.Nop(), strings.NewReader("Corner Cafe\n2024-03-01\nTOTAL 12.50"))
	require.NoError(t, err)
	defer a.Close()

	doc, err := a.Loader.Load(context.Background(), "-")
	require.NoError(t, err)

	res, err := a.Processor.ParseDocument(context.Background(), doc.Text, domain.DocTypeReceipt)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Corner Cafe", res.Transactions[0].Merchant)
	assert.Nil(t, a.Recorder)
}
