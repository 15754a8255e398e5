package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-parser/internal/domain"
)

func TestSanitizeResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `  [{"amount": 1}]  `, want: `[{"amount": 1}]`},
		{name: "json fence", in: "```json\n[{\"amount\": 1}]\n```", want: `[{"amount": 1}]`},
		{name: "bare fence", in: "```\n{\"transactions\": []}\n```\n", want: `{"transactions": []}`},
		{name: "json label", in: "JSON: [1]", want: `[1]`},
		{name: "lower label inside fence", in: "```\njson: []\n```", want: `[]`},
		{name: "label before fence", in: "JSON:\n```json\n[{\"amount\": 1}]\n```", want: `[{"amount": 1}]`},
		{name: "fence on data line", in: "```[{\"amount\": 1},\n{\"amount\": 2}]```", want: "[{\"amount\": 1},\n{\"amount\": 2}]"},
		{name: "tag on data line", in: "```json {\"transactions\": []}```", want: `{"transactions": []}`},
		{name: "single line fence", in: "```json```", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeResponse(tt.in))
		})
	}
}

func TestSanitizedFencesDecode(t *testing.T) {
	inputs := []string{
		"JSON:\n```json\n[{\"amount\": 1}, {\"amount\": 2}]\n```",
		"```[{\"amount\": 1},\n{\"amount\": 2}]```",
		"```JSON\n{\"transactions\": [{\"amount\": 1}, {\"amount\": 2}]}\n```",
	}

	for _, in := range inputs {
		got, err := DecodeResponse(SanitizeResponse(in))
		require.NoError(t, err, in)
		assert.Len(t, got.Records, 2, in)
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantShape ResponseShape
		wantLen   int
		wantErr   bool
	}{
		{name: "bare array", in: `[{"amount":1},{"amount":2}]`, wantShape: ShapeArray, wantLen: 2},
		{name: "empty array", in: `[]`, wantShape: ShapeArray, wantLen: 0},
		{name: "wrapped", in: `{"transactions":[{"amount":1}]}`, wantShape: ShapeWrapped, wantLen: 1},
		{name: "wrapped not first", in: `{"count":1,"transactions":[{"amount":1}]}`, wantShape: ShapeWrapped, wantLen: 1},
		{name: "first key array", in: `{"items":[{"amount":1},{"amount":2},{"amount":3}],"other":[]}`, wantShape: ShapeFirstKey, wantLen: 3},
		{name: "first key not array", in: `{"note":"x","items":[{"amount":1}]}`, wantErr: true},
		{name: "wrapped null", in: `{"transactions":null}`, wantErr: true},
		{name: "scalar", in: `42`, wantErr: true},
		{name: "null", in: `null`, wantErr: true},
		{name: "empty object", in: `{}`, wantErr: true},
		{name: "invalid", in: `[{"amount":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResponse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, got.Records)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantShape, got.Shape)
			assert.Len(t, got.Records, tt.wantLen)
		})
	}
}

func rawRecords(t *testing.T, s string) []json.RawMessage {
	t.Helper()
	var recs []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &recs))
	return recs
}

func TestCoerceRecords(t *testing.T) {
	recs := rawRecords(t, `[
		{"date":"2024-01-15","description":"GROCERY OUTLET 123","amount":-45.1,"type":"Purchase"},
		{"date":"01/16/2024","merchant":"ACME PAYROLL","amount":"$2,500.00"},
		{"date":"2024-01-17","description":"REFUND","amount":"12.00","direction":"DEBIT"},
		{"date":"2024-01-18","description":"ZERO","amount":0},
		{"date":"2024-01-19","description":"BAD","amount":"n/a"},
		{"date":"2024-01-20","description":"NO AMOUNT"},
		"not an object",
		{"date":"2024-01-21","description":"ODD TYPE","amount":"(3.00)","type":"wire thing"}
	]`)

	txs, dropped := CoerceRecords(recs)

	assert.Equal(t, 4, dropped)
	require.Len(t, txs, 4)

	assert.Equal(t, "2024-01-15", txs[0].Date)
	assert.Equal(t, "45.1", txs[0].Amount.String())
	assert.Equal(t, domain.DirectionDebit, txs[0].Direction)
	assert.Equal(t, "GROCERY OUTLET", txs[0].Merchant)
	assert.Equal(t, "purchase", txs[0].Type)
	assert.Equal(t, domain.SourceAIInferred, txs[0].Source)

	assert.Equal(t, "2024-01-16", txs[1].Date)
	assert.Equal(t, "2500", txs[1].Amount.String())
	assert.Equal(t, domain.DirectionCredit, txs[1].Direction)
	assert.Equal(t, "ACME PAYROLL", txs[1].Description, "description falls back to merchant")

	assert.Equal(t, domain.DirectionDebit, txs[2].Direction, "explicit direction wins over sign")

	assert.Equal(t, "3", txs[3].Amount.String())
	assert.Equal(t, domain.DirectionDebit, txs[3].Direction)
	assert.Equal(t, "other", txs[3].Type)

	for _, tx := range txs {
		assert.True(t, tx.Amount.IsPositive())
	}
}

func TestSelectMode(t *testing.T) {
	assert.Equal(t, ModeSoft, SelectMode(domain.DocTypeBankStatement, 0))
	assert.Equal(t, ModeSoft, SelectMode(domain.DocTypeBankStatement, 4))
	assert.Equal(t, ModeStrict, SelectMode(domain.DocTypeBankStatement, 5))
	assert.Equal(t, ModeReceipt, SelectMode(domain.DocTypeReceipt, 50))
}

func TestBuildPrompt(t *testing.T) {
	allowed := []string{"1.00", "2.00", "3.00", "4.00", "5.00"}

	system, user := BuildPrompt(ModeStrict, "STATEMENT BODY", allowed)
	assert.Contains(t, system, "ALLOWED AMOUNTS")
	assert.Contains(t, system, "cash_advance")
	assert.Contains(t, user, "1.00, 2.00, 3.00, 4.00, 5.00")
	assert.Contains(t, user, "STATEMENT BODY")

	system, user = BuildPrompt(ModeSoft, "STATEMENT BODY", nil)
	assert.NotContains(t, user, "ALLOWED AMOUNTS")
	assert.Contains(t, system, "digit-for-digit")

	system, user = BuildPrompt(ModeReceipt, "RECEIPT BODY", nil)
	assert.Contains(t, system, "receipt")
	assert.Contains(t, user, "RECEIPT BODY")

	_, user = BuildPrompt(ModeSoft, strings.Repeat("x", maxPromptTextRunes+100), nil)
	assert.LessOrEqual(t, len(user), maxPromptTextRunes+len("STATEMENT TEXT:\n"))
}

func TestExtractor_Extract(t *testing.T) {
	allowed := []string{"10.00", "20.00", "30.00", "40.00", "50.00"}

	var got CompletionRequest
	c := CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		got = req
		return "```json\n{\"transactions\":[{\"date\":\"2024-01-02\",\"description\":\"SHOP\",\"amount\":-10.00},{\"amount\":0}]}\n```", nil
	})

	e := NewExtractor(c, ExtractorConfig{Model: "test-model"}, zerolog.Nop())
	out := e.Extract(context.Background(), "text", domain.DocTypeBankStatement, allowed)

	require.NoError(t, out.Err)
	assert.Equal(t, ModeStrict, out.Mode)
	assert.Equal(t, ShapeWrapped, out.Shape)
	assert.Equal(t, 1, out.Dropped)
	require.Len(t, out.Transactions, 1)
	assert.Equal(t, domain.SourceAIInferred, out.Transactions[0].Source)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, DefaultTemperature, got.Temperature)
	assert.Equal(t, DefaultMaxOutputTokens, got.MaxOutputTokens)
}

func TestExtractor_FailuresBecomeEmpty(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "transport error", err: errors.New("connection reset")},
		{name: "prose reply", reply: "Sorry, I cannot help with that."},
		{name: "wrong shape", reply: `{"total": 12.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
				return tt.reply, tt.err
			})
			out := NewExtractor(c, ExtractorConfig{}, zerolog.Nop()).
				Extract(context.Background(), "text", domain.DocTypeReceipt, nil)

			assert.Error(t, out.Err)
			assert.Empty(t, out.Transactions)
			assert.Equal(t, ModeReceipt, out.Mode)
		})
	}
}

func TestValidateRecord(t *testing.T) {
	assert.NoError(t, ValidateRecord(map[string]any{"amount": 1.5}))
	assert.NoError(t, ValidateRecord(map[string]any{"amount": "1.50", "date": nil}))
	assert.Error(t, ValidateRecord(map[string]any{"description": "x"}))
	assert.Error(t, ValidateRecord(map[string]any{"amount": true}))
	assert.Error(t, ValidateRecord(map[string]any{"amount": 1.0, "date": 20240101.0}))
	assert.Error(t, ValidateRecord([]any{}))
}
