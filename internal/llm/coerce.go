package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-parser/internal/amounts"
	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/parser"
)

// CoerceRecords converts decoded model records into transactions. Records that
// fail the schema or carry a zero or unreadable amount are dropped one by one;
// dropped reports how many.
func CoerceRecords(records []json.RawMessage) (txs []domain.Transaction, dropped int) {
	txs = make([]domain.Transaction, 0, len(records))
	for _, raw := range records {
		tx, err := coerceRecord(raw)
		if err != nil {
			dropped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, dropped
}

func coerceRecord(raw json.RawMessage) (domain.Transaction, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Transaction{}, fmt.Errorf("coerceRecord: unmarshal: %w", err)
	}
	if err := ValidateRecord(v); err != nil {
		return domain.Transaction{}, err
	}
	obj := v.(map[string]any)

	amt, err := coerceAmount(obj["amount"])
	if err != nil {
		return domain.Transaction{}, err
	}
	if amt.IsZero() {
		return domain.Transaction{}, fmt.Errorf("coerceRecord: zero amount")
	}

	dir := domain.Direction(strings.ToLower(stringField(obj, "direction")))
	if dir != domain.DirectionDebit && dir != domain.DirectionCredit {
		dir = domain.DirectionCredit
		if amt.IsNegative() {
			dir = domain.DirectionDebit
		}
	}

	desc := stringField(obj, "description")
	merchant := stringField(obj, "merchant")
	if merchant == "" {
		merchant = parser.ExtractMerchant(desc)
	} else {
		merchant = parser.ExtractMerchant(merchant)
	}
	if desc == "" {
		desc = merchant
	}

	date := stringField(obj, "date")
	if iso, ok := parser.FindDate(date); ok {
		date = iso
	}

	return domain.Transaction{
		Date:        date,
		Merchant:    merchant,
		Description: desc,
		Amount:      amt.Abs(),
		Direction:   dir,
		Category:    stringField(obj, "category"),
		Type:        normalizeType(stringField(obj, "type")),
		Source:      domain.SourceAIInferred,
	}, nil
}

func coerceAmount(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		d, err := amounts.ParseAmount(val)
		if err != nil {
			return decimal.Zero, fmt.Errorf("coerceAmount: %q: %w", val, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("coerceAmount: unsupported type %T", v)
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.ReplaceAll(t, " ", "_"))
	if t == "" {
		return ""
	}
	for _, known := range TransactionTypes {
		if t == known {
			return t
		}
	}
	return "other"
}
