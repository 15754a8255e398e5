package parser

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-parser/internal/domain"
)

var maxPlausibleAmount = decimal.NewFromInt(100000)

// ScoreConfidence rates line-parser output: 60% how many lines produced a
// transaction, 40% the average field quality of what was produced.
func ScoreConfidence(txs []domain.Transaction, lines int) float64 {
	if lines <= 0 || len(txs) == 0 {
		return 0
	}

	successRate := float64(len(txs)) / float64(lines)
	if successRate > 1 {
		successRate = 1
	}

	var quality float64
	for _, tx := range txs {
		quality += transactionQuality(tx)
	}
	avgQuality := quality / float64(len(txs))

	score := 0.6*successRate + 0.4*avgQuality
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

func transactionQuality(tx domain.Transaction) float64 {
	var q float64
	if IsValidDate(tx.Date) {
		q += 0.3
	}
	if tx.Amount.IsPositive() && tx.Amount.LessThan(maxPlausibleAmount) {
		q += 0.3
	}
	if utf8.RuneCountInString(tx.Description) > 3 {
		q += 0.2
	}
	if utf8.RuneCountInString(tx.Merchant) > 2 {
		q += 0.2
	}
	return q
}
