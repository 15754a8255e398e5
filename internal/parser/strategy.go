// Package parser holds the deterministic extraction tiers: line-pattern
// parsers for statements, the receipt parser, the invoice last resort and the
// confidence scorer shared by the line parsers.
package parser

import (
	"regexp"
	"strings"

	"github.com/dvloznov/finance-parser/internal/amounts"
	"github.com/dvloznov/finance-parser/internal/domain"
)

// LineStrategy turns one trimmed line into at most one transaction.
type LineStrategy struct {
	Name  string
	Parse func(line string) (domain.Transaction, bool)
}

// LineParser runs an ordered list of strategies over every non-empty line.
// The first strategy that matches a line wins; later ones never see it.
type LineParser struct {
	name       string
	strategies []LineStrategy
}

// LineResult is what a LineParser found plus the line count used for scoring.
type LineResult struct {
	Transactions []domain.Transaction
	Lines        int
}

// Name identifies the parser in logs.
func (p *LineParser) Name() string { return p.name }

// Strategies returns the strategies in dispatch order.
func (p *LineParser) Strategies() []LineStrategy { return p.strategies }

// Parse applies the strategies line by line. Lines no strategy matches are skipped.
func (p *LineParser) Parse(text string) LineResult {
	lines := Lines(text)
	res := LineResult{Lines: len(lines)}
	for _, line := range lines {
		for _, s := range p.strategies {
			if tx, ok := s.Parse(line); ok {
				res.Transactions = append(res.Transactions, tx)
				break
			}
		}
	}
	return res
}

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// linePattern binds capture groups of re to transaction fields.
type linePattern struct {
	re                          *regexp.Regexp
	dateIdx, descIdx, amountIdx int
	date                        func(string) (string, bool)
}

func (lp linePattern) strategy(name string, source domain.Source) LineStrategy {
	return LineStrategy{
		Name: name,
		Parse: func(line string) (domain.Transaction, bool) {
			m := lp.re.FindStringSubmatch(line)
			if m == nil {
				return domain.Transaction{}, false
			}
			date, ok := lp.date(m[lp.dateIdx])
			if !ok {
				return domain.Transaction{}, false
			}
			desc := strings.TrimSpace(m[lp.descIdx])
			if desc == "" {
				return domain.Transaction{}, false
			}
			amt, err := amounts.ParseAmount(m[lp.amountIdx])
			if err != nil || amt.IsZero() {
				return domain.Transaction{}, false
			}

			// negative literal means money out; everything else, including
			// accounting parentheses, is recorded as a credit
			dir := domain.DirectionCredit
			if amt.IsNegative() {
				dir = domain.DirectionDebit
			}

			return domain.Transaction{
				Date:        date,
				Merchant:    ExtractMerchant(desc),
				Description: desc,
				Amount:      amt.Abs(),
				Direction:   dir,
				Source:      source,
				RawLine:     line,
			}, true
		},
	}
}
