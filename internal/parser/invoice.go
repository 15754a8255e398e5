package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-parser/internal/amounts"
	"github.com/dvloznov/finance-parser/internal/domain"
)

const (
	invoiceDateScanLines     = 20
	invoiceMerchantScanLines = 15
	invoiceAllCapsScanLines  = 10

	// UncategorizedCategory is assigned to synthesised invoice transactions.
	UncategorizedCategory = "Uncategorized"
)

var invoiceKeywords = []string{
	"invoice", "receipt", "subtotal", "total", "amount due", "amount owing",
	"invoice number", "invoice #", "bill to", "pay to", "payment due",
}

var (
	merchantLabel   = regexp.MustCompile(`(?i)^(?:bill from|from|vendor|merchant)\s*:\s*(.+?)\s*$`)
	merchantCompany = regexp.MustCompile(`(?i)^[a-z0-9].*\b(?:inc|llc|ltd|corp|co|company|corporation|limited)\.?$`)
	allCapsRun      = regexp.MustCompile(`\b[A-Z][A-Z&'.\-]*(?:\s+[A-Z][A-Z&'.\-]*)*`)
)

// words that make up invoice boilerplate rather than a vendor name
var invoiceBoilerplate = map[string]bool{
	"INVOICE": true, "RECEIPT": true, "TOTAL": true, "SUBTOTAL": true, "AMOUNT": true,
	"DUE": true, "OWING": true, "BILL": true, "TO": true, "PAY": true, "PAYMENT": true,
	"DATE": true, "NUMBER": true, "NO": true, "TAX": true, "FROM": true, "VAT": true,
	"GST": true, "QTY": true, "DESCRIPTION": true, "PRICE": true, "BALANCE": true,
}

// InvoiceFallback synthesises a single debit for invoice-shaped documents
// nothing else could parse.
type InvoiceFallback struct {
	now func() time.Time
}

// NewInvoiceFallback creates an InvoiceFallback using the wall clock for
// undated invoices.
func NewInvoiceFallback() *InvoiceFallback {
	return &InvoiceFallback{now: time.Now}
}

// NewInvoiceFallbackWithClock creates an InvoiceFallback with a fixed clock.
func NewInvoiceFallbackWithClock(now func() time.Time) *InvoiceFallback {
	return &InvoiceFallback{now: now}
}

// LooksLikeInvoice reports whether text carries any invoice keyword.
func LooksLikeInvoice(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range invoiceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Parse returns the synthesised transaction, or false when the text is not
// invoice-like or no amount can be found.
func (f *InvoiceFallback) Parse(text string) (domain.Transaction, bool) {
	if strings.TrimSpace(text) == "" || !LooksLikeInvoice(text) {
		return domain.Transaction{}, false
	}

	lines := Lines(text)
	total, totalLine, ok := invoiceTotal(text, lines)
	if !ok {
		return domain.Transaction{}, false
	}

	date := f.invoiceDate(lines)
	merchant := invoiceMerchant(lines)

	return domain.Transaction{
		Date:        date,
		Merchant:    merchant,
		Description: "Invoice from " + merchant,
		Amount:      total,
		Direction:   domain.DirectionDebit,
		Category:    UncategorizedCategory,
		Source:      domain.SourceInvoiceSingleFallback,
		RawLine:     totalLine,
	}, true
}

// invoiceTotal prefers the last amount on a TOTAL / AMOUNT DUE / AMOUNT OWING
// line and falls back to the largest amount in the document.
func invoiceTotal(text string, lines []string) (decimal.Decimal, string, bool) {
	var (
		last     decimal.Decimal
		lastLine string
		found    bool
	)
	for _, line := range lines {
		upper := strings.ToUpper(line)
		if !strings.Contains(upper, "TOTAL") && !strings.Contains(upper, "AMOUNT DUE") && !strings.Contains(upper, "AMOUNT OWING") {
			continue
		}
		amts := amounts.ExtractAmountsFromText(line)
		if len(amts) == 0 {
			continue
		}
		d, err := decimal.NewFromString(amts[len(amts)-1])
		if err != nil || !d.IsPositive() {
			continue
		}
		last, lastLine, found = d, line, true
	}
	if found {
		return last, lastLine, true
	}

	var largest decimal.Decimal
	for _, a := range amounts.ExtractAmountsFromText(text) {
		d, err := decimal.NewFromString(a)
		if err != nil {
			continue
		}
		if d.GreaterThan(largest) {
			largest = d
		}
	}
	if !largest.IsPositive() {
		return decimal.Zero, "", false
	}
	return largest, "", true
}

func (f *InvoiceFallback) invoiceDate(lines []string) string {
	for i, line := range lines {
		if i >= invoiceDateScanLines {
			break
		}
		if d, ok := FindDate(line); ok {
			return d
		}
	}
	return f.now().Format(isoLayout)
}

func invoiceMerchant(lines []string) string {
	for i, line := range lines {
		if i >= invoiceMerchantScanLines {
			break
		}
		if m := merchantLabel.FindStringSubmatch(line); m != nil {
			return truncateRunes(m[1], MaxMerchantLength)
		}
		if merchantCompany.MatchString(line) {
			return truncateRunes(line, MaxMerchantLength)
		}
	}

	for i, line := range lines {
		if i >= invoiceAllCapsScanLines {
			break
		}
		for _, run := range allCapsRun.FindAllString(line, -1) {
			run = strings.TrimSpace(run)
			n := utf8.RuneCountInString(run)
			if n < 3 || n > 50 || isBoilerplate(run) {
				continue
			}
			return run
		}
	}
	return UnknownMerchant
}

func isBoilerplate(run string) bool {
	for _, w := range strings.Fields(run) {
		if !invoiceBoilerplate[strings.Trim(w, "&'.-:")] {
			return false
		}
	}
	return true
}
