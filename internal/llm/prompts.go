package llm

import (
	"strings"

	"github.com/dvloznov/finance-parser/internal/domain"
)

// Mode selects the prompt family used for a model call.
type Mode string

const (
	ModeStrict  Mode = "strict"
	ModeSoft    Mode = "soft"
	ModeReceipt Mode = "receipt"
)

// StrictModeMinAmounts is the whitelist size at which the model is told to
// use only whitelisted amounts.
const StrictModeMinAmounts = 5

// maxPromptTextRunes caps the document text embedded in a prompt.
const maxPromptTextRunes = 30000

// TransactionTypes is the classification vocabulary offered to the model.
var TransactionTypes = []string{
	"purchase", "payment", "fee", "interest", "cash_advance",
	"deposit", "refund", "transfer", "other",
}

// SelectMode picks the prompt family for a document.
func SelectMode(docType domain.DocType, allowedCount int) Mode {
	if docType == domain.DocTypeReceipt {
		return ModeReceipt
	}
	if allowedCount >= StrictModeMinAmounts {
		return ModeStrict
	}
	return ModeSoft
}

const statementRules = `Rules:
- Output STRICT JSON only: a JSON array of transaction objects, nothing else.
- Do NOT wrap the response in code fences.
- Skip summary rows: opening/closing balance, new balance, totals, subtotals,
  minimum payment, payment due, credit limit, available credit.
- Copy the vendor text exactly as printed into "description".
- Dates must be ISO "YYYY-MM-DD".
- Use a negative "amount" for money leaving the account (purchases, fees,
  interest, withdrawals) and a positive "amount" for money coming in.
`

var transactionShape = `Each object has:
- "date": string
- "description": string
- "merchant": string
- "amount": number
- "direction": "debit" or "credit"
- "type": one of ` + strings.Join(TransactionTypes, ", ") + "\n"

// BuildPrompt returns the system and user messages for mode.
func BuildPrompt(mode Mode, text string, allowed []string) (system, user string) {
	body := truncateRunes(text, maxPromptTextRunes)

	switch mode {
	case ModeStrict:
		system = "You extract transactions from bank and credit card statements.\n\n" + transactionShape + "\n" + statementRules +
			"- Every \"amount\" MUST be one of the ALLOWED AMOUNTS listed by the user (sign aside).\n" +
			"  If a row's amount is not in that list, leave the row out.\n"
		user = "ALLOWED AMOUNTS:\n" + strings.Join(allowed, ", ") + "\n\nSTATEMENT TEXT:\n" + body
	case ModeSoft:
		system = "You extract transactions from bank and credit card statements.\n\n" + transactionShape + "\n" + statementRules +
			"- Copy every amount digit-for-digit as printed. Never compute, round or estimate.\n"
		user = "STATEMENT TEXT:\n" + body
	default:
		system = "You extract the purchase from a receipt.\n\n" +
			"Return a JSON array with at most one object with \"date\" (YYYY-MM-DD), \"merchant\",\n" +
			"\"description\", \"amount\" (the final total paid, as printed) and \"direction\" (\"debit\").\n" +
			"Only include the object if date, merchant and amount are all clearly present.\n" +
			"If they are not, return []. Output STRICT JSON only, no code fences.\n"
		user = "RECEIPT TEXT:\n" + body
	}
	return system, user
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
