package pipeline

// Fixed confidences for tiers whose output cannot be scored line by line.
const (
	// AIConfidence is reported for model-inferred results.
	AIConfidence = 0.6

	// InvoiceFallbackConfidence is reported for the synthesised invoice transaction.
	InvoiceFallbackConfidence = 0.5
)

// Reliability thresholds for whitelist validation.
const (
	// MinAllowedAmountsForReliability is the whitelist size below which
	// validation verdicts are not trusted.
	MinAllowedAmountsForReliability = 5
)

// DefaultCurrency is reported when the text shows no currency symbol.
const DefaultCurrency = "USD"
