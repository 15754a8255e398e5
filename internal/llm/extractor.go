package llm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-parser/internal/domain"
)

// ExtractorConfig holds the model call parameters.
type ExtractorConfig struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// Extraction is the outcome of one model-backed extraction attempt.
// Err is informational: the caller continues with zero transactions.
type Extraction struct {
	Mode         Mode
	Shape        ResponseShape
	Transactions []domain.Transaction
	Dropped      int
	Err          error
}

// Extractor runs the model tier. It never returns an error to its caller;
// failures are logged and surface as an empty Extraction.
type Extractor struct {
	completer Completer
	cfg       ExtractorConfig
	log       zerolog.Logger
}

// NewExtractor creates an Extractor. Zero config fields take package defaults.
func NewExtractor(c Completer, cfg ExtractorConfig, log zerolog.Logger) *Extractor {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return &Extractor{completer: c, cfg: cfg, log: log}
}

// Extract asks the model for transactions found in text. allowed is the
// amount whitelist; its size picks strict or soft mode for statements.
func (e *Extractor) Extract(ctx context.Context, text string, docType domain.DocType, allowed []string) Extraction {
	mode := SelectMode(docType, len(allowed))
	system, user := BuildPrompt(mode, text, allowed)

	rid := uuid.New().String()
	start := time.Now()
	log := e.log.With().Str("req_id", rid).Str("mode", string(mode)).Str("model", e.cfg.Model).Logger()
	log.Debug().Int("text_len", len(text)).Int("allowed_amounts", len(allowed)).Msg("model extraction started")

	out := Extraction{Mode: mode}

	raw, err := e.completer.Complete(ctx, CompletionRequest{
		Model:           e.cfg.Model,
		System:          system,
		User:            user,
		Temperature:     e.cfg.Temperature,
		MaxOutputTokens: e.cfg.MaxOutputTokens,
	})
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("model call failed, continuing without model transactions")
		out.Err = err
		return out
	}

	decoded, err := DecodeResponse(SanitizeResponse(raw))
	if err != nil {
		log.Warn().Err(err).Int("raw_len", len(raw)).Msg("model response not decodable, continuing without model transactions")
		out.Err = err
		return out
	}
	out.Shape = decoded.Shape

	out.Transactions, out.Dropped = CoerceRecords(decoded.Records)
	if out.Dropped > 0 {
		log.Warn().Int("dropped", out.Dropped).Msg("dropped unusable model records")
	}

	log.Info().
		Str("shape", decoded.Shape.String()).
		Int("records", len(decoded.Records)).
		Int("transactions", len(out.Transactions)).
		Dur("elapsed", time.Since(start)).
		Msg("model extraction finished")
	return out
}
