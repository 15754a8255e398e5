// Package app builds the parser's object graph from configuration. Both
// binaries go through it so that the CLI and the API behave the same.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-parser/internal/config"
	infraBQ "github.com/dvloznov/finance-parser/internal/infra/bigquery"
	"github.com/dvloznov/finance-parser/internal/llm"
	"github.com/dvloznov/finance-parser/internal/llm/openai"
	"github.com/dvloznov/finance-parser/internal/pipeline"
	"github.com/dvloznov/finance-parser/internal/source"
)

// App holds the wired components and the resources they own.
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Processor *pipeline.Processor
	Loader    *source.Loader
	Recorder  *infraBQ.RunRecorder

	closers []io.Closer
}

// New wires an App. stdin backs the "-" source reference.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, stdin io.Reader) (*App, error) {
	a := &App{Config: cfg, Log: log}

	completer, err := NewCompleter(ctx, cfg.LLM, log)
	if err != nil {
		return nil, err
	}

	observers := pipeline.MultiObserver{pipeline.NewLogObserver(log)}
	if cfg.Audit.Enabled {
		rec, err := infraBQ.NewRunRecorder(ctx, cfg.Audit.ProjectID, cfg.Audit.Dataset, cfg.Audit.Table, log)
		if err != nil {
			return nil, fmt.Errorf("app.New: %w", err)
		}
		a.Recorder = rec
		a.closers = append(a.closers, rec)
		observers = append(observers, rec)
	}

	opts := pipeline.Options{
		Amounts:         pipeline.WhitelistValidator{},
		Observer:        observers,
		Logger:          log,
		DefaultCurrency: cfg.Parsing.DefaultCurrency,
	}
	// Leave Extractor as a nil interface when no model is configured.
	if completer != nil {
		opts.Extractor = llm.NewExtractor(completer, llm.ExtractorConfig{
			Model:           modelFor(cfg.LLM),
			Temperature:     cfg.LLM.Temperature,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		}, log)
	}
	a.Processor = pipeline.NewProcessor(opts)

	fetcher := source.NewGCSFetcher()
	a.closers = append(a.closers, fetcher)
	if stdin == nil {
		stdin = os.Stdin
	}
	a.Loader = source.NewLoader(fetcher, stdin, cfg.Storage.Bucket)

	return a, nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewCompleter returns the configured model client, or nil for provider "none".
func NewCompleter(ctx context.Context, cfg config.LLMConfig, log zerolog.Logger) (llm.Completer, error) {
	switch cfg.Provider {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderGemini:
		c, err := llm.NewGeminiCompleter(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("NewCompleter: %w", err)
		}
		return c, nil
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelFor(cfg),
		}, nil, log), nil
	default:
		return nil, fmt.Errorf("NewCompleter: unknown provider %q", cfg.Provider)
	}
}

func modelFor(cfg config.LLMConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if cfg.Provider == config.ProviderOpenAI {
		return openai.DefaultModel
	}
	return llm.DefaultGeminiModel
}
