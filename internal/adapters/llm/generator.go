package llm

import (
	"context"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Generator produces text for a single prompt.
// Blank output is reported as errors.ErrGenerationFailure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Backends selectable with LLM_PROVIDER
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
)

// New builds the configured generator once at startup. A backend that cannot
// be initialised yields a NotReady generator instead of an error so the
// process still serves health checks and reports the cause on /ready.
func New(ctx context.Context, cfg config.AIConfig) Generator {
	log := logger.Get().With("component", "llm")

	g, err := build(ctx, cfg)
	if err != nil {
		log.Errorw("Language model unavailable", "provider", cfg.Provider, "error", err)
		return NewNotReady(err)
	}

	log.Infow("Language model initialised", "provider", cfg.Provider, "model", g.Model())
	return g
}

func build(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	opts := Options{Temperature: cfg.Temperature, MaxOutputTokens: cfg.MaxOutputTokens}

	switch cfg.Provider {
	case BackendGemini, "":
		return NewGemini(ctx, GeminiConfig{
			APIKey:    cfg.GeminiKey,
			Model:     cfg.GeminiModel,
			UseVertex: cfg.UseVertex,
			Project:   cfg.Project,
			Location:  cfg.Location,
			Options:   opts,
		})
	case BackendOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			Options: opts,
		})
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported llm provider %q", cfg.Provider)
	}
}

// Options are the sampling settings shared by every backend
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}

func (o Options) withDefaults() Options {
	if o.Temperature == 0 {
		o.Temperature = 0.7
	}
	if o.MaxOutputTokens == 0 {
		o.MaxOutputTokens = 1024
	}
	return o
}

// NotReady stands in for a backend that failed to initialise
type NotReady struct {
	cause error
}

var _ Generator = (*NotReady)(nil)

func NewNotReady(cause error) *NotReady {
	return &NotReady{cause: cause}
}

func (n *NotReady) Generate(context.Context, string) (string, error) {
	return "", n.Err()
}

func (n *NotReady) Model() string { return "unavailable" }

// Err returns errors.ErrNotReady wrapping the initialisation failure
func (n *NotReady) Err() error {
	return errors.Newf("%w: %v", errors.ErrNotReady, n.cause)
}

// Ready reports whether g can serve calls
func Ready(g Generator) error {
	if n, ok := g.(*NotReady); ok {
		return n.Err()
	}
	if g == nil {
		return errors.ErrNotReady
	}
	return nil
}
