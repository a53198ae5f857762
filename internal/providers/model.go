package providers

import (
	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/avi3tal/functionsagent/internal/config"
)

// NewModel builds the chat model for the configured provider. The handler,
// when set, receives the model's generation callbacks.
func NewModel(cfg config.Model, handler callbacks.Handler) (llms.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return newOpenAI(cfg, handler)
	case config.ProviderAnthropic:
		return newAnthropic(cfg, handler)
	case config.ProviderOllama:
		return newOllama(cfg, handler)
	default:
		return nil, errors.Wrapf(ErrUnknownProvider, "%q", cfg.Provider)
	}
}

func newOpenAI(cfg config.Model, handler callbacks.Handler) (llms.Model, error) {
	token := cfg.APIKey()
	if token == "" {
		return nil, errors.Wrapf(ErrMissingAPIKey, "openai: set %s", cfg.APIKeyEnv)
	}
	opts := []openai.Option{openai.WithToken(token)}
	if cfg.Name != "" {
		opts = append(opts, openai.WithModel(cfg.Name))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if handler != nil {
		opts = append(opts, openai.WithCallback(handler))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "openai")
	}
	return llm, nil
}

func newAnthropic(cfg config.Model, handler callbacks.Handler) (llms.Model, error) {
	token := cfg.APIKey()
	if token == "" {
		return nil, errors.Wrapf(ErrMissingAPIKey, "anthropic: set %s", cfg.APIKeyEnv)
	}
	opts := []anthropic.Option{anthropic.WithToken(token)}
	if cfg.Name != "" {
		opts = append(opts, anthropic.WithModel(cfg.Name))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	llm, err := anthropic.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic")
	}
	llm.CallbacksHandler = handler
	return llm, nil
}

func newOllama(cfg config.Model, handler callbacks.Handler) (llms.Model, error) {
	if cfg.Name == "" {
		return nil, errors.Wrap(ErrMissingModel, "ollama")
	}
	opts := []ollama.Option{ollama.WithModel(cfg.Name)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "ollama")
	}
	llm.CallbacksHandler = handler
	return llm, nil
}
