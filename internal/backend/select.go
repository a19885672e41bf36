package backend

import (
	"context"
	"fmt"
	"log/slog"
)

const ModeAuto = "auto"

type Config struct {
	// Mode forces a variant: auto, remote, openai, local or fallback.
	Mode   string
	Remote RemoteConfig
	OpenAI OpenAIConfig
	Local  LocalConfig
	Loader ModelLoader
}

// remoteConfigured treats the stock endpoint as opt-in: it needs a
// credential, while an overridden URL is assumed to be deliberate.
func (c Config) remoteConfigured() bool {
	if c.Remote.URL == "" {
		return false
	}
	return c.Remote.APIKey != "" || c.Remote.URL != DefaultRemoteURL
}

// Select builds the backend once for the life of a service. In auto mode
// the order is remote, OpenAI, local weights, then the fallback. Failing
// to load local weights that were found is fatal.
func Select(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := cfg.Mode
	if kind == "" {
		kind = ModeAuto
	}

	var (
		b   Backend
		err error
	)
	switch kind {
	case NameRemote:
		if cfg.Remote.URL == "" {
			return nil, fmt.Errorf("%w: remote endpoint URL is empty", ErrBackendUnavailable)
		}
		b = NewRemote(cfg.Remote, logger)
	case NameOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", ErrBackendUnavailable)
		}
		b = NewOpenAI(cfg.OpenAI, logger)
	case NameLocal:
		path, ok := cfg.Local.ResolveWeights()
		if !ok {
			return nil, fmt.Errorf("%w: no model weights found", ErrBackendUnavailable)
		}
		b, err = NewLocal(path, cfg.Local.Threads, cfg.Loader, logger)
	case NameFallback:
		b = NewFallback(logger)
	case ModeAuto:
		b, err = selectAuto(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrBackendUnavailable, kind)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("transcription backend selected", "backend", b.Name(), "mode", kind)
	return b, nil
}

func selectAuto(cfg Config, logger *slog.Logger) (Backend, error) {
	if cfg.remoteConfigured() {
		return NewRemote(cfg.Remote, logger), nil
	}
	if cfg.OpenAI.APIKey != "" {
		return NewOpenAI(cfg.OpenAI, logger), nil
	}
	if path, ok := cfg.Local.ResolveWeights(); ok {
		b, err := NewLocal(path, cfg.Local.Threads, cfg.Loader, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	logger.Warn("no transcription backend configured, using fallback")
	return NewFallback(logger), nil
}
